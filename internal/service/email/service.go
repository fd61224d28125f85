package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"coleta-seletiva/internal/domain"
	"coleta-seletiva/internal/pkg/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendRequestStatusEmail(ctx context.Context, toEmail, name string, req *domain.CollectionRequest, message string) error
}

// Sender delivers a rendered message. *resend.Client's Emails service satisfies it.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	sender Sender
	from   string
	locale string
}

// NewService sends through Resend. An empty API key yields a service that
// silently drops every message, which is what development setups want.
func NewService(apiKey, fromEmail, locale string) Service {
	if apiKey == "" {
		return noop{}
	}
	return NewServiceWithSender(resend.NewClient(apiKey).Emails, fromEmail, locale)
}

func NewServiceWithSender(sender Sender, fromEmail, locale string) Service {
	return &service{sender: sender, from: fromEmail, locale: locale}
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout.html", data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Coleta Seletiva <%s>", s.from),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err = s.sender.Send(params)
	return err
}

func (s *service) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	data := struct {
		Title string
		Name  string
	}{
		Title: "Bem-vindo à Coleta Seletiva",
		Name:  name,
	}
	return s.sendEmail(toEmail, "Bem-vindo à Coleta Seletiva", "welcome.html", data)
}

func (s *service) SendRequestStatusEmail(ctx context.Context, toEmail, name string, req *domain.CollectionRequest, message string) error {
	color := "#10b981"
	if req.Status == domain.RequestRejected {
		color = "#ef4444"
	}

	subject := i18n.Format(s.locale, "EMAIL_SUBJECT", req.ID)
	data := struct {
		Title     string
		Name      string
		Message   string
		RequestID int64
		Color     string
	}{
		Title:     subject,
		Name:      name,
		Message:   message,
		RequestID: req.ID,
		Color:     color,
	}
	return s.sendEmail(toEmail, subject, "request_status.html", data)
}

type noop struct{}

func (noop) SendWelcomeEmail(context.Context, string, string) error { return nil }

func (noop) SendRequestStatusEmail(context.Context, string, string, *domain.CollectionRequest, string) error {
	return nil
}
