package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const DefaultChatMaxLength = 500

type Notification struct {
	ID            int64            `json:"id" yaml:"id"`
	RecipientID   int64            `json:"recipient_id" yaml:"recipient_id"`
	RecipientRole Role             `json:"recipient_role" yaml:"recipient_role"`
	Kind          NotificationKind `json:"kind" yaml:"kind"`
	Title         string           `json:"title" yaml:"title"`
	Body          string           `json:"body" yaml:"body"`
	CreatedAt     time.Time        `json:"created_at" yaml:"created_at"`
	Read          bool             `json:"read" yaml:"read"`

	RequestID  *int64 `json:"request_id,omitempty" yaml:"request_id"`
	SenderID   *int64 `json:"sender_id,omitempty" yaml:"sender_id"`
	SenderRole *Role  `json:"sender_role,omitempty" yaml:"sender_role"`
}

func (n *Notification) RecordID() int64      { return n.ID }
func (n *Notification) SetRecordID(id int64) { n.ID = id }

func (n *Notification) IsChat() bool {
	return n.Kind == KindChat
}

type NotificationKind string

const (
	KindPlain NotificationKind = "plain"
	KindChat  NotificationKind = "chat"
)

func (k NotificationKind) IsValid() bool {
	return k == KindPlain || k == KindChat
}

type ChatMessageInput struct {
	RequestID     int64
	SenderID      int64
	SenderRole    Role
	RecipientID   int64
	RecipientRole Role
	Body          string
}

// ValidateChatBody rejects blank bodies and bodies longer than maxLen runes.
func ValidateChatBody(body string, maxLen int) error {
	if strings.TrimSpace(body) == "" {
		return Validationf("message cannot be empty")
	}
	if maxLen > 0 && utf8.RuneCountInString(body) > maxLen {
		return Validationf("message exceeds %d characters", maxLen)
	}
	return nil
}

type Inbox struct {
	Unread []Notification `json:"unread"`
	Read   []Notification `json:"read"`
}
