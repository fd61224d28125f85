package domain

import (
	"strings"
	"time"
)

type Account struct {
	ID               int64         `json:"id" yaml:"id"`
	Role             Role          `json:"role" yaml:"role"`
	Name             string        `json:"name" yaml:"name"`
	Email            string        `json:"email" yaml:"email"`
	PasswordHash     string        `json:"password_hash" yaml:"password_hash"`
	Phone            string        `json:"phone" yaml:"phone"`
	Address          string        `json:"address" yaml:"address"`
	Neighborhood     string        `json:"neighborhood" yaml:"neighborhood"`
	ServiceAreas     []string      `json:"service_areas" yaml:"service_areas"`
	Status           AccountStatus `json:"status" yaml:"status"`
	CreatedAt        time.Time     `json:"created_at" yaml:"created_at"`
	LastLogin        *time.Time    `json:"last_login,omitempty" yaml:"last_login"`
	ProfilePhotoPath string        `json:"profile_photo_path,omitempty" yaml:"profile_photo_path"`
}

func (a *Account) RecordID() int64      { return a.ID }
func (a *Account) SetRecordID(id int64) { a.ID = id }

func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// Serves reports whether a collector works in the given neighborhood.
func (a *Account) Serves(neighborhood string) bool {
	for _, area := range a.ServiceAreas {
		if strings.EqualFold(area, neighborhood) {
			return true
		}
	}
	return false
}

// AccountView is the account as returned to API clients, without the hash.
type AccountView struct {
	ID               int64         `json:"id"`
	Role             Role          `json:"role"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address"`
	Neighborhood     string        `json:"neighborhood"`
	ServiceAreas     []string      `json:"service_areas"`
	Status           AccountStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	LastLogin        *time.Time    `json:"last_login,omitempty"`
	ProfilePhotoPath string        `json:"profile_photo_path,omitempty"`
}

func (a *Account) View() AccountView {
	areas := a.ServiceAreas
	if areas == nil {
		areas = []string{}
	}
	return AccountView{
		ID:               a.ID,
		Role:             a.Role,
		Name:             a.Name,
		Email:            a.Email,
		Phone:            a.Phone,
		Address:          a.Address,
		Neighborhood:     a.Neighborhood,
		ServiceAreas:     areas,
		Status:           a.Status,
		CreatedAt:        a.CreatedAt,
		LastLogin:        a.LastLogin,
		ProfilePhotoPath: a.ProfilePhotoPath,
	}
}

// AccountPatch carries a partial update; nil fields are left untouched.
type AccountPatch struct {
	Role             *Role          `json:"role,omitempty"`
	Name             *string        `json:"name,omitempty"`
	Email            *string        `json:"email,omitempty"`
	PasswordHash     *string        `json:"-"`
	Phone            *string        `json:"phone,omitempty"`
	Address          *string        `json:"address,omitempty"`
	Neighborhood     *string        `json:"neighborhood,omitempty"`
	ServiceAreas     *[]string      `json:"service_areas,omitempty"`
	Status           *AccountStatus `json:"-"`
	LastLogin        *time.Time     `json:"-"`
	ProfilePhotoPath *string        `json:"-"`
}

func (p AccountPatch) Apply(a *Account) {
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.Neighborhood != nil {
		a.Neighborhood = *p.Neighborhood
	}
	if p.ServiceAreas != nil {
		a.ServiceAreas = append([]string(nil), (*p.ServiceAreas)...)
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.LastLogin != nil {
		at := *p.LastLogin
		a.LastLogin = &at
	}
	if p.ProfilePhotoPath != nil {
		a.ProfilePhotoPath = *p.ProfilePhotoPath
	}
	if a.Role != RoleCollector {
		a.ServiceAreas = nil
	}
}

type RegisterInput struct {
	Role         Role     `json:"role"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	Neighborhood string   `json:"neighborhood"`
	ServiceAreas []string `json:"service_areas"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     *Role  `json:"role,omitempty"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Role string

const (
	RoleResident  Role = "resident"
	RoleCollector Role = "collector"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleResident, RoleCollector, RoleAdmin:
		return true
	default:
		return false
	}
}

type AccountStatus string

const (
	StatusActive   AccountStatus = "active"
	StatusInactive AccountStatus = "inactive"
)

// Caller identifies who is performing an operation. It is built from the
// request token and passed explicitly into every service call.
type Caller struct {
	AccountID int64
	Role      Role
}

func (c Caller) Is(role Role) bool {
	return c.Role == role
}
