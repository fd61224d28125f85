package domain

import (
	"strings"
	"time"
)

type CollectionRequest struct {
	ID                  int64         `json:"id" yaml:"id"`
	ResidentID          int64         `json:"resident_id" yaml:"resident_id"`
	CollectorID         *int64        `json:"collector_id" yaml:"collector_id"`
	RequestedDate       string        `json:"requested_date" yaml:"requested_date"`
	RequestedWindow     string        `json:"requested_window" yaml:"requested_window"`
	Address             string        `json:"address" yaml:"address"`
	Neighborhood        string        `json:"neighborhood" yaml:"neighborhood"`
	Materials           []string      `json:"materials" yaml:"materials"`
	EstimatedQuantityKg float64       `json:"estimated_quantity_kg" yaml:"estimated_quantity_kg"`
	Observations        string        `json:"observations" yaml:"observations"`
	Status              RequestStatus `json:"status" yaml:"status"`
	CreatedAt           time.Time     `json:"created_at" yaml:"created_at"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty" yaml:"completed_at"`
}

func (r *CollectionRequest) RecordID() int64      { return r.ID }
func (r *CollectionRequest) SetRecordID(id int64) { r.ID = id }

func (r *CollectionRequest) Unassigned() bool {
	return r.CollectorID == nil
}

func (r *CollectionRequest) AssignedTo(collectorID int64) bool {
	return r.CollectorID != nil && *r.CollectorID == collectorID
}

// Validate checks the fields a resident must supply.
func (r *CollectionRequest) Validate() error {
	if r.ResidentID <= 0 {
		return Validationf("resident is required")
	}
	if strings.TrimSpace(r.Address) == "" {
		return Validationf("address is required")
	}
	if len(r.Materials) == 0 {
		return Validationf("at least one material is required")
	}
	for _, m := range r.Materials {
		if strings.TrimSpace(m) == "" {
			return Validationf("material tags cannot be blank")
		}
	}
	if r.EstimatedQuantityKg <= 0 {
		return Validationf("estimated quantity must be positive")
	}
	return nil
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestScheduled RequestStatus = "scheduled"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestScheduled, RequestRejected, RequestCompleted:
		return true
	default:
		return false
	}
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestCompleted || s == RequestRejected
}

type CreateRequestInput struct {
	RequestedDate        string   `json:"requested_date"`
	RequestedWindow      string   `json:"requested_window"`
	Address              string   `json:"address"`
	Neighborhood         string   `json:"neighborhood"`
	Materials            []string `json:"materials"`
	EstimatedQuantityKg  float64  `json:"estimated_quantity_kg"`
	Observations         string   `json:"observations"`
	PreferredCollectorID *int64   `json:"preferred_collector_id,omitempty"`
}
