package domain

import "time"

type EventType string

const (
	EventRequestCreated   EventType = "request.created"
	EventRequestScheduled EventType = "request.scheduled"
	EventRequestRejected  EventType = "request.rejected"
	EventRequestCompleted EventType = "request.completed"
)

// EventForStatus maps the status a request just entered to the event announcing it.
func EventForStatus(status RequestStatus) EventType {
	switch status {
	case RequestScheduled:
		return EventRequestScheduled
	case RequestRejected:
		return EventRequestRejected
	case RequestCompleted:
		return EventRequestCompleted
	default:
		return EventRequestCreated
	}
}

// RequestEvent is published on the broker whenever a collection request
// changes state. It carries enough for consumers to act without reading the tables.
type RequestEvent struct {
	Type         EventType     `json:"type"`
	RequestID    int64         `json:"request_id"`
	ResidentID   int64         `json:"resident_id"`
	CollectorID  *int64        `json:"collector_id,omitempty"`
	Neighborhood string        `json:"neighborhood"`
	Materials    []string      `json:"materials"`
	Status       RequestStatus `json:"status"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

func NewRequestEvent(req *CollectionRequest, at time.Time) RequestEvent {
	return RequestEvent{
		Type:         EventForStatus(req.Status),
		RequestID:    req.ID,
		ResidentID:   req.ResidentID,
		CollectorID:  req.CollectorID,
		Neighborhood: req.Neighborhood,
		Materials:    append([]string(nil), req.Materials...),
		Status:       req.Status,
		OccurredAt:   at,
	}
}
