package entities

import (
	"time"

	"github.com/google/uuid"
)

// QueueEventType represents the type of queue event
type QueueEventType string

const (
	QueueEventTypeCaseAdmitted       QueueEventType = "case_admitted"
	QueueEventTypeAvailabilityUpdate QueueEventType = "availability_update"
)

// QueueEvent is a real-time update published when a lab's case queue
// changes.
type QueueEvent struct {
	ID           string         `json:"id"`
	LabID        string         `json:"lab_id"`
	EventType    QueueEventType `json:"event_type"`
	CaseID       string         `json:"case_id,omitempty"`
	ServiceType  string         `json:"service_type,omitempty"`
	QueueSize    int            `json:"queue_size"`
	Availability float64        `json:"availability"`
	Timestamp    time.Time      `json:"timestamp"`
}

// NewQueueEvent creates a new queue event for an admitted case
func NewQueueEvent(labID string, eventType QueueEventType, state *AdmissionState) *QueueEvent {
	evt := &QueueEvent{
		ID:        uuid.NewString(),
		LabID:     labID,
		EventType: eventType,
		Timestamp: time.Now(),
	}
	if state != nil {
		evt.CaseID = state.CaseID
		evt.QueueSize = len(state.CaseQueue)
		evt.Availability = state.Availability
		if entry, ok := state.CaseQueue[state.CaseID]; ok {
			evt.ServiceType = entry.ServiceType
		}
	}
	return evt
}
