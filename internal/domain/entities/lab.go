package entities

import (
	"math"
	"time"
)

// Lab represents a test lab offering one or more clinical services
type Lab struct {
	ID                string                     `json:"id" db:"id"`
	LabType           int                        `json:"type" db:"lab_type"`
	Capacity          int                        `json:"capacity" db:"capacity"`
	Availability      float64                    `json:"availability" db:"availability"`
	CaseQueue         map[string]CaseQueueEntry  `json:"case_queue" db:"-"`
	ServicesAvailable map[string]ServiceOffering `json:"services_available" db:"-"`
	CreatedAt         time.Time                  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at" db:"updated_at"`
}

// ServiceOffering is one procedure a lab provides. Price is a pointer so
// a catalog entry without a usable base price can be told apart from a
// free one; such services are skipped by the predictors.
type ServiceOffering struct {
	Price         *float64 `json:"price,omitempty"`
	ProcedureType *float64 `json:"type,omitempty"`
	AvgTATDays    *float64 `json:"avg_tat,omitempty"`
}

// CaseQueueEntry is a single admitted case, keyed by case ID inside a
// lab's queue.
type CaseQueueEntry struct {
	ServiceType string `json:"service_type"`
}

// AdmissionState is the queue snapshot returned after admitting a case.
type AdmissionState struct {
	LabID        string                    `json:"lab_id"`
	CaseID       string                    `json:"case_id"`
	CaseQueue    map[string]CaseQueueEntry `json:"current_queue"`
	Capacity     int                       `json:"capacity"`
	Availability float64                   `json:"cur_availability"`
}

// EffectiveCapacity returns the lab's capacity, treating anything below
// one as one so availability arithmetic never divides by zero.
func (l *Lab) EffectiveCapacity() int {
	if l.Capacity < 1 {
		return 1
	}
	return l.Capacity
}

// HasService reports whether the lab offers the service with the given
// identifier. Membership is exact key presence.
func (l *Lab) HasService(serviceID string) bool {
	_, ok := l.ServicesAvailable[serviceID]
	return ok
}

// Availability computes the capacity headroom percentage for a queue of
// the given size: max(0, (capacity-queueSize)/capacity*100), clamped to
// [0,100] and rounded to two decimal places.
func Availability(capacity, queueSize int) float64 {
	if capacity < 1 {
		capacity = 1
	}
	pct := float64(capacity-queueSize) / float64(capacity) * 100
	if pct < 0 {
		return 0
	}
	return math.Round(pct*100) / 100
}
