// Package appointment implements slot availability and the appointment
// lifecycle on top of a transactional store.
package appointment

import (
	"strings"
	"time"
)

type Role string

const (
	RolePatient  Role = "patient"
	RoleProvider Role = "provider"
)

func ParseRole(raw string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RolePatient, RoleProvider:
		return r, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses that hold a provider's time.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return s, true
	default:
		return "", false
	}
}

func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	ProviderID string    `json:"provider_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Purpose    string    `json:"purpose"`
	Notes      string    `json:"notes"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type User struct {
	ID        string
	Role      Role
	FirstName string
	LastName  string
	Email     string
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

// Outbox event types. The Kafka topic equals the event type.
const (
	EventRequested = "appointment.requested.v1"
	EventApproved  = "appointment.approved.v1"
	EventRejected  = "appointment.rejected.v1"
	EventCompleted = "appointment.completed.v1"
	EventCancelled = "appointment.cancelled.v1"
	EventReminded  = "appointment.reminded.v1"
)

// Event is a domain event recorded in the same transaction as the change
// it describes.
type Event struct {
	Type          string
	AppointmentID string
	Payload       []byte
}
