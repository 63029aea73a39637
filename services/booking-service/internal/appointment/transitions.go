package appointment

import (
	"strings"
	"time"

	"github.com/md-rashed-zaman/carebook/services/booking-service/internal/notify"
)

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := transitions[a]
	return a, ok
}

type transition struct {
	role  Role
	from  []Status
	to    Status
	event string
	// futureOnly lists source states that may only leave while the
	// appointment start is still ahead.
	futureOnly []Status
	notice     func(recipientID, appointmentID string, start time.Time) notify.Notification
}

var transitions = map[Action]transition{
	ActionApprove: {
		role:   RoleProvider,
		from:   []Status{StatusPending},
		to:     StatusApproved,
		event:  EventApproved,
		notice: notify.Approved,
	},
	ActionReject: {
		role:   RoleProvider,
		from:   []Status{StatusPending},
		to:     StatusRejected,
		event:  EventRejected,
		notice: notify.Rejected,
	},
	ActionComplete: {
		role:   RoleProvider,
		from:   []Status{StatusApproved},
		to:     StatusCompleted,
		event:  EventCompleted,
		notice: notify.Completed,
	},
	ActionCancel: {
		role:       RolePatient,
		from:       []Status{StatusPending, StatusApproved},
		to:         StatusCancelled,
		event:      EventCancelled,
		futureOnly: []Status{StatusApproved},
		notice:     notify.Cancelled,
	},
}

func (t transition) allows(from Status, start, now time.Time) bool {
	if !contains(t.from, from) {
		return false
	}
	if contains(t.futureOnly, from) && !start.After(now) {
		return false
	}
	return true
}

// party reports whether actor is the side of appt the transition belongs to.
func (t transition) party(actor Actor, appt Appointment) bool {
	if actor.Role != t.role {
		return false
	}
	switch t.role {
	case RolePatient:
		return actor.ID == appt.PatientID
	case RoleProvider:
		return actor.ID == appt.ProviderID
	}
	return false
}

func (t transition) recipient(appt Appointment) string {
	if t.role == RolePatient {
		return appt.ProviderID
	}
	return appt.PatientID
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

const cancelNote = "Cancelled by user"

func nextNotes(action Action, current, supplied string) string {
	supplied = strings.TrimSpace(supplied)
	if action == ActionCancel {
		if supplied == "" {
			return cancelNote
		}
		return cancelNote + ". Reason: " + supplied
	}
	if supplied == "" {
		return current
	}
	return supplied
}
