package entity

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the lifecycle state of a queue ticket.
type TicketStatus string

const (
	TicketStatusWaiting   TicketStatus = "waiting"
	TicketStatusCalled    TicketStatus = "called"
	TicketStatusServed    TicketStatus = "served"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusNoShow    TicketStatus = "no_show"
)

// ticketTransitions lists the allowed next states per current state.
// Served, cancelled and no_show are terminal. A no-show patient gets a new
// ticket; the old one is never resurrected.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusWaiting: {TicketStatusCalled, TicketStatusCancelled},
	TicketStatusCalled:  {TicketStatusServed, TicketStatusNoShow},
}

// CanTransition reports whether from → to is a legal ticket transition.
func CanTransition(from, to TicketStatus) bool {
	for _, allowed := range ticketTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Ticket is one issued queue slot. Sequence is unique and gap-free within
// clinic+date; the booking code is rendered from it and never changes.
type Ticket struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:ux_clinic_date_seq,priority:1" json:"clinic_id"`
	DoctorID    *uuid.UUID   `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	ServiceDate time.Time    `gorm:"type:date;not null;uniqueIndex:ux_clinic_date_seq,priority:2" json:"service_date"`
	Sequence    int          `gorm:"not null;uniqueIndex:ux_clinic_date_seq,priority:3" json:"sequence"`
	BookingCode string       `gorm:"type:varchar(30);uniqueIndex;not null" json:"booking_code"`
	NIK         string       `gorm:"type:varchar(16);not null;index" json:"nik"`
	CardNumber  string       `gorm:"type:varchar(20)" json:"card_number"`
	Complaint   string       `gorm:"type:varchar(500)" json:"complaint"`
	Status      TicketStatus `gorm:"type:varchar(12);not null;default:'waiting';index" json:"status"`
	CounterID   *uuid.UUID   `gorm:"type:uuid;index" json:"counter_id,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	CalledAt    *time.Time   `json:"called_at,omitempty"`
	ServedAt    *time.Time   `json:"served_at,omitempty"`
	CancelledAt *time.Time   `json:"cancelled_at,omitempty"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Clinic Clinic  `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// IsWaiting checks if the ticket is still queued.
func (t *Ticket) IsWaiting() bool {
	return t.Status == TicketStatusWaiting
}

// IsTerminal checks if the ticket reached a final state.
func (t *Ticket) IsTerminal() bool {
	switch t.Status {
	case TicketStatusServed, TicketStatusCancelled, TicketStatusNoShow:
		return true
	}
	return false
}
