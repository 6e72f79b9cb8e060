package repository

import (
	"time"

	"antrean-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketUsage summarizes consumed quota for one clinic+date: how many
// tickets still count against capacity and the highest sequence handed out.
type TicketUsage struct {
	ActiveCount int64
	MaxSequence int
}

type TicketRepository interface {
	Create(db *gorm.DB, ticket *entity.Ticket) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Ticket, error)
	FindByBookingCode(db *gorm.DB, code string) (*entity.Ticket, error)
	FindByClinicAndDate(db *gorm.DB, clinicID uuid.UUID, date time.Time) ([]entity.Ticket, error)
	// FindLowestWaiting returns the waiting ticket with the smallest
	// sequence for clinic+date, or nil when the queue is empty.
	FindLowestWaiting(db *gorm.DB, clinicID uuid.UUID, date time.Time) (*entity.Ticket, error)
	// ClaimForCounter atomically moves a waiting ticket to called and binds
	// it to the counter. Returns affected rows: 0 means another station won
	// the race (or the ticket left the waiting state).
	ClaimForCounter(db *gorm.DB, ticketID, counterID uuid.UUID, calledAt time.Time) (int64, error)
	// UpdateStatusIf performs a guarded transition: the update only applies
	// while the ticket is still in the expected state. Returns affected rows.
	UpdateStatusIf(db *gorm.DB, ticketID uuid.UUID, from, to entity.TicketStatus, at time.Time) (int64, error)
	UsageForClinicDate(db *gorm.DB, clinicID uuid.UUID, date time.Time) (*TicketUsage, error)
	UsageForDoctorDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*TicketUsage, error)
}
