package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyRecord stores the outcome of a booking request keyed by the
// client-supplied request id. Resubmitting the same key returns the original
// booking instead of reserving again.
type IdempotencyRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestKey  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"request_key"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null" json:"ticket_id"`
	BookingCode string    `gorm:"type:varchar(30);not null" json:"booking_code"`
	Sequence    int       `gorm:"not null" json:"sequence"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
