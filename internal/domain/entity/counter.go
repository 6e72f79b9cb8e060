package entity

import (
	"time"

	"github.com/google/uuid"
)

// Counter is a physical calling station (loket). CurrentTicketID holds the
// ticket it most recently called and has not yet finished with.
type Counter struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClinicID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Label           string     `gorm:"type:varchar(50);not null" json:"label"`
	CurrentTicketID *uuid.UUID `gorm:"type:uuid" json:"current_ticket_id,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Clinic        Clinic  `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
	CurrentTicket *Ticket `gorm:"foreignKey:CurrentTicketID" json:"current_ticket,omitempty"`
}

func (Counter) TableName() string {
	return "counters"
}
