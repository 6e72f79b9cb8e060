package entity

import (
	"time"

	"github.com/google/uuid"
)

// Clinic represents a poliklinik. The short code doubles as the booking-code
// prefix (e.g. "INT", "IGD").
type Clinic struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	DailyQuota int       `gorm:"not null;default:0" json:"daily_quota"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Clinic) TableName() string {
	return "clinics"
}
