package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorSchedule is one row per doctor per active weekday. Times are stored
// as "HH:MM" strings, matching how the front desk configures them.
type DoctorSchedule struct {
	ID        int          `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:ux_doctor_weekday,priority:1" json:"doctor_id"`
	Weekday   time.Weekday `gorm:"not null;uniqueIndex:ux_doctor_weekday,priority:2" json:"weekday"`
	StartTime string       `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string       `gorm:"type:varchar(5);not null" json:"end_time"`
	Capacity  int          `gorm:"not null" json:"capacity"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}
