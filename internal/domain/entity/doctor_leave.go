package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorLeave overrides the weekly schedule for a single date. A nil
// StartTime/EndTime pair means full-day leave. At most one row per
// doctor+date.
type DoctorLeave struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_doctor_leave_date,priority:1" json:"doctor_id"`
	LeaveDate time.Time `gorm:"type:date;not null;uniqueIndex:ux_doctor_leave_date,priority:2" json:"leave_date"`
	StartTime *string   `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime   *string   `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	Reason    string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (DoctorLeave) TableName() string {
	return "doctor_leaves"
}

// IsFullDay reports whether the leave blocks the whole day.
func (l *DoctorLeave) IsFullDay() bool {
	return l.StartTime == nil || l.EndTime == nil
}
