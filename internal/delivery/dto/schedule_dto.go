package dto

import "time"

// Weekly schedule and leave maintenance DTOs.

type CreateScheduleRequest struct {
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	Weekday   int    `json:"weekday" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Capacity  int    `json:"capacity" validate:"gte=0"`
}

type UpdateScheduleRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	Capacity  int    `json:"capacity" validate:"gte=0"`
}

type ScheduleResponse struct {
	ID        int       `json:"id"`
	DoctorID  string    `json:"doctor_id"`
	Weekday   int       `json:"weekday"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateLeaveRequest struct {
	DoctorID  string  `json:"doctor_id" validate:"required,uuid"`
	LeaveDate string  `json:"leave_date" validate:"required,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=15:04"`
	Reason    string  `json:"reason" validate:"max=255"`
}

type LeaveResponse struct {
	ID        int     `json:"id"`
	DoctorID  string  `json:"doctor_id"`
	LeaveDate string  `json:"leave_date"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Reason    string  `json:"reason"`
}
