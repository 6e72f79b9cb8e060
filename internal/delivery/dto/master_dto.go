package dto

import "time"

// Reference-data maintenance DTOs (clinics, doctors).

type CreateClinicRequest struct {
	Code       string `json:"code" validate:"required,max=10,uppercase"`
	Name       string `json:"name" validate:"required,max=100"`
	DailyQuota int    `json:"daily_quota" validate:"gte=0"`
}

type UpdateClinicRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	DailyQuota int    `json:"daily_quota" validate:"gte=0"`
}

type ClinicResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	DailyQuota int       `json:"daily_quota"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Specialty string `json:"specialty" validate:"max=100"`
	ClinicID  string `json:"clinic_id" validate:"omitempty,uuid"`
}

type DoctorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	ClinicID  string    `json:"clinic_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
