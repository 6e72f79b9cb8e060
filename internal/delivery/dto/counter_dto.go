package dto

import "time"

// Request DTOs

type CallNextRequest struct {
	CounterID string `json:"counter_id" validate:"required,uuid"`
}

type FinishTicketRequest struct {
	CounterID string `json:"counter_id" validate:"required,uuid"`
	TicketID  string `json:"ticket_id" validate:"required,uuid"`
}

type CreateCounterRequest struct {
	ClinicID string `json:"clinic_id" validate:"required,uuid"`
	Label    string `json:"label" validate:"required,max=50"`
}

// Response DTOs

type TicketResponse struct {
	ID           string     `json:"id"`
	Kodebooking  string     `json:"kodebooking"`
	NomorAntrean int        `json:"nomorantrean"`
	KodePoli     string     `json:"kodepoli,omitempty"`
	NIK          string     `json:"nik"`
	Status       string     `json:"status"`
	CounterID    string     `json:"counter_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CalledAt     *time.Time `json:"called_at,omitempty"`
	ServedAt     *time.Time `json:"served_at,omitempty"`
}

type CounterResponse struct {
	ID            string          `json:"id"`
	ClinicID      string          `json:"clinic_id"`
	Label         string          `json:"label"`
	CurrentTicket *TicketResponse `json:"current_ticket,omitempty"`
}
