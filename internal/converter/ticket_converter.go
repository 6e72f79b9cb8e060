package converter

import (
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
)

// TicketToResponse converts a Ticket entity to its DTO.
func TicketToResponse(ticket *entity.Ticket) *dto.TicketResponse {
	if ticket == nil {
		return nil
	}

	response := &dto.TicketResponse{
		ID:           ticket.ID.String(),
		Kodebooking:  ticket.BookingCode,
		NomorAntrean: ticket.Sequence,
		NIK:          ticket.NIK,
		Status:       string(ticket.Status),
		CreatedAt:    ticket.CreatedAt,
		CalledAt:     ticket.CalledAt,
		ServedAt:     ticket.ServedAt,
	}

	if ticket.Clinic.Code != "" {
		response.KodePoli = ticket.Clinic.Code
	}
	if ticket.CounterID != nil {
		response.CounterID = ticket.CounterID.String()
	}

	return response
}

// CounterToResponse converts a Counter entity to its DTO.
func CounterToResponse(counter *entity.Counter) *dto.CounterResponse {
	if counter == nil {
		return nil
	}

	response := &dto.CounterResponse{
		ID:       counter.ID.String(),
		ClinicID: counter.ClinicID.String(),
		Label:    counter.Label,
	}
	if counter.CurrentTicket != nil {
		response.CurrentTicket = TicketToResponse(counter.CurrentTicket)
	}
	return response
}
