package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/usecase"
	"antrean-backend/pkg/response"
	"antrean-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CounterHandler exposes the calling-station operations.
type CounterHandler struct {
	usecase   usecase.CounterUsecase
	validator *validator.CustomValidator
	log       *logrus.Logger
}

func NewCounterHandler(uc usecase.CounterUsecase, v *validator.CustomValidator, log *logrus.Logger) *CounterHandler {
	return &CounterHandler{
		usecase:   uc,
		validator: v,
		log:       log,
	}
}

// CallNext handles POST /antrean/panggil.
func (h *CounterHandler) CallNext(w http.ResponseWriter, r *http.Request) {
	var req dto.CallNextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	counterID, _ := uuid.Parse(req.CounterID)

	ticket, err := h.usecase.CallNext(r.Context(), counterID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCounterNotFound):
			response.NotFound(w, "Counter not found")
		case errors.Is(err, usecase.ErrEmptyQueue):
			response.NotFound(w, "No waiting tickets")
		default:
			h.log.Errorf("Failed to call next ticket: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, "Ok", ticket)
}

// Serve handles POST /antrean/layani.
func (h *CounterHandler) Serve(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.usecase.Serve, "served")
}

// NoShow handles POST /antrean/lewati.
func (h *CounterHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.usecase.NoShow, "skipped")
}

// CreateCounter handles POST /api/v1/admin/counters.
func (h *CounterHandler) CreateCounter(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCounterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	counter, err := h.usecase.CreateCounter(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicNotFound) {
			response.NotFound(w, "Clinic not found")
			return
		}
		h.log.Errorf("Failed to create counter: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Created(w, "Counter created", counter)
}

func (h *CounterHandler) finish(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, counterID, ticketID uuid.UUID) error, action string) {
	var req dto.FinishTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	counterID, _ := uuid.Parse(req.CounterID)
	ticketID, _ := uuid.Parse(req.TicketID)

	if err := op(r.Context(), counterID, ticketID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTicketNotFound):
			response.NotFound(w, "Ticket not found")
		case errors.Is(err, usecase.ErrTicketNotOwned):
			response.Conflict(w, "Ticket is not bound to this counter")
		case errors.Is(err, usecase.ErrInvalidTransition):
			response.Conflict(w, "Ticket is not in a callable state")
		default:
			h.log.Errorf("Failed to finish ticket: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, "Ok", map[string]string{"ticket_id": req.TicketID, "result": action})
}
