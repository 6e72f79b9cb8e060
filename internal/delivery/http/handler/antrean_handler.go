package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/gateway"
	"antrean-backend/internal/service"
	"antrean-backend/internal/usecase"
	"antrean-backend/pkg/response"
	"antrean-backend/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AntreanHandler exposes the mobile-JKN bridging surface: take, cancel and
// poll queue status.
type AntreanHandler struct {
	usecase   usecase.AntreanUsecase
	validator *validator.CustomValidator
	log       *logrus.Logger
}

func NewAntreanHandler(uc usecase.AntreanUsecase, v *validator.CustomValidator, log *logrus.Logger) *AntreanHandler {
	return &AntreanHandler{
		usecase:   uc,
		validator: v,
		log:       log,
	}
}

// Ambil handles POST /antrean/ambil. The X-Request-ID header, when present,
// makes the call idempotent: resubmissions return the original booking.
func (h *AntreanHandler) Ambil(w http.ResponseWriter, r *http.Request) {
	var req dto.AmbilRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.RequestID = r.Header.Get("X-Request-ID")

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.usecase.Ambil(r.Context(), &req)
	if err != nil {
		h.writeAmbilError(w, err)
		return
	}

	response.Success(w, "Ok", result)
}

// Batal handles POST /antrean/batal.
func (h *AntreanHandler) Batal(w http.ResponseWriter, r *http.Request) {
	var req dto.BatalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.usecase.Batal(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, usecase.ErrTicketNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, usecase.ErrInvalidTransition):
			response.Conflict(w, "Ticket can no longer be cancelled")
		default:
			h.log.Errorf("Failed to cancel booking: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, "Ok", map[string]string{"kodebooking": req.Kodebooking})
}

// Status handles GET /antrean/status/{kodepoli}/{tanggal}. Queue displays
// poll this endpoint.
func (h *AntreanHandler) Status(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clinicCode := vars["kodepoli"]

	date, err := time.ParseInLocation("2006-01-02", vars["tanggal"], time.UTC)
	if err != nil {
		response.BadRequest(w, "tanggal must match format 2006-01-02")
		return
	}

	result, err := h.usecase.StatusForDate(r.Context(), clinicCode, date)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicNotFound) {
			response.NotFound(w, "Clinic not found")
			return
		}
		h.log.Errorf("Failed to read queue status: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Ok", result)
}

// List handles GET /antrean/daftar/{kodepoli}/{tanggal}: the full queue for
// display boards, ordered by sequence.
func (h *AntreanHandler) List(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	date, err := time.ParseInLocation("2006-01-02", vars["tanggal"], time.UTC)
	if err != nil {
		response.BadRequest(w, "tanggal must match format 2006-01-02")
		return
	}

	tickets, err := h.usecase.ListForDate(r.Context(), vars["kodepoli"], date)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicNotFound) {
			response.NotFound(w, "Clinic not found")
			return
		}
		h.log.Errorf("Failed to list queue: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Ok", tickets)
}

func (h *AntreanHandler) writeAmbilError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrClinicNotFound):
		response.NotFound(w, "Clinic not found")
	case errors.Is(err, usecase.ErrPastDate):
		response.BadRequest(w, "tanggalperiksa cannot be in the past")
	case errors.Is(err, usecase.ErrParticipantInactive):
		response.Error(w, http.StatusUnprocessableEntity, "Insurance participant is not active")
	case errors.Is(err, usecase.ErrInvalidIdentity):
		response.Error(w, http.StatusUnprocessableEntity, "NIK failed identity validation")
	case errors.Is(err, service.ErrDoctorUnavailable):
		response.Conflict(w, "No doctor is available on the requested date")
	case errors.Is(err, service.ErrQuotaExceeded):
		response.Conflict(w, "Daily quota is exhausted")
	case errors.Is(err, gateway.ErrEligibilityUnavailable):
		response.Error(w, http.StatusServiceUnavailable, "Eligibility service is unavailable, try again later")
	default:
		h.log.Errorf("Failed to issue ticket: %+v", err)
		response.InternalServerError(w, "")
	}
}
