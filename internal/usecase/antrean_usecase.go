package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"antrean-backend/config"
	"antrean-backend/internal/converter"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/domain/repository"
	"antrean-backend/internal/gateway"
	"antrean-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrClinicNotFound      = errors.New("clinic not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrParticipantInactive = errors.New("insurance participant is not active")
	ErrInvalidIdentity     = errors.New("identity validation failed")
	ErrPastDate            = errors.New("cannot book a past date")
	ErrInvalidTransition   = errors.New("invalid ticket state transition")
)

// AntreanUsecase is the public booking surface: issue a ticket, cancel it,
// and project queue status for polling stations.
type AntreanUsecase interface {
	Ambil(ctx context.Context, req *dto.AmbilRequest) (*dto.AmbilResponse, error)
	Batal(ctx context.Context, req *dto.BatalRequest) error
	StatusForDate(ctx context.Context, clinicCode string, date time.Time) (*dto.StatusResponse, error)
	ListForDate(ctx context.Context, clinicCode string, date time.Time) ([]dto.TicketResponse, error)
}

type antreanUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	clinicRepo  repository.ClinicRepository
	doctorRepo  repository.DoctorRepository
	ticketRepo  repository.TicketRepository
	counterRepo repository.CounterRepository
	idemRepo    repository.IdempotencyRepository
	resolver    *service.ScheduleResolver
	ledger      *service.QuotaLedger
	eligibility *gateway.EligibilityClient
	identity    *gateway.IdentityValidator
	quotaScope  config.QuotaScope
}

func NewAntreanUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	clinicRepo repository.ClinicRepository,
	doctorRepo repository.DoctorRepository,
	ticketRepo repository.TicketRepository,
	counterRepo repository.CounterRepository,
	idemRepo repository.IdempotencyRepository,
	resolver *service.ScheduleResolver,
	ledger *service.QuotaLedger,
	eligibility *gateway.EligibilityClient,
	identity *gateway.IdentityValidator,
	quotaScope config.QuotaScope,
) AntreanUsecase {
	return &antreanUsecase{
		db:          db,
		log:         log,
		clinicRepo:  clinicRepo,
		doctorRepo:  doctorRepo,
		ticketRepo:  ticketRepo,
		counterRepo: counterRepo,
		idemRepo:    idemRepo,
		resolver:    resolver,
		ledger:      ledger,
		eligibility: eligibility,
		identity:    identity,
		quotaScope:  quotaScope,
	}
}

// Ambil issues a ticket. Preconditions run in order and short-circuit:
// idempotency replay, clinic lookup, eligibility, identity, schedule
// resolution, then the atomic quota reservation. Everything before the
// reservation is side-effect free, so failed requests can be retried.
func (u *antreanUsecase) Ambil(ctx context.Context, req *dto.AmbilRequest) (*dto.AmbilResponse, error) {
	date, err := time.ParseInLocation("2006-01-02", req.TanggalPeriksa, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse tanggalperiksa: %w", err)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, ErrPastDate
	}

	// Step 0: idempotency replay. A resubmitted request id returns the
	// original booking without touching the ledger.
	if req.RequestID != "" {
		record, err := u.idemRepo.FindByKey(u.db.WithContext(ctx), req.RequestID)
		if err != nil {
			u.log.Warnf("Failed idempotency lookup for %s: %+v", req.RequestID, err)
			return nil, err
		}
		if record != nil {
			u.log.Infof("Idempotent replay for request %s: %s", req.RequestID, record.BookingCode)
			return u.replayResponse(ctx, req, record)
		}
	}

	// Step 1: resolve clinic by exact code.
	clinic, err := u.clinicRepo.FindByCode(u.db.WithContext(ctx), req.KodePoli)
	if err != nil {
		u.log.Warnf("Failed to find clinic %s: %+v", req.KodePoli, err)
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	// Step 2: insurance eligibility, evaluated before any reservation.
	// A nil participant means the check was skipped or degraded.
	if req.NomorKartu != "" && u.eligibility != nil && u.eligibility.Enabled() {
		participant, err := u.eligibility.CheckParticipant(ctx, req.NomorKartu)
		if err != nil {
			return nil, err
		}
		if participant != nil && !participant.IsActive() {
			return nil, ErrParticipantInactive
		}
	}

	// Step 3: identity validation (bypass mode handled inside the gateway).
	if err := u.identity.Validate(ctx, req.NIK); err != nil {
		if errors.Is(err, gateway.ErrInvalidNIK) {
			return nil, ErrInvalidIdentity
		}
		return nil, err
	}

	// Step 4: find an available doctor for the clinic+date.
	doctor, slot, err := u.pickDoctor(ctx, clinic, date)
	if err != nil {
		return nil, err
	}

	// Step 5: atomic reserve. The sequence number comes back from the
	// same operation that consumed the slot.
	scope, capacity := u.scopeFor(clinic, doctor, slot)
	sequence, err := u.ledger.Reserve(ctx, scope, date, capacity)
	if err != nil {
		return nil, err
	}

	// Step 6: render the booking code from the issued sequence.
	bookingCode := service.FormatBookingCode(clinic.Code, date, sequence)

	// Step 7: persist the ticket (and idempotency record) in one
	// transaction; compensate the ledger if that fails.
	ticket := &entity.Ticket{
		ID:          uuid.New(),
		ClinicID:    clinic.ID,
		DoctorID:    &doctor.ID,
		ServiceDate: date,
		Sequence:    sequence,
		BookingCode: bookingCode,
		NIK:         req.NIK,
		CardNumber:  req.NomorKartu,
		Complaint:   req.Keluhan,
		Status:      entity.TicketStatusWaiting,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := u.ticketRepo.Create(tx, ticket); err != nil {
			return err
		}
		if req.RequestID != "" {
			record := &entity.IdempotencyRecord{
				ID:          uuid.New(),
				RequestKey:  req.RequestID,
				TicketID:    ticket.ID,
				BookingCode: bookingCode,
				Sequence:    sequence,
				ExpiresAt:   date.AddDate(0, 0, 1),
			}
			if err := u.idemRepo.Create(tx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.log.Errorf("Failed to insert ticket %s, compensating ledger: %+v", bookingCode, err)

		compCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if releaseErr := u.ledger.Release(compCtx, scope, date); releaseErr != nil {
			u.log.Errorf("CRITICAL: failed to release quota after insert failure for %s: %+v", bookingCode, releaseErr)
		}

		// A concurrent submission with the same request id may have won
		// the unique-index race; replay its result instead of failing.
		if req.RequestID != "" {
			record, lookupErr := u.idemRepo.FindByKey(u.db.WithContext(ctx), req.RequestID)
			if lookupErr == nil && record != nil {
				return u.replayResponse(ctx, req, record)
			}
		}
		return nil, err
	}

	status, err := u.ledger.Status(ctx, scope, date, capacity)
	if err != nil {
		u.log.Warnf("Failed status read after booking %s: %+v", bookingCode, err)
		status = &service.QuotaStatus{Capacity: capacity, Remaining: capacity - sequence}
	}

	u.log.Infof("Ticket issued: code=%s clinic=%s seq=%d doctor=%s", bookingCode, clinic.Code, sequence, doctor.Name)

	return &dto.AmbilResponse{
		Kodebooking:    bookingCode,
		NomorAntrean:   sequence,
		KodePoli:       clinic.Code,
		NamaPoli:       clinic.Name,
		TanggalPeriksa: req.TanggalPeriksa,
		NamaDokter:     doctor.Name,
		JamPraktik:     slot.StartTime + "-" + slot.EndTime,
		SisaKuota:      status.Remaining,
	}, nil
}

// Batal cancels a waiting ticket and returns its slot to the ledger. The
// sequence number is not reused; the freed slot goes to the next sequence.
func (u *antreanUsecase) Batal(ctx context.Context, req *dto.BatalRequest) error {
	ticket, err := u.ticketRepo.FindByBookingCode(u.db.WithContext(ctx), req.Kodebooking)
	if err != nil {
		u.log.Warnf("Failed to find ticket %s: %+v", req.Kodebooking, err)
		return err
	}
	if ticket == nil {
		return ErrTicketNotFound
	}

	rows, err := u.ticketRepo.UpdateStatusIf(u.db.WithContext(ctx), ticket.ID,
		entity.TicketStatusWaiting, entity.TicketStatusCancelled, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows == 0 {
		// Only waiting tickets can be cancelled; anything else is an
		// illegal transition for this path.
		return ErrInvalidTransition
	}

	scope := u.scopeForTicket(ticket)
	releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.ledger.Release(releaseCtx, scope, ticket.ServiceDate); err != nil {
		// Non-fatal: the ledger heals on the next startup re-sync.
		u.log.Warnf("Failed quota release for cancelled %s: %+v", req.Kodebooking, err)
	}

	u.log.Infof("Ticket cancelled: code=%s", req.Kodebooking)
	return nil
}

// StatusForDate is the read-side projection for polling displays.
func (u *antreanUsecase) StatusForDate(ctx context.Context, clinicCode string, date time.Time) (*dto.StatusResponse, error) {
	clinic, err := u.clinicRepo.FindByCode(u.db.WithContext(ctx), clinicCode)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	response := &dto.StatusResponse{CurrentlyServing: []dto.ServingCounter{}}

	if u.quotaScope == config.QuotaScopeDoctor {
		// Doctor-scoped deployments have no single clinic ledger account;
		// aggregate capacity from resolvable slots and consumption from
		// the tickets table.
		capacity, err := u.clinicCapacityFromSchedules(ctx, clinic, date)
		if err != nil {
			return nil, err
		}
		usage, err := u.ticketRepo.UsageForClinicDate(u.db.WithContext(ctx), clinic.ID, date)
		if err != nil {
			return nil, err
		}
		response.Capacity = capacity
		response.Allocated = int(usage.ActiveCount)
		response.Remaining = capacity - int(usage.ActiveCount)
	} else {
		status, err := u.ledger.Status(ctx, service.ClinicScope(clinic.Code, clinic.ID), date, clinic.DailyQuota)
		if err != nil {
			return nil, err
		}
		response.Capacity = status.Capacity
		response.Allocated = status.Allocated
		response.Remaining = status.Remaining
	}

	counters, err := u.counterRepo.FindByClinic(u.db.WithContext(ctx), clinic.ID)
	if err != nil {
		return nil, err
	}
	for i := range counters {
		if counters[i].CurrentTicket != nil {
			response.CurrentlyServing = append(response.CurrentlyServing, dto.ServingCounter{
				Counter:     counters[i].Label,
				Kodebooking: counters[i].CurrentTicket.BookingCode,
			})
		}
	}

	return response, nil
}

// ListForDate returns the full queue for a clinic+date, ordered by sequence.
// Display boards render this next to the status projection.
func (u *antreanUsecase) ListForDate(ctx context.Context, clinicCode string, date time.Time) ([]dto.TicketResponse, error) {
	clinic, err := u.clinicRepo.FindByCode(u.db.WithContext(ctx), clinicCode)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	tickets, err := u.ticketRepo.FindByClinicAndDate(u.db.WithContext(ctx), clinic.ID, date)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		responses = append(responses, *converter.TicketToResponse(&tickets[i]))
	}
	return responses, nil
}

// pickDoctor returns the first doctor of the clinic with a resolvable slot
// on the date. Exact-key lookups only.
func (u *antreanUsecase) pickDoctor(ctx context.Context, clinic *entity.Clinic, date time.Time) (*entity.Doctor, *service.EffectiveSlot, error) {
	doctors, err := u.doctorRepo.FindByClinic(u.db.WithContext(ctx), clinic.ID)
	if err != nil {
		return nil, nil, err
	}

	for i := range doctors {
		slot, err := u.resolver.Resolve(ctx, doctors[i].ID, date)
		if err != nil {
			if errors.Is(err, service.ErrDoctorUnavailable) {
				continue
			}
			return nil, nil, err
		}
		return &doctors[i], slot, nil
	}

	return nil, nil, service.ErrDoctorUnavailable
}

func (u *antreanUsecase) scopeFor(clinic *entity.Clinic, doctor *entity.Doctor, slot *service.EffectiveSlot) (service.Scope, int) {
	if u.quotaScope == config.QuotaScopeDoctor {
		return service.DoctorScope(doctor.ID, clinic.Code, clinic.ID), slot.Capacity
	}
	return service.ClinicScope(clinic.Code, clinic.ID), clinic.DailyQuota
}

// scopeForTicket rebuilds the ledger scope a ticket was reserved under.
// Requires the ticket's Clinic association to be loaded.
func (u *antreanUsecase) scopeForTicket(ticket *entity.Ticket) service.Scope {
	if u.quotaScope == config.QuotaScopeDoctor && ticket.DoctorID != nil {
		return service.DoctorScope(*ticket.DoctorID, ticket.Clinic.Code, ticket.ClinicID)
	}
	return service.ClinicScope(ticket.Clinic.Code, ticket.ClinicID)
}

func (u *antreanUsecase) clinicCapacityFromSchedules(ctx context.Context, clinic *entity.Clinic, date time.Time) (int, error) {
	doctors, err := u.doctorRepo.FindByClinic(u.db.WithContext(ctx), clinic.ID)
	if err != nil {
		return 0, err
	}
	capacity := 0
	for i := range doctors {
		slot, err := u.resolver.Resolve(ctx, doctors[i].ID, date)
		if err != nil {
			if errors.Is(err, service.ErrDoctorUnavailable) {
				continue
			}
			return 0, err
		}
		capacity += slot.Capacity
	}
	return capacity, nil
}

// replayResponse rebuilds the original Ambil response from a stored
// idempotency record.
func (u *antreanUsecase) replayResponse(ctx context.Context, req *dto.AmbilRequest, record *entity.IdempotencyRecord) (*dto.AmbilResponse, error) {
	response := &dto.AmbilResponse{
		Kodebooking:    record.BookingCode,
		NomorAntrean:   record.Sequence,
		KodePoli:       req.KodePoli,
		TanggalPeriksa: req.TanggalPeriksa,
	}

	ticket, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), record.TicketID)
	if err != nil || ticket == nil {
		u.log.Warnf("Failed to reload ticket %s for replay: %+v", record.TicketID, err)
		return response, nil
	}
	response.KodePoli = ticket.Clinic.Code
	response.NamaPoli = ticket.Clinic.Name
	return response, nil
}
