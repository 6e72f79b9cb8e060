package usecase

import (
	"context"
	"errors"
	"time"

	"antrean-backend/internal/converter"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/domain/repository"
	"antrean-backend/internal/gateway"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrCounterNotFound = errors.New("counter not found")
	ErrEmptyQueue      = errors.New("no waiting tickets in queue")
	ErrTicketNotOwned  = errors.New("ticket is not bound to this counter")
)

// claimRetries bounds the claim loop: losing the race this many times in a
// row means the queue is being drained faster than we can read it.
const claimRetries = 3

// CounterUsecase models the physical calling stations.
type CounterUsecase interface {
	CallNext(ctx context.Context, counterID uuid.UUID) (*dto.TicketResponse, error)
	Serve(ctx context.Context, counterID, ticketID uuid.UUID) error
	NoShow(ctx context.Context, counterID, ticketID uuid.UUID) error
	CreateCounter(ctx context.Context, req *dto.CreateCounterRequest) (*dto.CounterResponse, error)
}

type counterUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	counterRepo repository.CounterRepository
	ticketRepo  repository.TicketRepository
	clinicRepo  repository.ClinicRepository
	encounters  *gateway.EncounterClient
}

func NewCounterUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	counterRepo repository.CounterRepository,
	ticketRepo repository.TicketRepository,
	clinicRepo repository.ClinicRepository,
	encounters *gateway.EncounterClient,
) CounterUsecase {
	return &counterUsecase{
		db:          db,
		log:         log,
		counterRepo: counterRepo,
		ticketRepo:  ticketRepo,
		clinicRepo:  clinicRepo,
		encounters:  encounters,
	}
}

// CallNext pulls the lowest-sequence waiting ticket for the counter's
// clinic today. Selection and binding happen in one conditional update, so
// concurrent stations racing for the same ticket cannot both win; the loser
// retries with the next candidate.
func (u *counterUsecase) CallNext(ctx context.Context, counterID uuid.UUID) (*dto.TicketResponse, error) {
	db := u.db.WithContext(ctx)

	counter, err := u.counterRepo.FindByID(db, counterID)
	if err != nil {
		return nil, err
	}
	if counter == nil {
		return nil, ErrCounterNotFound
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	for attempt := 0; attempt < claimRetries; attempt++ {
		candidate, err := u.ticketRepo.FindLowestWaiting(db, counter.ClinicID, today)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, ErrEmptyQueue
		}

		rows, err := u.ticketRepo.ClaimForCounter(db, candidate.ID, counterID, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// Another station claimed it first.
			u.log.Debugf("Lost claim race for ticket %s, retrying", candidate.BookingCode)
			continue
		}

		if err := u.counterRepo.SetCurrentTicket(db, counterID, &candidate.ID); err != nil {
			u.log.Warnf("Failed to bind ticket %s to counter %s: %+v", candidate.BookingCode, counter.Label, err)
		}

		u.log.Infof("Ticket called: code=%s counter=%s", candidate.BookingCode, counter.Label)

		called, err := u.ticketRepo.FindByID(db, candidate.ID)
		if err != nil || called == nil {
			return converter.TicketToResponse(candidate), nil
		}
		return converter.TicketToResponse(called), nil
	}

	return nil, ErrEmptyQueue
}

// Serve completes a called ticket and fires the encounter submission.
func (u *counterUsecase) Serve(ctx context.Context, counterID, ticketID uuid.UUID) error {
	ticket, err := u.ownedTicket(ctx, counterID, ticketID)
	if err != nil {
		return err
	}

	servedAt := time.Now().UTC()
	rows, err := u.ticketRepo.UpdateStatusIf(u.db.WithContext(ctx), ticketID,
		entity.TicketStatusCalled, entity.TicketStatusServed, servedAt)
	if err != nil {
		return err
	}
	if rows == 0 {
		u.log.Errorf("Invalid transition: serve on ticket %s in state %s", ticket.BookingCode, ticket.Status)
		return ErrInvalidTransition
	}

	if err := u.counterRepo.SetCurrentTicket(u.db.WithContext(ctx), counterID, nil); err != nil {
		u.log.Warnf("Failed to clear counter %s: %+v", counterID, err)
	}

	// Fire-and-log: a registry outage must never block serving patients.
	if u.encounters != nil {
		u.encounters.SubmitEncounterAsync(gateway.Encounter{
			BookingCode: ticket.BookingCode,
			NIK:         ticket.NIK,
			ClinicCode:  ticket.Clinic.Code,
			ServedAt:    servedAt,
		})
	}

	u.log.Infof("Ticket served: code=%s", ticket.BookingCode)
	return nil
}

// NoShow marks a called ticket as not present. The patient re-queues with a
// new ticket; the old one is terminal.
func (u *counterUsecase) NoShow(ctx context.Context, counterID, ticketID uuid.UUID) error {
	ticket, err := u.ownedTicket(ctx, counterID, ticketID)
	if err != nil {
		return err
	}

	rows, err := u.ticketRepo.UpdateStatusIf(u.db.WithContext(ctx), ticketID,
		entity.TicketStatusCalled, entity.TicketStatusNoShow, time.Now().UTC())
	if err != nil {
		return err
	}
	if rows == 0 {
		u.log.Errorf("Invalid transition: no-show on ticket %s in state %s", ticket.BookingCode, ticket.Status)
		return ErrInvalidTransition
	}

	if err := u.counterRepo.SetCurrentTicket(u.db.WithContext(ctx), counterID, nil); err != nil {
		u.log.Warnf("Failed to clear counter %s: %+v", counterID, err)
	}

	u.log.Infof("Ticket marked no-show: code=%s", ticket.BookingCode)
	return nil
}

func (u *counterUsecase) CreateCounter(ctx context.Context, req *dto.CreateCounterRequest) (*dto.CounterResponse, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, err
	}

	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), clinicID)
	if err != nil {
		return nil, err
	}
	if clinic == nil {
		return nil, ErrClinicNotFound
	}

	counter := &entity.Counter{
		ID:       uuid.New(),
		ClinicID: clinicID,
		Label:    req.Label,
	}
	if err := u.counterRepo.Create(u.db.WithContext(ctx), counter); err != nil {
		return nil, err
	}

	return converter.CounterToResponse(counter), nil
}

func (u *counterUsecase) ownedTicket(ctx context.Context, counterID, ticketID uuid.UUID) (*entity.Ticket, error) {
	ticket, err := u.ticketRepo.FindByID(u.db.WithContext(ctx), ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if ticket.CounterID == nil || *ticket.CounterID != counterID {
		return nil, ErrTicketNotOwned
	}
	return ticket, nil
}
