package bootstrap

import (
	"context"
	"time"

	"antrean-backend/config"
	deliveryhttp "antrean-backend/internal/delivery/http"
	"antrean-backend/internal/delivery/http/handler"
	"antrean-backend/internal/gateway"
	"antrean-backend/internal/infrastructure/cache"
	"antrean-backend/internal/infrastructure/database"
	"antrean-backend/internal/repository"
	"antrean-backend/internal/service"
	"antrean-backend/internal/usecase"
	"antrean-backend/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds everything the entrypoint needs to run and to shut down.
type App struct {
	Config *config.Config
	Log    *logrus.Logger
	Router *mux.Router

	db      *gorm.DB
	redis   *redis.Client
	ledger  *service.QuotaLedger
	janitor *service.IdempotencyJanitor
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	// Repositories.
	clinicRepo := repository.NewClinicRepository()
	doctorRepo := repository.NewDoctorRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	leaveRepo := repository.NewDoctorLeaveRepository()
	quotaRepo := repository.NewDailyQuotaRepository()
	ticketRepo := repository.NewTicketRepository()
	counterRepo := repository.NewCounterRepository()
	idemRepo := repository.NewIdempotencyRepository()

	// Domain services.
	resolver := service.NewScheduleResolver(db, log, scheduleRepo, leaveRepo)
	ledger := service.NewQuotaLedger(db, redisClient, log, quotaRepo, ticketRepo, clinicRepo)
	janitor := service.NewIdempotencyJanitor(db, log, idemRepo)

	// Rebuild today's ledger keys from durable state before serving.
	syncCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ledger.SyncOnStartup(syncCtx); err != nil {
		log.Warnf("Ledger startup sync incomplete: %+v", err)
	}

	// External collaborators.
	eligibility := gateway.NewEligibilityClient(cfg.BPJS, log)
	identity := gateway.NewIdentityValidator(cfg.Dukcapil, log)
	var encounters *gateway.EncounterClient
	if cfg.SatuSehat.Enabled {
		encounters = gateway.NewEncounterClient(cfg.SatuSehat, log)
	}

	// Usecases.
	antreanUC := usecase.NewAntreanUsecase(db, log, clinicRepo, doctorRepo, ticketRepo,
		counterRepo, idemRepo, resolver, ledger, eligibility, identity, cfg.Quota.Scope)
	counterUC := usecase.NewCounterUsecase(db, log, counterRepo, ticketRepo, clinicRepo, encounters)
	masterUC := usecase.NewMasterUsecase(db, log, clinicRepo, doctorRepo)
	scheduleUC := usecase.NewDoctorScheduleUsecase(db, log, scheduleRepo, doctorRepo, clinicRepo, ledger, cfg.Quota.Scope)
	leaveUC := usecase.NewDoctorLeaveUsecase(db, log, leaveRepo, doctorRepo)

	// Delivery.
	v := validator.NewValidator()
	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		AntreanHandler:  handler.NewAntreanHandler(antreanUC, v, log),
		CounterHandler:  handler.NewCounterHandler(counterUC, v, log),
		MasterHandler:   handler.NewMasterHandler(masterUC, v, log),
		ScheduleHandler: handler.NewScheduleHandler(scheduleUC, leaveUC, v, log),
	})

	return &App{
		Config:  cfg,
		Log:     log,
		Router:  router,
		db:      db,
		redis:   redisClient,
		ledger:  ledger,
		janitor: janitor,
	}, nil
}

// Shutdown releases background workers and connections.
func (a *App) Shutdown() {
	a.janitor.Stop()
	a.ledger.Stop()

	if err := a.redis.Close(); err != nil {
		a.Log.Warnf("Failed to close redis client: %+v", err)
	}

	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Warnf("Failed to close database: %+v", err)
		}
	}
}
