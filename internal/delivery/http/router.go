package http

import (
	"net/http"

	"antrean-backend/internal/delivery/http/handler"
	"antrean-backend/internal/delivery/http/middleware"
	"antrean-backend/pkg/response"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	AntreanHandler  *handler.AntreanHandler
	CounterHandler  *handler.CounterHandler
	MasterHandler   *handler.MasterHandler
	ScheduleHandler *handler.ScheduleHandler
}

// NewRouter wires all routes. The /antrean group mirrors the national
// bridging paths; /api/v1/admin carries the back-office reference data.
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	cors := middleware.NewCORSMiddleware()
	router.Use(cors.Handle)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, "Ok", map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	// Public bridging surface.
	antrean := router.PathPrefix("/antrean").Subrouter()
	antrean.HandleFunc("/ambil", cfg.AntreanHandler.Ambil).Methods(http.MethodPost, http.MethodOptions)
	antrean.HandleFunc("/batal", cfg.AntreanHandler.Batal).Methods(http.MethodPost, http.MethodOptions)
	antrean.HandleFunc("/status/{kodepoli}/{tanggal}", cfg.AntreanHandler.Status).Methods(http.MethodGet, http.MethodOptions)
	antrean.HandleFunc("/daftar/{kodepoli}/{tanggal}", cfg.AntreanHandler.List).Methods(http.MethodGet, http.MethodOptions)

	// Calling stations.
	antrean.HandleFunc("/panggil", cfg.CounterHandler.CallNext).Methods(http.MethodPost, http.MethodOptions)
	antrean.HandleFunc("/layani", cfg.CounterHandler.Serve).Methods(http.MethodPost, http.MethodOptions)
	antrean.HandleFunc("/lewati", cfg.CounterHandler.NoShow).Methods(http.MethodPost, http.MethodOptions)

	// Back-office reference data.
	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/clinics", cfg.MasterHandler.CreateClinic).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/clinics", cfg.MasterHandler.GetClinics).Methods(http.MethodGet)
	admin.HandleFunc("/clinics/{id}", cfg.MasterHandler.UpdateClinic).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/doctors", cfg.MasterHandler.CreateDoctor).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/doctors", cfg.MasterHandler.GetDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", cfg.MasterHandler.DeleteDoctor).Methods(http.MethodDelete, http.MethodOptions)
	admin.HandleFunc("/counters", cfg.CounterHandler.CreateCounter).Methods(http.MethodPost, http.MethodOptions)

	admin.HandleFunc("/schedules", cfg.ScheduleHandler.CreateSchedule).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/schedules/{id}", cfg.ScheduleHandler.UpdateSchedule).Methods(http.MethodPut, http.MethodOptions)
	admin.HandleFunc("/schedules/{id}", cfg.ScheduleHandler.DeleteSchedule).Methods(http.MethodDelete, http.MethodOptions)
	admin.HandleFunc("/doctors/{doctorId}/schedules", cfg.ScheduleHandler.GetSchedulesByDoctor).Methods(http.MethodGet)

	admin.HandleFunc("/leaves", cfg.ScheduleHandler.CreateLeave).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/leaves/{id}", cfg.ScheduleHandler.DeleteLeave).Methods(http.MethodDelete, http.MethodOptions)
	admin.HandleFunc("/doctors/{doctorId}/leaves", cfg.ScheduleHandler.GetLeavesByDoctor).Methods(http.MethodGet)

	return router
}
