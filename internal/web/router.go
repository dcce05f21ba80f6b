// Package web serves the HTTP side of the directory service: health,
// metrics, the doctor list and the caller's booked appointments.
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"medical-booking/internal/middleware"
	"medical-booking/internal/model"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type DoctorSource interface {
	ListDoctors(ctx context.Context) ([]model.Account, error)
}

type AppointmentLister interface {
	ListForPatient(ctx context.Context, patientID string) ([]model.Appointment, error)
}

type Config struct {
	Logger       zerolog.Logger
	DB           Pinger
	Doctors      DoctorSource
	Appointments AppointmentLister
	Gatherer     prometheus.Gatherer
	Limiter      *middleware.RateLimiter
	JWTSecret    string
}

func New(cfg Config) http.Handler {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{cfg: cfg}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(middleware.RateLimitHTTP(cfg.Limiter))
		}
		r.Get("/doctors", h.doctors)
		r.With(middleware.AuthHTTP(cfg.JWTSecret)).Get("/appointments", h.appointments)
	})
	return r
}

type handlers struct {
	cfg Config
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.cfg.DB != nil {
		if err := h.cfg.DB.Ping(r.Context()); err != nil {
			h.cfg.Logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) doctors(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.cfg.Doctors.ListDoctors(r.Context())
	if err != nil {
		h.cfg.Logger.Error().Err(err).Msg("list doctors")
		http.Error(w, "directory unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, model.ToDoctorViewModels(accounts))
}

func (h *handlers) appointments(w http.ResponseWriter, r *http.Request) {
	list, err := h.cfg.Appointments.ListForPatient(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.cfg.Logger.Error().Err(err).Msg("list appointments")
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
