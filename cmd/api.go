package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/capture"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/kpi"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/payment"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/qualify"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/schedule"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/store"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/leadsource"
	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/pkg/sheets"
)

// apiServer bundles the services behind the REST API.
type apiServer struct {
	store     store.Store
	kpi       *kpi.Service
	payments  *payment.Provider
	schedule  *schedule.Resolver
	qualifier *qualify.Qualifier
	sink      sheets.Sink

	// source and captureJob are nil when the lead source is not
	// configured; the lead endpoints then answer 503.
	source     leadsource.Client
	captureJob *capture.Job
}

// newRouter builds the chi router with CORS and request logging.
func newRouter(s *apiServer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", s.handleCreateSubscription)
			r.Get("/", s.handleListSubscriptions)
			r.Get("/{email}", s.handleGetSubscription)
		})

		r.Route("/contact", func(r chi.Router) {
			r.Post("/", s.handleCreateContact)
			r.Get("/", s.handleListContacts)
		})

		r.Route("/kpi", func(r chi.Router) {
			r.Get("/metrics", s.handleKPIMetrics)
			r.Get("/trends", s.handleKPITrends)
			r.Get("/plans", s.handleKPIPlans)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/process", s.handleProcessPayment)
			r.Get("/orders/{id}", s.handleGetOrder)
			r.Post("/pix/generate", s.handleGeneratePIX)
			r.Get("/status/{id}", s.handlePaymentStatus)
			r.Post("/webhook", s.handlePaymentWebhook)
		})

		r.Route("/bot", func(r chi.Router) {
			r.Get("/config/{userID}", s.handleGetBotConfig)
			r.Post("/config/{userID}", s.handleSaveBotConfig)
			r.Post("/test/{userID}", s.handleTestBot)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/stats/{cnae}", s.handleLeadStats)
			r.Post("/capture/trigger", s.handleCaptureTrigger)
			r.Post("/qualify", s.handleQualifyLead)
			r.Put("/criteria", s.handleUpdateCriteria)
			r.Get("/{cnpj}", s.handleGetLead)
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", s.handleGetSchedule)
			r.Get("/next-slot", s.handleNextSlot)
			r.Put("/hours/{day}", s.handleSetHours)
			r.Post("/holidays", s.handleAddHoliday)
			r.Delete("/holidays", s.handleRemoveHoliday)
		})
	})

	return r
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs each request with its status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serverError logs the error and answers 500 without leaking internals.
func serverError(w http.ResponseWriter, err error) {
	zap.L().Error("handler error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
