// Package api provides the HTTP surface for the album-review worker
// platform: worker-facing play/wallet/notification endpoints and an
// admin surface for special-task injection, wallet adjustments and an
// on-demand daily reset check.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reviewforge/reviewforge/internal/app/auth"
	"github.com/reviewforge/reviewforge/internal/app/notify"
	"github.com/reviewforge/reviewforge/internal/app/playengine"
	"github.com/reviewforge/reviewforge/internal/app/reset"
	"github.com/reviewforge/reviewforge/internal/app/special"
	"github.com/reviewforge/reviewforge/internal/app/wallet"
	"github.com/reviewforge/reviewforge/internal/health"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

// Server is the review-worker platform's HTTP API server.
type Server struct {
	db             *sqlite.DB
	auth           *auth.Service
	wallets        *wallet.Service
	playengine     *playengine.Service
	special        *special.Service
	reset          *reset.Service
	notify         *notify.Service
	health         *health.Checker
	metricsEnabled bool
}

// NewServer wires every application service into an HTTP server.
func NewServer(
	db *sqlite.DB,
	authSvc *auth.Service,
	wallets *wallet.Service,
	play *playengine.Service,
	specialSvc *special.Service,
	resetSvc *reset.Service,
	notifySvc *notify.Service,
	healthChecker *health.Checker,
) *Server {
	return &Server{
		db:         db,
		auth:       authSvc,
		wallets:    wallets,
		playengine: play,
		special:    specialSvc,
		reset:      resetSvc,
		notify:     notifySvc,
		health:     healthChecker,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	r.Use(requestLoggingMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if s.health != nil && !s.health.IsHealthy() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLoginUser)
		r.Post("/admin/login", s.handleLoginAdmin)
		r.Post("/refresh", s.handleRefresh)
	})

	r.Route("/api/play", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/active-task", s.handleActiveTask)
		r.Post("/tasks/{id}/play", s.handlePlayTask)
	})

	r.Route("/api/wallet", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleWallet)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleListNotifications)
		r.Post("/{id}/read", s.handleMarkNotificationRead)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/special-tasks", s.handleCreateSpecialTask)
		r.Post("/reset-now", s.handleResetNow)
		r.Post("/wallet/balance", s.handleAdminSetBalance)
		r.Post("/wallet/today-profit", s.handleAdminSetTodayProfit)
		r.Post("/wallet/salary", s.handleAdminSetSalary)
		r.Post("/wallet/reg-bonus", s.handleAdminToggleRegBonus)
		r.Post("/wallet/credit-score", s.handleAdminSetCreditScore)
		r.Post("/wallet/pack", s.handleAdminSetPack)
		r.Post("/wallet/reset-account", s.handleAdminResetAccount)
	})

	return r
}

// ─── JSON helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": msg},
	})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// corsMiddleware adds permissive CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLoggingMiddleware logs method/path/status/duration/user for
// every request.
func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		userID := int64(0)
		if claims, ok := claimsFromContext(r.Context()); ok {
			userID = claims.UserID
		}
		log.Printf("[api] %s %s %d %s user=%d", r.Method, r.URL.Path, ww.Status(), time.Since(start), userID)
	})
}
