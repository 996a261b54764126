package router

import (
	"net/http"
	"time"

	"github.com/cx-tal-miterani/travel-booking/api-server/internal/handlers"
	"github.com/cx-tal-miterani/travel-booking/api-server/internal/websocket"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, hub *websocket.Hub, sessions websocket.SessionService, logger zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)
	r.Use(loggingMiddleware(logger))

	api := r.PathPrefix("/api").Subrouter()

	// Inventory
	api.HandleFunc("/inventory/{type}", h.ListInventory).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/quote", h.Quote).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/catalog", h.Catalog).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/deals", h.ListDeals).Methods(http.MethodGet, http.MethodOptions)

	// Booking sessions
	api.HandleFunc("/sessions", h.OpenSession).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.UpdateSession).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/sessions/{id}", h.CloseSession).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/form", h.ReplaceForm).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/sessions/{id}/submit", h.SubmitSession).Methods(http.MethodPost, http.MethodOptions)

	// WebSocket for live quotes and availability
	api.HandleFunc("/sessions/{id}/ws", hub.HandleSession(sessions)).Methods(http.MethodGet)

	// Bookings and account
	api.HandleFunc("/bookings", h.ListBookings).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/bookings/{id}/cancel", h.CancelBooking).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/me", h.CurrentUser).Methods(http.MethodGet, http.MethodOptions)

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the response status for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Upgraded connections need the original writer for hijacking.
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("took", time.Since(start)).
				Msg("HTTP request")
		})
	}
}
