package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cx-tal-miterani/travel-booking/api-server/internal/service"
	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService service.BookingService
	logger         zerolog.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(bookingService service.BookingService, logger zerolog.Logger) *Handler {
	return &Handler{
		bookingService: bookingService,
		logger:         logger.With().Str("component", "handlers").Logger(),
	}
}

// SubmitResponse is the body of a submit call
type SubmitResponse struct {
	Result     models.BookingResult     `json:"result"`
	Validation *booking.ValidationError `json:"validation,omitempty"`
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and Booking Service errors onto HTTP
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var apiErr *bookingapi.APIError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Booking session not found")
	case errors.Is(err, booking.ErrSessionClosed):
		respondError(w, http.StatusGone, "Booking session closed")
	case errors.Is(err, models.ErrUnknownBookingType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bookingapi.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, bookingapi.ErrNotFound):
		respondError(w, http.StatusNotFound, "Item not found")
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError && apiErr.Message != "":
		respondError(w, apiErr.StatusCode, apiErr.Message)
	default:
		h.logger.Error().Err(err).Msg("Booking service call failed")
		respondError(w, http.StatusBadGateway, "Booking service unavailable")
	}
}

// bearerToken returns the caller's token from the Authorization header
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("Invalid request body")
	}
	if err := models.Validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// ListInventory handles GET /api/inventory/{type}
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	t, err := models.ParseBookingType(mux.Vars(r)["type"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := bookingapi.Filters{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	items, err := h.bookingService.ListInventory(r.Context(), bearerToken(r), t, filters)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Quote handles POST /api/quote
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.bookingService.Quote(r.Context(), bearerToken(r), req.BookingType, req.ItemID, req.Form)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// OpenSession handles POST /api/sessions
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req models.OpenSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.bookingService.OpenSession(r.Context(), bearerToken(r), req.BookingType, req.ItemID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bookingService.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// UpdateSession handles PATCH /api/sessions/{id}
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFieldRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.bookingService.UpdateSession(r.Context(), mux.Vars(r)["id"], req.Field, req.Value)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// ReplaceForm handles PUT /api/sessions/{id}/form
func (h *Handler) ReplaceForm(w http.ResponseWriter, r *http.Request) {
	var form models.BookingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := h.bookingService.ReplaceForm(r.Context(), mux.Vars(r)["id"], form)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// SubmitSession handles POST /api/sessions/{id}/submit
func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.bookingService.SubmitSession(r.Context(), mux.Vars(r)["id"])

	var verr *booking.ValidationError
	var subErr *booking.SubmissionError
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, SubmitResponse{Result: result})
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, SubmitResponse{Result: result, Validation: verr})
	case errors.Is(err, service.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "A submission for this booking is already in progress")
	case errors.Is(err, bookingapi.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Authentication required")
	case errors.As(err, &subErr):
		respondJSON(w, http.StatusUnprocessableEntity, SubmitResponse{Result: result})
	default:
		h.respondServiceError(w, err)
	}
}

// CloseSession handles DELETE /api/sessions/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.CloseSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	b, err := h.bookingService.CancelBooking(r.Context(), bearerToken(r), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// ListBookings handles GET /api/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingService.ListBookings(r.Context(), bearerToken(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// ListDeals handles GET /api/deals
func (h *Handler) ListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.bookingService.ListDeals(r.Context(), bearerToken(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deals)
}

// Catalog handles GET /api/catalog. Filters are scoped by type, e.g.
// ?hotel.city=Riyadh&flight.origin=RUH
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	filters := make(map[models.BookingType]bookingapi.Filters)
	for key, values := range r.URL.Query() {
		prefix, name, ok := strings.Cut(key, ".")
		if !ok || name == "" || len(values) == 0 {
			respondError(w, http.StatusBadRequest, "Filters must look like type.name, e.g. hotel.city")
			return
		}
		t, err := models.ParseBookingType(prefix)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if filters[t] == nil {
			filters[t] = bookingapi.Filters{}
		}
		filters[t][name] = values[0]
	}

	catalog, err := h.bookingService.Catalog(r.Context(), bearerToken(r), filters)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, catalog)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	resp, err := h.bookingService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, bookingapi.ErrUnauthenticated) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.respondServiceError(w, err)
		return
	}
	h.logger.Info().Int64("userId", resp.User.ID).Msg("User logged in")
	respondJSON(w, http.StatusOK, resp)
}

// CurrentUser handles GET /api/me
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.bookingService.CurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
