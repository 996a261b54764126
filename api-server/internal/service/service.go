package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cx-tal-miterani/travel-booking/shared/booking"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSessionNotFound    = errors.New("booking session not found")
	ErrSubmissionInFlight = errors.New("a submission for this booking is already in flight")
)

// BookingService defines the booking gateway operations. token is the
// caller's bearer credential, forwarded to the Booking Service.
type BookingService interface {
	ListInventory(ctx context.Context, token string, t models.BookingType, filters bookingapi.Filters) ([]models.InventoryItem, error)
	Quote(ctx context.Context, token string, t models.BookingType, itemID int64, form models.BookingForm) (booking.Snapshot, error)
	OpenSession(ctx context.Context, token string, t models.BookingType, itemID int64) (booking.Snapshot, error)
	GetSession(ctx context.Context, sessionID string) (booking.Snapshot, error)
	UpdateSession(ctx context.Context, sessionID string, field models.Field, value string) (booking.Snapshot, error)
	ReplaceForm(ctx context.Context, sessionID string, form models.BookingForm) (booking.Snapshot, error)
	SubmitSession(ctx context.Context, sessionID string) (models.BookingResult, error)
	CloseSession(ctx context.Context, sessionID string) error
	SessionItemKey(sessionID string) (string, error)
	CancelBooking(ctx context.Context, token string, bookingID int64) (*models.Booking, error)
	ListBookings(ctx context.Context, token string) ([]models.Booking, error)
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	ListDeals(ctx context.Context, token string) ([]models.Deal, error)
	Catalog(ctx context.Context, token string, filters map[models.BookingType]bookingapi.Filters) (*bookingapi.Catalog, error)
}

// Notifier is told when an item's capacity changed because of a booking
type Notifier interface {
	InventoryChanged(itemKey string, capacity int)
}

// SubmitterFactory returns the submitter used for a caller's sessions
type SubmitterFactory func(api *bookingapi.Client) booking.Submitter

// DirectSubmitters submits in process through the booking engine
func DirectSubmitters(logger zerolog.Logger) SubmitterFactory {
	return func(api *bookingapi.Client) booking.Submitter {
		return booking.NewEngine(api, logger)
	}
}

type sessionEntry struct {
	session *booking.Session
	api     *bookingapi.Client
}

// Service implements BookingService on top of in-memory booking sessions
type Service struct {
	api        *bookingapi.Client
	submitters SubmitterFactory
	notifier   Notifier
	ttl        time.Duration
	logger     zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type Options struct {
	Submitters SubmitterFactory
	Notifier   Notifier
	SessionTTL time.Duration
	Logger     zerolog.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(api *bookingapi.Client, opts Options) *Service {
	if opts.Submitters == nil {
		opts.Submitters = DirectSubmitters(opts.Logger)
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	return &Service{
		api:        api,
		submitters: opts.Submitters,
		notifier:   opts.Notifier,
		ttl:        opts.SessionTTL,
		logger:     opts.Logger.With().Str("component", "booking-service").Logger(),
		sessions:   make(map[string]*sessionEntry),
	}
}

func (s *Service) ListInventory(ctx context.Context, token string, t models.BookingType, filters bookingapi.Filters) ([]models.InventoryItem, error) {
	return s.client(token).ListInventory(ctx, t, filters)
}

func (s *Service) Quote(ctx context.Context, token string, t models.BookingType, itemID int64, form models.BookingForm) (booking.Snapshot, error) {
	item, err := s.client(token).GetItem(ctx, t, itemID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	return booking.Evaluate(item, form), nil
}

func (s *Service) OpenSession(ctx context.Context, token string, t models.BookingType, itemID int64) (booking.Snapshot, error) {
	api, err := s.userClient(token)
	if err != nil {
		return booking.Snapshot{}, err
	}
	item, err := api.GetItem(ctx, t, itemID)
	if err != nil {
		return booking.Snapshot{}, err
	}

	id := uuid.NewString()
	session := booking.NewSession(id, item, s.submitters(api))

	s.mu.Lock()
	s.sessions[id] = &sessionEntry{session: session, api: api}
	s.mu.Unlock()

	s.logger.Info().Str("sessionId", id).Str("item", models.ItemKey(t, itemID)).Msg("Booking session opened")
	return session.Snapshot(), nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (booking.Snapshot, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	return entry.session.Snapshot(), nil
}

func (s *Service) UpdateSession(ctx context.Context, sessionID string, field models.Field, value string) (booking.Snapshot, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	return entry.session.Update(field, value)
}

func (s *Service) ReplaceForm(ctx context.Context, sessionID string, form models.BookingForm) (booking.Snapshot, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return booking.Snapshot{}, err
	}
	return entry.session.Replace(form)
}

// SubmitSession submits the session's current form. Concurrent calls for the
// same session share one booking attempt.
func (s *Service) SubmitSession(ctx context.Context, sessionID string) (models.BookingResult, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return models.BookingResult{}, err
	}

	result, err := entry.session.Submit(ctx)
	if result.Confirmed() {
		s.refreshCapacity(ctx, entry)
	}
	return result, err
}

// refreshCapacity re-reads the booked item and tells watchers about it.
// Failures only cost freshness; the booking itself is already confirmed.
func (s *Service) refreshCapacity(ctx context.Context, entry *sessionEntry) {
	old := entry.session.Item()
	key := models.ItemKey(old.BookingType(), old.ItemID())

	item, err := entry.api.GetItem(context.WithoutCancel(ctx), old.BookingType(), old.ItemID())
	if err != nil {
		s.logger.Warn().Err(err).Str("item", key).Msg("Failed to refresh item after booking")
		return
	}
	entry.session.SetItem(item)

	if s.notifier != nil {
		s.notifier.InventoryChanged(key, item.Capacity())
	}
}

func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	entry.session.Close()
	s.logger.Debug().Str("sessionId", sessionID).Msg("Booking session closed")
	return nil
}

// SessionItemKey returns the key of the item a session is booking
func (s *Service) SessionItemKey(sessionID string) (string, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return "", err
	}
	item := entry.session.Item()
	return models.ItemKey(item.BookingType(), item.ItemID()), nil
}

func (s *Service) CancelBooking(ctx context.Context, token string, bookingID int64) (*models.Booking, error) {
	api, err := s.userClient(token)
	if err != nil {
		return nil, err
	}
	b, err := api.CancelBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("bookingId", bookingID).Str("reference", b.BookingReference).Msg("Booking cancelled")
	return b, nil
}

// ListBookings returns the caller's own bookings
func (s *Service) ListBookings(ctx context.Context, token string) ([]models.Booking, error) {
	api, err := s.userClient(token)
	if err != nil {
		return nil, err
	}
	return api.ListBookings(ctx)
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	api, err := s.userClient(token)
	if err != nil {
		return nil, err
	}
	return api.GetCurrentUser(ctx)
}

// Login exchanges credentials for a caller token. The gateway keeps no copy
// of it; callers send it back as a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	return s.api.WithToken("").Login(ctx, username, password)
}

// ListDeals returns the deals that can be applied right now
func (s *Service) ListDeals(ctx context.Context, token string) ([]models.Deal, error) {
	deals, err := s.client(token).ListDeals(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	active := make([]models.Deal, 0, len(deals))
	for _, d := range deals {
		if d.ActiveAt(now) {
			active = append(active, d)
		}
	}
	return active, nil
}

// Catalog lists flights, hotels and events in one call
func (s *Service) Catalog(ctx context.Context, token string, filters map[models.BookingType]bookingapi.Filters) (*bookingapi.Catalog, error) {
	return s.client(token).Browse(ctx, filters)
}

// client acts as the caller, or with the gateway's own credential when the
// caller sent none. Only read-only catalog calls go through it.
func (s *Service) client(token string) *bookingapi.Client {
	if token == "" {
		return s.api
	}
	return s.api.WithToken(token)
}

// userClient acts as the caller and never falls back to the gateway
// credential
func (s *Service) userClient(token string) (*bookingapi.Client, error) {
	if token == "" {
		return nil, bookingapi.ErrUnauthenticated
	}
	return s.api.WithToken(token), nil
}

func (s *Service) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entry, nil
}

// SweepExpired closes sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept until it finishes.
func (s *Service) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for id, entry := range s.sessions {
		if entry.session.InFlight() || now.Sub(entry.session.LastUsed()) < s.ttl {
			continue
		}
		entry.session.Close()
		delete(s.sessions, id)
		swept++
	}
	if swept > 0 {
		s.logger.Info().Int("swept", swept).Int("open", len(s.sessions)).Msg("Expired booking sessions closed")
	}
	return swept
}

// RunSweeper sweeps expired sessions until ctx is done
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.SweepExpired(now)
		}
	}
}
