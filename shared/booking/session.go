package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var ErrSessionClosed = errors.New("booking session closed")

// Snapshot is what a booking modal renders: the form, its live quote and the
// current validation outcome
type Snapshot struct {
	SessionID  string                `json:"sessionId,omitempty"`
	Item       models.ItemSnapshot   `json:"item"`
	Form       models.BookingForm    `json:"form"`
	Quote      *models.Quote         `json:"quote,omitempty"`
	DisplaySAR string                `json:"displaySar,omitempty"`
	DisplayUSD string                `json:"displayUsd,omitempty"`
	QuoteError string                `json:"quoteError,omitempty"`
	Validation *ValidationError      `json:"validation,omitempty"`
	State      models.AttemptState   `json:"state"`
	LastResult *models.BookingResult `json:"lastResult,omitempty"`
}

// Session holds one open booking form. Edits produce new form values;
// concurrent submits of the same session share a single in-flight call.
type Session struct {
	id        string
	submitter Submitter

	mu         sync.Mutex
	item       models.InventoryItem
	form       models.BookingForm
	state      models.AttemptState
	lastResult *models.BookingResult
	lastUsed   time.Time
	closed     bool

	flight singleflight.Group
}

// NewSession opens a session on item with a default form
func NewSession(id string, item models.InventoryItem, submitter Submitter) *Session {
	return &Session{
		id:        id,
		submitter: submitter,
		item:      item,
		form:      models.NewBookingForm(),
		state:     models.StateIdle,
		lastUsed:  time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Item() models.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.item
}

// SetItem replaces the item, e.g. after capacity was re-fetched
func (s *Session) SetItem(item models.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item = item
}

func (s *Session) Form() models.BookingForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Session) State() models.AttemptState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastUsed is the time of the last edit or submit
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Update applies one field edit and returns the recomputed snapshot
func (s *Session) Update(field models.Field, value string) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	s.form = s.form.WithField(field, value)
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// Replace swaps in a whole form, used when a client posts the full form
func (s *Session) Replace(form models.BookingForm) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrSessionClosed
	}
	s.form = form
	s.lastUsed = time.Now()
	s.mu.Unlock()
	return s.Snapshot(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	item, form, state, last := s.item, s.form, s.state, s.lastResult
	s.mu.Unlock()

	snap := Evaluate(item, form)
	snap.SessionID = s.id
	snap.State = state
	snap.LastResult = last
	return snap
}

// Evaluate prices and validates a form without submitting it
func Evaluate(item models.InventoryItem, form models.BookingForm) Snapshot {
	snap := Snapshot{
		Item:  models.SnapshotOf(item),
		Form:  form,
		State: models.StateIdle,
	}
	if q, err := ComputeQuote(item, form); err != nil {
		snap.QuoteError = err.Error()
	} else {
		rounded := q.Rounded()
		snap.Quote = &rounded
		snap.DisplaySAR = q.DisplaySAR()
		snap.DisplayUSD = q.DisplayUSD()
	}
	var verr *ValidationError
	if err := Validate(item, form); errors.As(err, &verr) {
		snap.Validation = verr
	}
	return snap
}

// InFlight reports whether a submission is currently running
func (s *Session) InFlight() bool {
	state := s.State()
	return state == models.StateValidating || state == models.StateSubmitting
}

// Submit validates and submits the current form. A call made while another
// submit of this session is running waits for and returns that same result.
func (s *Session) Submit(ctx context.Context) (models.BookingResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.BookingResult{}, ErrSessionClosed
	}
	s.mu.Unlock()

	type outcome struct {
		result models.BookingResult
		err    error
	}

	v, _, _ := s.flight.Do(s.id, func() (interface{}, error) {
		result, err := s.attempt(ctx)
		return outcome{result: result, err: err}, nil
	})
	out := v.(outcome)
	return out.result, out.err
}

func (s *Session) attempt(ctx context.Context) (models.BookingResult, error) {
	s.mu.Lock()
	item, form := s.item, s.form
	s.state = models.StateValidating
	s.lastUsed = time.Now()
	s.mu.Unlock()

	var (
		result models.BookingResult
		err    error
	)
	if verr := Validate(item, form); verr != nil {
		s.setState(models.StateInvalid)
		result, err = Invalid(uuid.NewString(), verr.Error()), verr
	} else {
		s.setState(models.StateSubmitting)
		result, err = s.submitter.SubmitAttempt(ctx, s.id, item, form)
		if result.Confirmed() {
			s.setState(models.StateConfirmed)
		} else {
			s.setState(models.StateRejected)
		}
	}

	s.mu.Lock()
	s.lastResult = &result
	s.state = models.StateIdle
	s.mu.Unlock()
	return result, err
}

func (s *Session) setState(state models.AttemptState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Close discards the form. Closing never cancels a submission in flight.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
