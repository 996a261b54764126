package models

// BookingAttemptInput is the input of the booking attempt workflow
type BookingAttemptInput struct {
	AttemptID   string      `json:"attemptId"`
	SessionID   string      `json:"sessionId"`
	BookingType BookingType `json:"bookingType"`
	ItemID      int64       `json:"itemId"`
	Form        BookingForm `json:"form"`
}

// BookingAttemptState is what the get_state query returns
type BookingAttemptState struct {
	AttemptID string       `json:"attemptId"`
	State     AttemptState `json:"state"`
	Quote     *Quote       `json:"quote,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// BookingAttemptResult is the workflow's final result
type BookingAttemptResult struct {
	Result            BookingResult `json:"result"`
	// State is the terminal state: invalid, confirmed or rejected
	State             AttemptState  `json:"state"`
	// FailureKind is the submission failure kind when the booking was not confirmed
	FailureKind       string        `json:"failureKind,omitempty"`
	// RefreshedCapacity is the item's capacity re-read after a confirmed booking, -1 if unknown
	RefreshedCapacity int           `json:"refreshedCapacity"`
}

// WorkflowBookingAttempt is the registered name of the booking attempt workflow
const WorkflowBookingAttempt = "BookingAttemptWorkflow"

// Queries for workflow state
const (
	QueryGetState = "get_state"
)

// Activity names registered by the worker
const (
	ActivityFetchItem     = "FetchItem"
	ActivityCreateBooking = "CreateBooking"
	ActivityRefreshItem   = "RefreshItem"
)

// Activity I/O
type FetchItemInput struct {
	BookingType BookingType `json:"bookingType"`
	ItemID      int64       `json:"itemId"`
}

// ItemSnapshot is a serializable copy of an inventory item. Workflow history
// stores it instead of the concrete variant.
type ItemSnapshot struct {
	Type      BookingType `json:"bookingType"`
	ID        int64       `json:"itemId"`
	Name      string      `json:"name"`
	Available int         `json:"capacity"`
	Rule      PricingRule `json:"pricing"`
}

func SnapshotOf(item InventoryItem) ItemSnapshot {
	return ItemSnapshot{
		Type:      item.BookingType(),
		ID:        item.ItemID(),
		Name:      item.DisplayName(),
		Available: item.Capacity(),
		Rule:      item.Pricing(),
	}
}

func (s ItemSnapshot) ItemID() int64            { return s.ID }
func (s ItemSnapshot) DisplayName() string      { return s.Name }
func (s ItemSnapshot) BookingType() BookingType { return s.Type }
func (s ItemSnapshot) Capacity() int            { return s.Available }
func (s ItemSnapshot) Pricing() PricingRule     { return s.Rule }
