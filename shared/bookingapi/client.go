package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 10 * time.Second
	// maxBodySize caps how much of a response is read
	maxBodySize = 4 << 20
)

// Filters are passed through as query parameters, e.g. origin, city, category
type Filters map[string]string

// Client talks to the Booking Service REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCredential sets the initial bearer token
func WithCredential(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "booking-api").Logger()
	return c
}

// WithToken returns a client sharing this one's transport but carrying its
// own credential. The gateway uses it to act on behalf of each caller.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		logger:     c.logger,
		token:      token,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) ClearToken() {
	c.SetToken("")
}

// ListInventory lists active items of one type
func (c *Client) ListInventory(ctx context.Context, t models.BookingType, filters Filters) ([]models.InventoryItem, error) {
	query := url.Values{}
	for k, v := range filters {
		if v != "" {
			query.Set(k, v)
		}
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/"+t.Collection()+"/", query, nil, &raw); err != nil {
		return nil, err
	}
	return models.DecodeItems(t, raw)
}

func (c *Client) GetItem(ctx context.Context, t models.BookingType, id int64) (models.InventoryItem, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/%s/%d/", t.Collection(), id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	item, err := models.DecodeItem(t, raw)
	if err != nil {
		return nil, err
	}
	if err := models.CheckItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateBooking sends one create-booking request. It never retries.
func (c *Client) CreateBooking(ctx context.Context, req *models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPost, "/bookings/", nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

type cancelResponse struct {
	Message string         `json:"message"`
	Booking models.Booking `json:"booking"`
}

func (c *Client) CancelBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var resp cancelResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel/", id), nil, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Booking, nil
}

// ListBookings returns the caller's bookings, newest first
func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.doJSON(ctx, http.MethodGet, "/bookings/", nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and stores it on the client
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login/", nil, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

func (c *Client) ListDeals(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	if err := c.doJSON(ctx, http.MethodGet, "/deals/", nil, nil, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Str("requestId", requestID).Msg("Booking service request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("requestId", requestID).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("Booking service request")

	if resp.StatusCode == http.StatusUnauthorized {
		c.ClearToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
