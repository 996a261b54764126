package bookingapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flightsJSON = `[
	{"id": 1, "airline": "Saudia", "flight_number": "SV1020", "origin": "Riyadh", "destination": "Jeddah",
	 "price_sar": "450.00", "price_usd": "120.00", "available_seats": 42, "total_seats": 180, "is_active": true},
	{"id": 2, "airline": "flynas", "flight_number": "XY204", "origin": "Riyadh", "destination": "Dammam",
	 "price_sar": 310.5, "price_usd": 82.8, "available_seats": 0, "total_seats": 150, "is_active": true}
]`

const hotelJSON = `{"id": 12, "name": "Riyadh Palace", "city": "Riyadh", "star_rating": 5,
	"price_per_night_sar": "500.00", "price_per_night_usd": "133.33", "available_rooms": 8, "total_rooms": 40}`

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func setupBackend(t *testing.T, register func(r *mux.Router)) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	register(api)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListInventory(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/flights/", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "Riyadh", req.URL.Query().Get("origin"))
			assert.Empty(t, req.URL.Query().Get("destination"))
			writeJSON(w, http.StatusOK, flightsJSON)
		}).Methods(http.MethodGet)
	})

	client := NewClient(srv.URL + "/api")
	items, err := client.ListInventory(context.Background(), models.BookingTypeFlight, Filters{"origin": "Riyadh", "destination": ""})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Saudia SV1020", items[0].DisplayName())
	assert.Equal(t, 42, items[0].Capacity())
	assert.Equal(t, 450.0, items[0].Pricing().RateSAR)
	assert.Equal(t, models.PricingFlatPerUnit, items[0].Pricing().Kind)
	assert.Equal(t, 310.5, items[1].Pricing().RateSAR)
}

func TestClient_GetItem(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/hotels/{id}/", func(w http.ResponseWriter, req *http.Request) {
			if mux.Vars(req)["id"] != "12" {
				writeJSON(w, http.StatusNotFound, `{"detail": "Not found."}`)
				return
			}
			writeJSON(w, http.StatusOK, hotelJSON)
		}).Methods(http.MethodGet)
	})
	client := NewClient(srv.URL + "/api")

	item, err := client.GetItem(context.Background(), models.BookingTypeHotel, 12)
	require.NoError(t, err)
	assert.Equal(t, models.PricingPerNightPerUnit, item.Pricing().Kind)
	assert.Equal(t, 500.0, item.Pricing().RateSAR)
	assert.Equal(t, 8, item.Capacity())

	_, err = client.GetItem(context.Background(), models.BookingTypeHotel, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not found.", apiErr.Message)
}

func TestClient_CreateBooking(t *testing.T) {
	var got models.BookingRequest
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/bookings/", func(w http.ResponseWriter, req *http.Request) {
			assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
			assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			writeJSON(w, http.StatusCreated, `{"id": 5, "booking_reference": "BKMA1B2C3D4E5", "booking_type": "flight",
				"flight": 1, "quantity": 2, "total_price_sar": "900.00", "total_price_usd": "240.00",
				"status": "confirmed", "payment_status": "completed", "created_at": "2024-01-05T10:00:00Z"}`)
		}).Methods(http.MethodPost)
	})

	client := NewClient(srv.URL+"/api", WithCredential("secret"))
	flightID := int64(1)
	booking, err := client.CreateBooking(context.Background(), &models.BookingRequest{
		BookingType:   models.BookingTypeFlight,
		Flight:        &flightID,
		Quantity:      2,
		CustomerName:  "Sara",
		CustomerEmail: "sara@example.com",
		CustomerPhone: "0500000000",
		PaymentMethod: models.PaymentMethodCard,
		TotalPriceSAR: 900,
		TotalPriceUSD: 240,
		Currency:      "SAR",
	})
	require.NoError(t, err)
	assert.Equal(t, "BKMA1B2C3D4E5", booking.BookingReference)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, "900", booking.TotalPriceSAR.String())

	assert.Equal(t, int64(1), got.ItemID())
	assert.Nil(t, got.Hotel)
	assert.Equal(t, 900.0, got.TotalPriceSAR)
}

func TestClient_ErrorBodies(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantDetails bool
	}{
		{
			name:        "error field",
			status:      http.StatusBadRequest,
			body:        `{"error": "Not enough seats available"}`,
			wantMessage: "Not enough seats available",
		},
		{
			name:        "validation details",
			status:      http.StatusBadRequest,
			body:        `{"error": "Validation failed", "details": {"quantity": ["Ensure this value is greater than or equal to 1."]}}`,
			wantMessage: "Validation failed",
			wantDetails: true,
		},
		{
			name:        "missing fields",
			status:      http.StatusBadRequest,
			body:        `{"error": "Missing required fields", "missing_fields": ["customer_phone", "quantity"]}`,
			wantMessage: "Missing required fields: customer_phone, quantity",
			wantDetails: true,
		},
		{
			name:        "framework detail",
			status:      http.StatusForbidden,
			body:        `{"detail": "You do not have permission to perform this action."}`,
			wantMessage: "You do not have permission to perform this action.",
		},
		{
			name:   "html error page",
			status: http.StatusBadGateway,
			body:   `<html>Bad Gateway</html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupBackend(t, func(r *mux.Router) {
				r.HandleFunc("/bookings/", func(w http.ResponseWriter, req *http.Request) {
					writeJSON(w, tt.status, tt.body)
				})
			})

			_, err := NewClient(srv.URL+"/api").CreateBooking(context.Background(), &models.BookingRequest{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.UserMessage())
			assert.Equal(t, tt.wantDetails, len(apiErr.Details) > 0)
		})
	}
}

func TestClient_UnauthorizedClearsToken(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/auth/me/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `{"detail": "Given token not valid for any token type"}`)
		})
	})

	client := NewClient(srv.URL+"/api", WithCredential("expired"))
	_, err := client.GetCurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, client.Token())
}

func TestClient_WithTokenIsIndependent(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/auth/me/", func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("Authorization") != "Bearer caller" {
				writeJSON(w, http.StatusUnauthorized, `{"detail": "Authentication credentials were not provided."}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"id": 3, "username": "sara", "firstName": "Sara", "role": "customer", "name": "Sara"}`)
		})
	})

	base := NewClient(srv.URL+"/api", WithCredential("service"))
	user, err := base.WithToken("caller").GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sara", user.Username)
	assert.Equal(t, "service", base.Token())
}

func TestClient_Login(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/auth/login/", func(w http.ResponseWriter, req *http.Request) {
			var body models.LoginRequest
			assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			if body.Password != "pw" {
				writeJSON(w, http.StatusUnauthorized, `{"error": "Invalid credentials"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"token": "access", "refresh": "refresh", "user": {"id": 3, "username": "sara"}}`)
		}).Methods(http.MethodPost)
	})
	client := NewClient(srv.URL + "/api")

	_, err := client.Login(context.Background(), "sara", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	resp, err := client.Login(context.Background(), "sara", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access", resp.Token)
	assert.Equal(t, "access", client.Token())
}

func TestClient_CancelBooking(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/bookings/{id}/cancel/", func(w http.ResponseWriter, req *http.Request) {
			if mux.Vars(req)["id"] == "6" {
				writeJSON(w, http.StatusBadRequest, `{"error": "Booking already cancelled"}`)
				return
			}
			writeJSON(w, http.StatusOK, `{"message": "Booking cancelled successfully",
				"booking": {"id": 5, "booking_reference": "BKMA1B2C3D4E5", "status": "cancelled"}}`)
		}).Methods(http.MethodPost)
	})
	client := NewClient(srv.URL + "/api")

	booking, err := client.CancelBooking(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)

	_, err = client.CancelBooking(context.Background(), 6)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Booking already cancelled", apiErr.UserMessage())
}

func TestClient_ListBookingsAndDeals(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/bookings/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id": 5, "booking_reference": "BKMA1B2C3D4E5", "status": "confirmed"}]`)
		}).Methods(http.MethodGet)
		r.HandleFunc("/deals/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, `[{"id": 1, "title": "Summer", "discount_percentage": "15.00",
				"valid_from": "2024-06-01T00:00:00Z", "valid_until": "2024-08-31T00:00:00Z", "is_active": true}]`)
		}).Methods(http.MethodGet)
	})
	client := NewClient(srv.URL + "/api")

	bookings, err := client.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "BKMA1B2C3D4E5", bookings[0].BookingReference)

	deals, err := client.ListDeals(context.Background())
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.True(t, decimal.NewFromInt(15).Equal(deals[0].DiscountPercentage))
	assert.True(t, deals[0].ActiveAt(deals[0].ValidFrom.AddDate(0, 1, 0)))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).CreateBooking(context.Background(), &models.BookingRequest{})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_Browse(t *testing.T) {
	var calls atomic.Int32
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/flights/", func(w http.ResponseWriter, req *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusOK, flightsJSON)
		})
		r.HandleFunc("/hotels/", func(w http.ResponseWriter, req *http.Request) {
			calls.Add(1)
			assert.Equal(t, "Riyadh", req.URL.Query().Get("city"))
			writeJSON(w, http.StatusOK, "["+hotelJSON+"]")
		})
		r.HandleFunc("/events/", func(w http.ResponseWriter, req *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusOK, `[]`)
		})
	})

	catalog, err := NewClient(srv.URL+"/api").Browse(context.Background(), map[models.BookingType]Filters{
		models.BookingTypeHotel: {"city": "Riyadh"},
	})
	require.NoError(t, err)
	assert.Len(t, catalog.Flights, 2)
	assert.Len(t, catalog.Hotels, 1)
	assert.Empty(t, catalog.Events)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_BrowseFailsFast(t *testing.T) {
	srv := setupBackend(t, func(r *mux.Router) {
		r.HandleFunc("/flights/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, flightsJSON)
		})
		r.HandleFunc("/hotels/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"error": "database unavailable"}`)
		})
		r.HandleFunc("/events/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, `[]`)
		})
	})

	catalog, err := NewClient(srv.URL+"/api").Browse(context.Background(), nil)
	assert.Nil(t, catalog)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
