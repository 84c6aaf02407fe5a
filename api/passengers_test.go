package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/service/passengers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPassengerUseCase struct {
	mock.Mock
}

func (m *MockPassengerUseCase) UnnotifiedByBus(ctx context.Context, busID string) ([]domain.Passenger, error) {
	args := m.Called(ctx, busID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockPassengerUseCase) ByBus(ctx context.Context, busID string) ([]domain.Passenger, error) {
	args := m.Called(ctx, busID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockPassengerUseCase) Register(ctx context.Context, input passengers.RegisterInput) (*domain.Reservation, []domain.Passenger, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Reservation), args.Get(1).([]domain.Passenger), args.Error(2)
}

func floatPtr(f float64) *float64 { return &f }

func TestPassengerHandler_listByBus(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "busId", Value: "BUS001"}}
	c.Request = httptest.NewRequest("GET", "/api/buses/BUS001/passengers", nil)

	sentAt := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	mockService.On("ByBus", c.Request.Context(), "BUS001").Return([]domain.Passenger{
		{PassengerID: "PASS001", ReservationID: "PNR001", Name: "John Doe", Phone: "+1234567890",
			PickupLatitude: floatPtr(40.7580), PickupLongitude: floatPtr(-73.9855),
			Notified: true, NotificationSentAt: &sentAt, CallMadeAt: &sentAt},
		{PassengerID: "PASS002", ReservationID: "PNR001", Phone: "+1987654321"},
	}, nil)

	handler.listByBus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []passengerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.True(t, response[0].Notified)
	assert.Equal(t, "2026-10-18T08:30:00Z", response[0].NotificationSentAt)
	assert.False(t, response[1].Notified)
	assert.Nil(t, response[1].PickupLatitude)

	mockService.AssertExpectations(t)
}

func TestPassengerHandler_listByBusError(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "busId", Value: "BUS001"}}
	c.Request = httptest.NewRequest("GET", "/api/buses/BUS001/passengers", nil)
	mockService.On("ByBus", mock.Anything, "BUS001").Return(nil, errors.New("db down"))

	handler.listByBus(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestPassengerHandler_createReservation(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]interface{}{
		"bus_id": "BUS001",
		"pnr_id": "PNR001",
		"passengers": []map[string]interface{}{{
			"passenger_id":     "PASS001",
			"name":             "John Doe",
			"phone":            "+1234567890",
			"pickup_latitude":  40.7580,
			"pickup_longitude": -73.9855,
			"pickup_address":   "123 Main St",
		}},
	})
	c.Request = httptest.NewRequest("POST", "/api/reservations", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	saved := []domain.Passenger{{
		PassengerID: "PASS001", ReservationID: "PNR001", Name: "John Doe", Phone: "+1234567890",
		PickupLatitude: floatPtr(40.7580), PickupLongitude: floatPtr(-73.9855), PickupAddress: "123 Main St",
	}}
	mockService.On("Register", c.Request.Context(), mock.MatchedBy(func(in passengers.RegisterInput) bool {
		return in.BusID == "BUS001" && in.ReservationID == "PNR001" && len(in.Passengers) == 1 &&
			in.Passengers[0].PassengerID == "PASS001" && *in.Passengers[0].PickupLatitude == 40.7580
	})).Return(&domain.Reservation{BusID: "BUS001", ReservationID: "PNR001"}, saved, nil)

	handler.createReservation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response reservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "PNR001", response.PNRID)
	require.Len(t, response.Passengers, 1)
	assert.False(t, response.Passengers[0].Notified)

	mockService.AssertExpectations(t)
}

func TestPassengerHandler_createReservationBadRequest(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		serviceErr error
	}{
		{name: "no passengers", body: `{"bus_id":"BUS001","pnr_id":"PNR001","passengers":[]}`},
		{name: "missing phone", body: `{"bus_id":"BUS001","pnr_id":"PNR001","passengers":[{"passenger_id":"P1"}]}`},
		{name: "service validation", body: `{"bus_id":"BUS001","pnr_id":"PNR001","passengers":[{"passenger_id":"P1","phone":"+1"}]}`,
			serviceErr: domain.ValidationError{Field: "pnr_id", Msg: "is required"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockPassengerUseCase{}
			handler := NewPassengerHandler(mockService)
			if tc.serviceErr != nil {
				mockService.On("Register", mock.Anything, mock.Anything).Return(nil, nil, tc.serviceErr)
			}

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/api/reservations", bytes.NewBufferString(tc.body))
			c.Request.Header.Set("Content-Type", "application/json")

			handler.createReservation(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
