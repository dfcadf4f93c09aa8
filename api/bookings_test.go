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

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Reserve(ctx context.Context, input booking.ReserveInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) UpdateStatus(ctx context.Context, id string, status string) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func testContext(method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

var (
	testExpertID = uuid.MustParse("8a3c1e2f-4b5d-4c6e-9f70-112233445566")
	testDate     = domain.NewDate(2026, time.February, 22)
)

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:       uuid.MustParse("0f0e0d0c-0b0a-4908-8706-050403020100"),
		ExpertID: testExpertID,
		Expert:   &domain.ExpertSummary{ID: testExpertID, Name: "Arjun Rao", Category: "Technology"},
		Name:     "Foo",
		Email:    "foo@bar.com",
		Phone:    "1234567890",
		Date:     testDate,
		TimeSlot: "09:00 AM",
		Status:   domain.BookingStatusPending,
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	req := createBookingRequest{
		Expert:   testExpertID.String(),
		Name:     "Foo",
		Email:    "foo@bar.com",
		Phone:    "1234567890",
		Date:     "2026-02-22",
		TimeSlot: "09:00 AM",
	}
	c, w := testContext(http.MethodPost, "/api/bookings", req)

	mockService.On("Reserve", c.Request.Context(), booking.ReserveInput{
		ExpertID: req.Expert,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	}).Return(sampleBooking(), nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Pending", data["status"])
	assert.Equal(t, "09:00 AM", data["timeSlot"])
	assert.Equal(t, "Arjun Rao", data["expert"].(map[string]any)["name"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"conflict", domain.ConflictError("Slot is not available"), http.StatusConflict, "Slot is not available"},
		{"validation", domain.ValidationError("Please provide a valid email address"), http.StatusBadRequest, "Please provide a valid email address"},
		{"bad id", domain.BadRequestError("Invalid expert id: abc"), http.StatusBadRequest, "Invalid expert id: abc"},
		{"internal", domain.InternalError("failed to record booking", errors.New("disk full")), http.StatusInternalServerError, "failed to record booking: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

			c, w := testContext(http.MethodPost, "/api/bookings", createBookingRequest{Expert: "abc"})
			mockService.On("Reserve", c.Request.Context(), mock.Anything).Return(nil, tt.err)

			handler.create(c)

			assert.Equal(t, tt.code, w.Code)
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestBookingHandler_create_InternalHiddenInProduction(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(true, zap.NewNop()))

	c, w := testContext(http.MethodPost, "/api/bookings", createBookingRequest{})
	mockService.On("Reserve", c.Request.Context(), mock.Anything).
		Return(nil, domain.InternalError("failed to record booking", errors.New("pq: password authentication failed")))

	handler.create(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decode(t, w).Message)
}

func TestBookingHandler_create_BadBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestBookingHandler_listByEmail(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	c, w := testContext(http.MethodGet, "/api/bookings?email=foo@bar.com", nil)
	mockService.On("ListByEmail", c.Request.Context(), "foo@bar.com").Return([]domain.Booking{*sampleBooking(), *sampleBooking()}, nil)

	handler.listByEmail(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Count)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_listByEmail_Empty(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	c, w := testContext(http.MethodGet, "/api/bookings?email=nobody@bar.com", nil)
	mockService.On("ListByEmail", c.Request.Context(), "nobody@bar.com").Return(nil, nil)

	handler.listByEmail(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(decode(t, w).Data))
}

func TestBookingHandler_listByEmail_Missing(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	c, w := testContext(http.MethodGet, "/api/bookings", nil)
	mockService.On("ListByEmail", c.Request.Context(), "").Return(nil, domain.ValidationError("Email query parameter is required"))

	handler.listByEmail(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email query parameter is required", decode(t, w).Message)
}

func TestBookingHandler_updateStatus(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

	b := sampleBooking()
	b.Status = domain.BookingStatusConfirmed
	c, w := testContext(http.MethodPatch, "/api/bookings/"+b.ID.String()+"/status", updateStatusRequest{Status: "Confirmed"})
	c.Params = gin.Params{{Key: "id", Value: b.ID.String()}}
	mockService.On("UpdateStatus", c.Request.Context(), b.ID.String(), "Confirmed").Return(b, nil)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "Confirmed", data["status"])
}

func TestBookingHandler_updateStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown booking", domain.NotFoundError("Booking not found"), http.StatusNotFound},
		{"backwards", domain.ConflictError("Cannot change status from Confirmed to Pending"), http.StatusConflict},
		{"bad status", domain.ValidationError("Status must be one of: Pending, Confirmed, Completed"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService, NewErrorWriter(false, zap.NewNop()))

			c, w := testContext(http.MethodPatch, "/api/bookings/x/status", updateStatusRequest{Status: "Pending"})
			c.Params = gin.Params{{Key: "id", Value: "x"}}
			mockService.On("UpdateStatus", c.Request.Context(), "x", "Pending").Return(nil, tt.err)

			handler.updateStatus(c)

			assert.Equal(t, tt.code, w.Code)
			assert.False(t, decode(t, w).Success)
		})
	}
}
