package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/expertbooking/internal/domain"
	"github.com/Domenick1991/expertbooking/internal/metrics"
	"github.com/Domenick1991/expertbooking/internal/notify"
	"github.com/Domenick1991/expertbooking/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status string) (*domain.Booking, error)
}

// ExpertCache is invalidated after a slot disappears so listings stop
// offering it.
type ExpertCache interface {
	InvalidateExpert(ctx context.Context, id uuid.UUID) error
}

type Publisher interface {
	Publish(ev notify.Event)
}

type ReserveInput struct {
	ExpertID string `json:"expert" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"timeSlot" validate:"required"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (in *ReserveInput) normalize() {
	in.ExpertID = strings.TrimSpace(in.ExpertID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Date = strings.TrimSpace(in.Date)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)
	in.Notes = strings.TrimSpace(in.Notes)
}

type BookingServiceOption func(*BookingService)

func WithCache(cache ExpertCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

type BookingService struct {
	experts   repository.ExpertRepository
	bookings  repository.BookingRepository
	publisher Publisher
	cache     ExpertCache
	metrics   *metrics.Metrics
	validate  *validator.Validate
	log       *zap.Logger
}

func NewBookingService(
	experts repository.ExpertRepository,
	bookings repository.BookingRepository,
	publisher Publisher,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		experts:   experts,
		bookings:  bookings,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve removes the slot from the expert's calendar and records a Pending
// booking for it. The removal is the only synchronization point: of any
// number of concurrent calls for the same slot exactly one gets past it.
func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		s.metrics.ObserveReservation(metrics.OutcomeInvalid)
		return nil, validationError(err)
	}

	expertID, err := uuid.Parse(input.ExpertID)
	if err != nil {
		s.metrics.ObserveReservation(metrics.OutcomeInvalid)
		return nil, domain.BadRequestError("Invalid expert id: %s", input.ExpertID)
	}
	date, err := domain.ParseDate(input.Date)
	if err != nil {
		s.metrics.ObserveReservation(metrics.OutcomeInvalid)
		return nil, domain.ValidationError("Invalid date: %s", input.Date)
	}

	removed, err := s.experts.RemoveSlotIfPresent(ctx, expertID, date, input.TimeSlot)
	if err != nil {
		s.metrics.ObserveReservation(metrics.OutcomeError)
		return nil, domain.InternalError("failed to reserve slot", err)
	}
	if !removed {
		s.metrics.ObserveReservation(metrics.OutcomeConflict)
		return nil, domain.ConflictError("Slot is not available. It may have already been booked or does not exist")
	}

	booking := &domain.Booking{
		ExpertID: expertID,
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Date:     date,
		TimeSlot: input.TimeSlot,
		Notes:    input.Notes,
		Status:   domain.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		// The slot stays removed.
		s.log.Error("slot removed but booking not recorded",
			zap.String("expert_id", expertID.String()),
			zap.String("date", date.String()),
			zap.String("time_slot", input.TimeSlot),
			zap.Error(err))
		s.metrics.ObserveReservation(metrics.OutcomeError)
		return nil, domain.InternalError("failed to record booking", err)
	}
	s.metrics.ObserveReservation(metrics.OutcomeBooked)

	if s.cache != nil {
		if err := s.cache.InvalidateExpert(ctx, expertID); err != nil {
			s.log.Warn("expert cache invalidation failed", zap.String("expert_id", expertID.String()), zap.Error(err))
		}
	}

	if joined, err := s.bookings.GetByID(ctx, booking.ID); err == nil {
		booking = joined
	}

	s.publisher.Publish(notify.NewEvent(notify.EventBookingCreated, *booking))
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("expert_id", expertID.String()),
		zap.String("date", date.String()),
		zap.String("time_slot", booking.TimeSlot))
	return booking, nil
}

func (s *BookingService) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, domain.ValidationError("Email query parameter is required")
	}
	bookings, err := s.bookings.ListByEmail(ctx, email)
	if err != nil {
		return nil, domain.InternalError("failed to list bookings", err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking forward. The write only applies if the
// booking still has the status that was checked.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status string) (*domain.Booking, error) {
	next := domain.BookingStatus(strings.TrimSpace(status))
	if !next.Valid() {
		s.metrics.ObserveTransition(metrics.StatusUnknown, metrics.OutcomeInvalid)
		return nil, domain.ValidationError("Status must be one of: Pending, Confirmed, Completed")
	}

	bookingID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.BadRequestError("Invalid booking id: %s", id)
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundError("Booking not found")
		}
		return nil, domain.InternalError("failed to load booking", err)
	}

	if !current.Status.CanTransitionTo(next) {
		s.metrics.ObserveTransition(string(next), metrics.OutcomeConflict)
		return nil, domain.ConflictError("Cannot change status from %s to %s", current.Status, next)
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, current.Status, next)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.NotFoundError("Booking not found")
		case errors.Is(err, repository.ErrStatusChanged):
			s.metrics.ObserveTransition(string(next), metrics.OutcomeConflict)
			return nil, domain.ConflictError("Booking status was changed by another request")
		default:
			s.metrics.ObserveTransition(string(next), metrics.OutcomeError)
			return nil, domain.InternalError("failed to update booking status", err)
		}
	}
	s.metrics.ObserveTransition(string(next), metrics.OutcomeApplied)

	s.publisher.Publish(notify.NewEvent(notify.EventBookingStatusChanged, *updated))
	s.log.Info("booking status changed",
		zap.String("booking_id", updated.ID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)))
	return updated, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ValidationError("Invalid booking request")
	}
	fe := verrs[0]
	field := fieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.ValidationError("Please provide all required fields: %s is missing", field)
	case "email":
		return domain.ValidationError("Please provide a valid email address")
	case "max":
		return domain.ValidationError("%s must be at most %s characters", field, fe.Param())
	default:
		return domain.ValidationError("%s is invalid", field)
	}
}

var jsonFieldNames = map[string]string{
	"ExpertID": "expert",
	"Name":     "name",
	"Email":    "email",
	"Phone":    "phone",
	"Date":     "date",
	"TimeSlot": "timeSlot",
	"Notes":    "notes",
}

func fieldName(f string) string {
	if n, ok := jsonFieldNames[f]; ok {
		return n
	}
	return f
}
