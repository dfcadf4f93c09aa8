package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/expertbooking/internal/kafka"
	"go.uber.org/zap"
)

// ErrNoRecipient marks an event that can never be delivered.
var ErrNoRecipient = errors.New("no recipient")

// Sender renders booking notifications. Delivery is a structured log line;
// an SMTP transport can replace it behind the same method.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		return fmt.Errorf("booking %s: %w", event.BookingID, ErrNoRecipient)
	}
	s.log.Info("send email",
		zap.String("to", event.Email),
		zap.String("subject", Subject(event)),
		zap.String("booking_id", event.BookingID))
	return nil
}

func Subject(event kafka.BookingEvent) string {
	expert := event.ExpertName
	if expert == "" {
		expert = "your expert"
	}
	switch event.Type {
	case "booking_created":
		return fmt.Sprintf("Session with %s requested for %s at %s", expert, event.Date, event.TimeSlot)
	case "booking_status_changed":
		return fmt.Sprintf("Your session with %s is now %s", expert, event.Status)
	default:
		return fmt.Sprintf("Update on your session with %s", expert)
	}
}
