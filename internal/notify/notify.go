package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cargobooking/internal/kafka"
	"github.com/rs/zerolog"
)

// Sender turns booking events into user notifications. Delivery itself is an
// external collaborator; the sender renders the text and logs it.
type Sender struct {
	log zerolog.Logger
}

func NewSender(logger zerolog.Logger) *Sender {
	return &Sender{log: logger.With().Str("component", "notify").Logger()}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	text, err := Render(event)
	if err != nil {
		return err
	}
	s.log.Info().
		Int64("user_id", event.UserID).
		Str("token", event.Token).
		Str("event", event.Type).
		Msg(text)
	return nil
}

// Render returns the notification text for event.
func Render(event kafka.BookingEvent) (string, error) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s: %d kg on flight %d held until %s, total %d.",
			event.Token, event.Weight, event.FlightID, event.ExpiresAt.UTC().Format("15:04:05 MST"), event.Total), nil
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking %s confirmed: %d kg on flight %d.", event.Token, event.Weight, event.FlightID), nil
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled, %d kg released on flight %d.", event.Token, event.Weight, event.FlightID), nil
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Booking %s expired before confirmation, %d kg released on flight %d.", event.Token, event.Weight, event.FlightID), nil
	default:
		return "", fmt.Errorf("unknown booking event type %q", event.Type)
	}
}
