package kafka

import (
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingExpired   = "booking_expired"
)

type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID int64     `json:"booking_id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	FlightID  int64     `json:"flight_id"`
	Weight    int       `json:"weight"`
	Status    string    `json:"status"`
	Total     int64     `json:"total"`
	ExpiresAt time.Time `json:"expires_at"`
	At        time.Time `json:"at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:      eventType,
		BookingID: b.ID,
		Token:     b.Token,
		UserID:    b.UserID,
		FlightID:  b.FlightID,
		Weight:    b.Weight,
		Status:    string(b.Status),
		Total:     b.Total,
		ExpiresAt: b.ExpiresAt,
		At:        at,
	}
}

// FlightRecord is one entry of an airline flight feed.
type FlightRecord struct {
	Airline     string `json:"airline"`
	FlightNo    string `json:"flight_no"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	Capacity    int    `json:"capacity"`
	CargoType   string `json:"cargo_type"`
}
