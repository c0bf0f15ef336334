package domain

import "time"

type BookingStatus string

const (
	BookingStatusHold      BookingStatus = "HOLD"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusHold, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// Active statuses hold capacity on the flight.
func (s BookingStatus) Active() bool {
	return s == BookingStatusHold || s == BookingStatusConfirmed
}

// CanTransition reports whether from → to is a legal move. Only a HOLD can
// move, and only to CONFIRMED or CANCELLED.
func CanTransition(from, to BookingStatus) bool {
	return from == BookingStatusHold && (to == BookingStatusConfirmed || to == BookingStatusCancelled)
}

type PaymentStatus string

const PaymentStatusUnpaid PaymentStatus = "UNPAID"

type Booking struct {
	ID            int64         `json:"id"`
	Token         string        `json:"token"`
	UserID        int64         `json:"user_id"`
	FlightID      int64         `json:"flight_id"`
	Weight        int           `json:"weight"`
	Status        BookingStatus `json:"status"`
	ExpiresAt     time.Time     `json:"expires_at"`
	Rate          int64         `json:"rate"`
	Total         int64         `json:"total"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HoldExpired reports whether a HOLD has outlived its expiry at now.
func (b Booking) HoldExpired(now time.Time) bool {
	return b.Status == BookingStatusHold && now.After(b.ExpiresAt)
}

type BookingFilter struct {
	UserID   int64
	FlightID int64
	Status   BookingStatus
}
