package domain

import (
	"strings"
	"time"
)

type CargoCategory string

const (
	CategoryGeneral        CargoCategory = "General"
	CategoryPharma         CargoCategory = "Pharma"
	CategoryDangerousGoods CargoCategory = "Dangerous Goods"
	CategoryHighValue      CargoCategory = "High Value"
	CategoryPerishables    CargoCategory = "Perishables"
	CategoryAnimals        CargoCategory = "Animals"
)

var categories = []CargoCategory{
	CategoryGeneral,
	CategoryPharma,
	CategoryDangerousGoods,
	CategoryHighValue,
	CategoryPerishables,
	CategoryAnimals,
}

// Categories returns the fixed set of cargo categories in display order.
func Categories() []CargoCategory {
	out := make([]CargoCategory, len(categories))
	copy(out, categories)
	return out
}

func (c CargoCategory) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory trims the input and maps an empty value to General.
// Unknown values are returned as-is so callers can reject them.
func NormalizeCategory(raw string) CargoCategory {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryGeneral
	}
	for _, known := range categories {
		if strings.EqualFold(raw, string(known)) {
			return known
		}
	}
	return CargoCategory(raw)
}

// Flight is a single cargo leg published by an airline. Capacity is the
// declared total in kg; Remaining is what is still sellable.
type Flight struct {
	ID           int64         `json:"id"`
	Carrier      string        `json:"carrier"`
	FlightNumber string        `json:"flight_number"`
	Origin       string        `json:"origin"`
	Destination  string        `json:"destination"`
	Date         time.Time     `json:"date"`
	Capacity     int           `json:"capacity"`
	Remaining    int           `json:"remaining"`
	Category     CargoCategory `json:"category"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (f Flight) Route() string {
	return f.Origin + " → " + f.Destination
}

// NormalizeAirport upper-cases and trims an airport code.
func NormalizeAirport(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
