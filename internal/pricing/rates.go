package pricing

import "github.com/Domenick1991/cargobooking/internal/domain"

const DefaultRate int64 = 15

// DefaultRates is the standard per-kg rate card.
func DefaultRates() map[domain.CargoCategory]int64 {
	return map[domain.CargoCategory]int64{
		domain.CategoryGeneral:        12,
		domain.CategoryPharma:         20,
		domain.CategoryDangerousGoods: 35,
		domain.CategoryHighValue:      50,
		domain.CategoryPerishables:    18,
		domain.CategoryAnimals:        40,
	}
}

// RateTable maps a cargo category to a price per kg. The zero value prices
// everything at DefaultRate.
type RateTable struct {
	rates       map[domain.CargoCategory]int64
	fallback    int64
	hasFallback bool
}

func NewRateTable(rates map[domain.CargoCategory]int64, fallback int64) RateTable {
	copied := make(map[domain.CargoCategory]int64, len(rates))
	for k, v := range rates {
		copied[k] = v
	}
	return RateTable{rates: copied, fallback: fallback, hasFallback: true}
}

// NewRateTableFromConfig builds a table from category names as they appear in config.
func NewRateTableFromConfig(rates map[string]int64, fallback int64) RateTable {
	converted := make(map[domain.CargoCategory]int64, len(rates))
	for k, v := range rates {
		converted[domain.NormalizeCategory(k)] = v
	}
	return RateTable{rates: converted, fallback: fallback, hasFallback: true}
}

func (t RateTable) Rate(category domain.CargoCategory) int64 {
	if rate, ok := t.rates[category]; ok {
		return rate
	}
	if !t.hasFallback {
		return DefaultRate
	}
	return t.fallback
}

// Quote returns the per-kg rate and the total for weight kg of category.
func (t RateTable) Quote(category domain.CargoCategory, weight int) (rate, total int64) {
	rate = t.Rate(category)
	return rate, rate * int64(weight)
}
