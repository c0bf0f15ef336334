package domain

// InterlineRoute is a derived two-leg connection; it is never persisted.
type InterlineRoute struct {
	FirstLeg  Flight        `json:"first_leg"`
	SecondLeg Flight        `json:"second_leg"`
	Capacity  int           `json:"capacity"`
	Category  CargoCategory `json:"category"`
}

func (r InterlineRoute) Origin() string      { return r.FirstLeg.Origin }
func (r InterlineRoute) Via() string         { return r.FirstLeg.Destination }
func (r InterlineRoute) Destination() string { return r.SecondLeg.Destination }

type RouteQuery struct {
	Origin      string
	Destination string
	Date        string
	Category    string
}

type SearchResult struct {
	Direct    []Flight         `json:"direct"`
	Interline []InterlineRoute `json:"interline"`
}
