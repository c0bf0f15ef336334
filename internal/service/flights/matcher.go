package flights

import "github.com/Domenick1991/cargobooking/internal/domain"

type routeKey struct {
	origin      string
	via         string
	destination string
	capacity    int
}

// MatchInterline pairs every first leg with every second leg departing from
// its destination. Route capacity is the smaller remaining capacity of the
// two legs. When a category is requested the two legs must share a category;
// the requested value itself is matched only by direct search. Routes
// sharing origin, connection point, destination and capacity collapse to the
// first pair in input order.
func MatchInterline(firstLegs, secondLegs []domain.Flight, category domain.CargoCategory) []domain.InterlineRoute {
	routes := make([]domain.InterlineRoute, 0)
	seen := make(map[routeKey]struct{})

	for _, f1 := range firstLegs {
		for _, f2 := range secondLegs {
			if f1.Destination != f2.Origin || !f1.Date.Equal(f2.Date) {
				continue
			}
			if category != "" && f1.Category != f2.Category {
				continue
			}

			capacity := min(f1.Remaining, f2.Remaining)
			key := routeKey{origin: f1.Origin, via: f1.Destination, destination: f2.Destination, capacity: capacity}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			routes = append(routes, domain.InterlineRoute{
				FirstLeg:  f1,
				SecondLeg: f2,
				Capacity:  capacity,
				Category:  f1.Category,
			})
		}
	}
	return routes
}
