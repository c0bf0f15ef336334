package reservations_service_api

import (
	"context"
	"math"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server implements ReservationsServer on top of the booking and flight use cases.
type Server struct {
	bookings booking.BookingUseCase
	flights  flights.FlightUseCase
}

func NewServer(bookings booking.BookingUseCase, flights flights.FlightUseCase) *Server {
	return &Server{bookings: bookings, flights: flights}
}

func (s *Server) CreateBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	flightID, err := intField(req, "flight_id")
	if err != nil {
		return nil, err
	}
	userID, err := intField(req, "user_id")
	if err != nil {
		return nil, err
	}
	weight, err := intField(req, "weight")
	if err != nil {
		return nil, err
	}

	created, err := s.bookings.CreateBooking(ctx, booking.CreateBookingInput{
		FlightID: flightID,
		UserID:   userID,
		Weight:   int(weight),
	})
	if err != nil {
		return nil, err
	}
	return bookingStruct(created)
}

func (s *Server) ConfirmBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req, "id")
	if err != nil {
		return nil, err
	}
	confirmed, err := s.bookings.ConfirmBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return bookingStruct(confirmed)
}

func (s *Server) CancelBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := intField(req, "id")
	if err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.CancelBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	return bookingStruct(cancelled)
}

// GetBooking looks a booking up by token when one is given, otherwise by id.
func (s *Server) GetBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		found *domain.Booking
		err   error
	)
	if token := stringField(req, "token"); token != "" {
		found, err = s.bookings.GetBookingByToken(ctx, token)
	} else {
		var id int64
		if id, err = intField(req, "id"); err != nil {
			return nil, err
		}
		found, err = s.bookings.GetBooking(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return bookingStruct(found)
}

func (s *Server) SweepExpired(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	expired, err := s.bookings.SweepExpired(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0, len(expired))
	for i := range expired {
		list = append(list, bookingMap(&expired[i]))
	}
	return structpb.NewStruct(map[string]any{
		"expired":  len(expired),
		"bookings": list,
	})
}

func (s *Server) SearchRoutes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.flights.Search(ctx, routeQuery(req))
	if err != nil {
		return nil, err
	}
	direct := make([]any, 0, len(result.Direct))
	for _, f := range result.Direct {
		direct = append(direct, flightMap(f))
	}
	return structpb.NewStruct(map[string]any{
		"direct":    direct,
		"interline": routeList(result.Interline),
	})
}

func (s *Server) MatchRoutes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	routes, err := s.flights.Match(ctx, routeQuery(req))
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{"routes": routeList(routes)})
}

func routeQuery(req *structpb.Struct) domain.RouteQuery {
	return domain.RouteQuery{
		Origin:      stringField(req, "origin"),
		Destination: stringField(req, "destination"),
		Date:        stringField(req, "date"),
		Category:    stringField(req, "category"),
	}
}

func intField(req *structpb.Struct, name string) (int64, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int64(n.NumberValue), nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func bookingMap(b *domain.Booking) map[string]any {
	return map[string]any{
		"id":             b.ID,
		"token":          b.Token,
		"user_id":        b.UserID,
		"flight_id":      b.FlightID,
		"weight":         b.Weight,
		"status":         string(b.Status),
		"expires_at":     b.ExpiresAt.UTC().Format(time.RFC3339),
		"rate":           b.Rate,
		"total":          b.Total,
		"payment_status": string(b.PaymentStatus),
	}
}

func bookingStruct(b *domain.Booking) (*structpb.Struct, error) {
	return structpb.NewStruct(bookingMap(b))
}

func flightMap(f domain.Flight) map[string]any {
	return map[string]any{
		"id":          f.ID,
		"airline":     f.Carrier,
		"flight_no":   f.FlightNumber,
		"origin":      f.Origin,
		"destination": f.Destination,
		"date":        domain.FormatDate(f.Date),
		"capacity":    f.Capacity,
		"remaining":   f.Remaining,
		"cargo_type":  string(f.Category),
	}
}

func routeList(routes []domain.InterlineRoute) []any {
	out := make([]any, 0, len(routes))
	for _, r := range routes {
		out = append(out, map[string]any{
			"origin":      r.Origin(),
			"via":         r.Via(),
			"destination": r.Destination(),
			"capacity":    r.Capacity,
			"cargo_type":  string(r.Category),
			"legs":        []any{flightMap(r.FirstLeg), flightMap(r.SecondLeg)},
		})
	}
	return out
}

var _ ReservationsServer = (*Server)(nil)
