package reservations_service_api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/clock"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/pricing"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	client  *Client
	conn    *grpc.ClientConn
	clock   *clock.Manual
	flights *flights.FlightService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := repository.NewMemoryStore()
	clk := clock.NewManual(time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC))
	flightSvc := flights.NewFlightService(store.Flights())
	bookingSvc := booking.NewBookingService(
		store.Bookings(),
		store.Flights(),
		pricing.NewRateTable(pricing.DefaultRates(), 15),
		clk,
	)

	lis := bufconn.Listen(1 << 20)
	server := NewGRPCServer(config.GRPCConfig{Reflection: true}, bookingSvc, flightSvc, zerolog.Nop())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{client: NewClient(conn), conn: conn, clock: clk, flights: flightSvc}
}

func (h *harness) addFlight(t *testing.T, origin, destination string, capacity int) *domain.Flight {
	t.Helper()
	f, err := h.flights.Create(context.Background(), flights.CreateFlightInput{
		Carrier:      "EK",
		FlightNumber: "EK" + origin + destination,
		Origin:       origin,
		Destination:  destination,
		Date:         "2025-12-01",
		Capacity:     capacity,
		Category:     "Pharma",
	})
	require.NoError(t, err)
	return f
}

func TestReservations_holdAndConfirm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.addFlight(t, "DXB", "LHR", 1000)

	created, err := h.client.Call(ctx, MethodCreateBooking, map[string]any{
		"flight_id": f.ID,
		"user_id":   5,
		"weight":    400,
	})
	require.NoError(t, err)
	assert.Equal(t, "HOLD", created.Fields["status"].GetStringValue())
	assert.Equal(t, float64(8000), created.Fields["total"].GetNumberValue())

	id := created.Fields["id"].GetNumberValue()
	confirmed, err := h.client.Call(ctx, MethodConfirmBooking, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", confirmed.Fields["status"].GetStringValue())

	byToken, err := h.client.Call(ctx, MethodGetBooking, map[string]any{"token": created.Fields["token"].GetStringValue()})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", byToken.Fields["status"].GetStringValue())
}

func TestReservations_errorCodes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.addFlight(t, "DXB", "LHR", 100)

	_, err := h.client.Call(ctx, MethodCreateBooking, map[string]any{"flight_id": f.ID, "user_id": 5, "weight": 101})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = h.client.Call(ctx, MethodCreateBooking, map[string]any{"flight_id": f.ID, "user_id": 5, "weight": 0})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.Call(ctx, MethodCreateBooking, map[string]any{"flight_id": f.ID, "user_id": 5, "weight": 1.5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = h.client.Call(ctx, MethodGetBooking, map[string]any{"id": 999})
	assert.Equal(t, codes.NotFound, status.Code(err))

	created, err := h.client.Call(ctx, MethodCreateBooking, map[string]any{"flight_id": f.ID, "user_id": 5, "weight": 10})
	require.NoError(t, err)
	h.clock.Advance(3 * time.Minute)

	_, err = h.client.Call(ctx, MethodConfirmBooking, map[string]any{"id": created.Fields["id"].GetNumberValue()})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestReservations_sweepReleasesCapacity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	f := h.addFlight(t, "DXB", "LHR", 500)

	_, err := h.client.Call(ctx, MethodCreateBooking, map[string]any{"flight_id": f.ID, "user_id": 5, "weight": 500})
	require.NoError(t, err)

	h.clock.Advance(121 * time.Second)
	swept, err := h.client.Call(ctx, MethodSweepExpired, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), swept.Fields["expired"].GetNumberValue())

	after, err := h.flights.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, after.Remaining)
}

func TestReservations_routes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addFlight(t, "DXB", "LHR", 9000)
	h.addFlight(t, "DXB", "DOH", 3000)
	h.addFlight(t, "DOH", "LHR", 5000)

	query := map[string]any{"origin": "DXB", "destination": "LHR", "date": "2025-12-01"}

	search, err := h.client.Call(ctx, MethodSearchRoutes, query)
	require.NoError(t, err)
	assert.Len(t, search.Fields["direct"].GetListValue().GetValues(), 1)

	matched, err := h.client.Call(ctx, MethodMatchRoutes, query)
	require.NoError(t, err)
	routes := matched.Fields["routes"].GetListValue().GetValues()
	require.Len(t, routes, 1)
	route := routes[0].GetStructValue().Fields
	assert.Equal(t, "DOH", route["via"].GetStringValue())
	assert.Equal(t, float64(3000), route["capacity"].GetNumberValue())

	_, err = h.client.Call(ctx, MethodMatchRoutes, map[string]any{"origin": "DXB"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestReservations_health(t *testing.T) {
	h := newHarness(t)

	resp, err := healthpb.NewHealthClient(h.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{domain.NewValidationError("weight", "must be greater than 0"), codes.InvalidArgument},
		{domain.ErrFlightNotFound, codes.NotFound},
		{domain.ErrInsufficientCapacity, codes.ResourceExhausted},
		{domain.ErrInvalidTransition, codes.FailedPrecondition},
		{domain.ErrHoldExpired, codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(ToStatus(tc.err)), tc.err.Error())
	}
	assert.NotContains(t, ToStatus(errors.New("db password leaked")).Error(), "password")
}
