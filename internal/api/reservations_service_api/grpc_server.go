package reservations_service_api

import (
	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer builds a server with the Reservations service, the standard
// health service and, when enabled, server reflection.
func NewGRPCServer(cfg config.GRPCConfig, bookings booking.BookingUseCase, flightSvc flights.FlightUseCase, logger zerolog.Logger) *grpc.Server {
	logger = logger.With().Str("component", "grpc").Logger()
	unary := ChainUnaryInterceptors(
		LoggingUnaryInterceptor(logger),
		ErrorUnaryInterceptor(),
	)
	server := grpc.NewServer(grpc.UnaryInterceptor(unary))

	RegisterReservationsServer(server, NewServer(bookings, flightSvc))

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	if cfg.Reflection {
		reflection.Register(server)
	}
	return server
}
