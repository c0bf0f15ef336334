package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/cargobooking/api"
	reservationsapi "github.com/Domenick1991/cargobooking/internal/api/reservations_service_api"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
)

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, app *App) error {
	s := newServers(app)
	cfg := app.Config
	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	app.Logger.Info().
		Str("http", cfg.HTTP.Address).
		Str("grpc", cfg.GRPC.Address).
		Str("store", cfg.Store.Driver).
		Msg("servers started")

	select {
	case err := <-errCh:
		s.grpcServer.Stop()
		_ = s.httpServer.Close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSeconds)*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		app.Logger.Info().Msg("servers stopped")
		return nil
	}
}

func newServers(app *App) *Servers {
	cfg := app.Config
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(cfg, api.Services{
		Flights:   app.Flights,
		Bookings:  app.Bookings,
		Optimizer: app.Optimizer,
		Workspace: app.Workspace,
	}, app.Logger)

	return &Servers{
		grpcServer: reservationsapi.NewGRPCServer(cfg.GRPC, app.Bookings, app.Flights, app.Logger),
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}
