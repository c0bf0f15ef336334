package api

import (
	_ "embed"
	"net/http"

	"github.com/Domenick1991/cargobooking/config"
	"github.com/Domenick1991/cargobooking/internal/service/booking"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/Domenick1991/cargobooking/internal/service/workspace"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

type Services struct {
	Flights   flights.FlightUseCase
	Bookings  booking.BookingUseCase
	Optimizer OptimizerUseCase
	Workspace workspace.WorkspaceUseCase
}

// NewRouter wires the HTTP surface: /api/v1 resources, health, metrics and docs.
func NewRouter(cfg *config.Config, services Services, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", headerUserID, headerRequestID},
		ExposeHeaders: []string{headerRequestID},
	}))
	router.Use(RequestID(), AccessLog(logger))
	if cfg.Metrics.Enabled {
		router.Use(Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPIDoc)
	})
	router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	v1 := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(RateLimit(cfg.RateLimit))
	}

	flightHandler := NewFlightHandler(services.Flights)
	flightHandler.Register(v1.Group("/flights"))
	flightHandler.RegisterSearch(v1.Group("/routes"))

	NewBookingHandler(services.Bookings).Register(v1.Group("/bookings"))

	if services.Optimizer != nil {
		NewOptimizerHandler(services.Optimizer).Register(v1.Group("/reports/capacity"))
	}
	if services.Workspace != nil {
		NewWorkspaceHandler(services.Workspace).Register(v1.Group("/workspace"))
	}

	return router
}
