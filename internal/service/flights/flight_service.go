package flights

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/Domenick1991/cargobooking/internal/retry"
	"github.com/Domenick1991/cargobooking/internal/validation"
	"github.com/rs/zerolog"
)

const DefaultLargeFlightMinCapacity = 6000

type FlightUseCase interface {
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListLarge(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, q domain.RouteQuery) (*domain.SearchResult, error)
	Match(ctx context.Context, q domain.RouteQuery) ([]domain.InterlineRoute, error)
	Import(ctx context.Context, source string, inputs []CreateFlightInput) ([]domain.Flight, error)
	ImportCSV(ctx context.Context, r io.Reader) ([]domain.Flight, error)
	ImportXLSX(ctx context.Context, r io.Reader) ([]domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, view string) ([]domain.Flight, error)
	SetFlights(ctx context.Context, view string, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

// CreateFlightInput is one airline upload. Its json names follow the
// airline feed and CSV columns.
type CreateFlightInput struct {
	Carrier      string `json:"airline" validate:"required"`
	FlightNumber string `json:"flight_no" validate:"required"`
	Origin       string `json:"origin" validate:"required,airport"`
	Destination  string `json:"destination" validate:"required,airport,nefield=Origin"`
	Date         string `json:"date" validate:"required"`
	Capacity     int    `json:"capacity" validate:"gte=0"`
	Category     string `json:"cargo_type" validate:"cargo_category"`
}

type FlightService struct {
	repo            repository.FlightRepository
	cache           FlightCache
	validator       *validation.Validator
	largeMinCap     int
	defaultCategory domain.CargoCategory
	retryPolicy     retry.Policy
	log             zerolog.Logger
}

type Option func(*FlightService)

func WithCache(cache FlightCache) Option {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithLargeFlightMinCapacity(n int) Option {
	return func(s *FlightService) {
		if n > 0 {
			s.largeMinCap = n
		}
	}
}

// WithDefaultCategory sets the category given to flights uploaded without one.
func WithDefaultCategory(category domain.CargoCategory) Option {
	return func(s *FlightService) {
		if category.Valid() {
			s.defaultCategory = category
		}
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(s *FlightService) {
		s.retryPolicy = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *FlightService) {
		s.log = logger
	}
}

func NewFlightService(repo repository.FlightRepository, opts ...Option) *FlightService {
	s := &FlightService{
		repo:            repo,
		validator:       validation.New(),
		largeMinCap:     DefaultLargeFlightMinCapacity,
		defaultCategory: domain.CategoryGeneral,
		retryPolicy:     retry.DefaultPolicy(),
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "flight_service").Logger()
	return s
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	flight, err := s.build(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}

	metrics.AddImported("upload", 1)
	s.invalidate(ctx)
	s.log.Info().Int64("flight_id", flight.ID).Str("route", flight.Route()).Int("capacity", flight.Capacity).Msg("flight created")
	return flight, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	return s.cached(ctx, "all", s.repo.List)
}

// ListLarge returns flights with more than the configured remaining capacity.
func (s *FlightService) ListLarge(ctx context.Context) ([]domain.Flight, error) {
	return s.cached(ctx, "large:"+strconv.Itoa(s.largeMinCap), func(ctx context.Context) ([]domain.Flight, error) {
		return s.repo.ListMinCapacity(ctx, s.largeMinCap)
	})
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

// Search returns the direct flights for the route, filtered on category when
// one is given, together with the interline connections.
func (s *FlightService) Search(ctx context.Context, q domain.RouteQuery) (*domain.SearchResult, error) {
	origin, destination, date, category, err := parseRouteQuery(q)
	if err != nil {
		return nil, err
	}

	direct, err := s.repo.Search(ctx, repository.FlightQuery{Origin: origin, Destination: destination, Date: date, Category: category})
	if err != nil {
		return nil, err
	}
	interline, err := s.match(ctx, origin, destination, date, category)
	if err != nil {
		return nil, err
	}
	return &domain.SearchResult{Direct: direct, Interline: interline}, nil
}

// Match returns the deduplicated two-leg connections from origin to
// destination on the query date.
func (s *FlightService) Match(ctx context.Context, q domain.RouteQuery) ([]domain.InterlineRoute, error) {
	origin, destination, date, category, err := parseRouteQuery(q)
	if err != nil {
		return nil, err
	}
	return s.match(ctx, origin, destination, date, category)
}

func (s *FlightService) match(ctx context.Context, origin, destination string, date time.Time, category domain.CargoCategory) ([]domain.InterlineRoute, error) {
	firstLegs, err := s.repo.Search(ctx, repository.FlightQuery{Origin: origin, Date: date})
	if err != nil {
		return nil, err
	}
	secondLegs, err := s.repo.Search(ctx, repository.FlightQuery{Destination: destination, Date: date})
	if err != nil {
		return nil, err
	}
	return MatchInterline(firstLegs, secondLegs, category), nil
}

func (s *FlightService) build(input CreateFlightInput) (*domain.Flight, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	date, err := domain.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	category := s.defaultCategory
	if strings.TrimSpace(input.Category) != "" {
		category = domain.NormalizeCategory(input.Category)
	}
	return &domain.Flight{
		Carrier:      input.Carrier,
		FlightNumber: input.FlightNumber,
		Origin:       domain.NormalizeAirport(input.Origin),
		Destination:  domain.NormalizeAirport(input.Destination),
		Date:         date,
		Capacity:     input.Capacity,
		Remaining:    input.Capacity,
		Category:     category,
	}, nil
}

func (s *FlightService) cached(ctx context.Context, view string, load func(context.Context) ([]domain.Flight, error)) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx, view)
		if err != nil {
			s.log.Warn().Err(err).Str("view", view).Msg("flights cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, view, flights); err != nil {
			s.log.Warn().Err(err).Str("view", view).Msg("flights cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate flights cache")
	}
}

func parseRouteQuery(q domain.RouteQuery) (origin, destination string, date time.Time, category domain.CargoCategory, err error) {
	origin = domain.NormalizeAirport(q.Origin)
	destination = domain.NormalizeAirport(q.Destination)
	if origin == "" {
		return "", "", time.Time{}, "", domain.NewValidationError("origin", "is required")
	}
	if destination == "" {
		return "", "", time.Time{}, "", domain.NewValidationError("destination", "is required")
	}
	date, err = domain.ParseDate(q.Date)
	if err != nil {
		return "", "", time.Time{}, "", err
	}
	if q.Category != "" {
		category = domain.NormalizeCategory(q.Category)
		if !category.Valid() {
			return "", "", time.Time{}, "", domain.NewValidationError("category", "unknown cargo category "+q.Category)
		}
	}
	return origin, destination, date, category, nil
}

var _ FlightUseCase = (*FlightService)(nil)
