package optimizer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Domenick1991/cargobooking/internal/clock"
	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/repository"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	MessageHighUnused = "High unused space. Consider offering discounts or interline partnerships."
	MessageHighDemand = "High demand! Increase pricing or add more frequency."

	KindHighUnused = "high_unused"
	KindHighDemand = "high_demand"
)

type Sweeper interface {
	SweepExpired(ctx context.Context) ([]domain.Booking, error)
}

type RouteStats struct {
	Route       string  `json:"route"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Flights     int     `json:"flights"`
	Capacity    int     `json:"capacity"`
	Used        int     `json:"used"`
	Held        int     `json:"held"`
	Unused      int     `json:"unused"`
	Utilization float64 `json:"utilization"`
}

type Recommendation struct {
	Route   string `json:"route"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Report struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalCapacity   int              `json:"total_capacity"`
	TotalUsed       int              `json:"total_used"`
	TotalHeld       int              `json:"total_held"`
	TotalUnused     int              `json:"total_unused"`
	Routes          []RouteStats     `json:"routes"`
	Recommendations []Recommendation `json:"recommendations"`
}

type Service struct {
	flights  repository.FlightRepository
	bookings repository.BookingRepository
	sweeper  Sweeper
	clock    clock.Clock
	log      zerolog.Logger
}

func NewService(flights repository.FlightRepository, bookings repository.BookingRepository, sweeper Sweeper, clk clock.Clock, logger zerolog.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Service{
		flights:  flights,
		bookings: bookings,
		sweeper:  sweeper,
		clock:    clk,
		log:      logger.With().Str("component", "optimizer").Logger(),
	}
}

// Report aggregates declared capacity per route against CONFIRMED (used) and
// HOLD (held) weight. Unused is capacity minus both. Expired holds are swept
// first so they do not count as held.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	if s.sweeper != nil {
		if _, err := s.sweeper.SweepExpired(ctx); err != nil {
			return nil, fmt.Errorf("sweep expired holds: %w", err)
		}
	}

	flights, err := s.flights.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	bookings, err := s.bookings.List(ctx, domain.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return Build(flights, bookings, s.clock.Now()), nil
}

// Build computes the report from a snapshot of flights and bookings.
func Build(flights []domain.Flight, bookings []domain.Booking, now time.Time) *Report {
	routes := make(map[string]*RouteStats)
	routeOf := make(map[int64]string, len(flights))

	for _, f := range flights {
		key := f.Route()
		stats, ok := routes[key]
		if !ok {
			stats = &RouteStats{Route: key, Origin: f.Origin, Destination: f.Destination}
			routes[key] = stats
		}
		stats.Flights++
		stats.Capacity += f.Capacity
		routeOf[f.ID] = key
	}

	for _, b := range bookings {
		stats, ok := routes[routeOf[b.FlightID]]
		if !ok {
			continue
		}
		switch b.Status {
		case domain.BookingStatusConfirmed:
			stats.Used += b.Weight
		case domain.BookingStatusHold:
			stats.Held += b.Weight
		}
	}

	report := &Report{
		GeneratedAt:     now,
		Routes:          make([]RouteStats, 0, len(routes)),
		Recommendations: make([]Recommendation, 0),
	}
	for _, stats := range routes {
		stats.Unused = stats.Capacity - stats.Used - stats.Held
		if stats.Capacity > 0 {
			stats.Utilization = float64(stats.Used) / float64(stats.Capacity)
		}
		report.TotalCapacity += stats.Capacity
		report.TotalUsed += stats.Used
		report.TotalHeld += stats.Held
		report.Routes = append(report.Routes, *stats)
	}
	report.TotalUnused = report.TotalCapacity - report.TotalUsed - report.TotalHeld

	sort.Slice(report.Routes, func(i, j int) bool { return report.Routes[i].Route < report.Routes[j].Route })

	for _, stats := range report.Routes {
		switch {
		case stats.Unused*2 > stats.Capacity:
			report.Recommendations = append(report.Recommendations, Recommendation{Route: stats.Route, Kind: KindHighUnused, Message: MessageHighUnused})
		case stats.Used*10 > stats.Capacity*9:
			report.Recommendations = append(report.Recommendations, Recommendation{Route: stats.Route, Kind: KindHighDemand, Message: MessageHighDemand})
		}
	}
	return report
}

// ExportXLSX writes the current report as a workbook with a Routes sheet and
// a Recommendations sheet.
func (s *Service) ExportXLSX(ctx context.Context, w io.Writer) error {
	report, err := s.Report(ctx)
	if err != nil {
		return err
	}
	if err := WriteXLSX(report, w); err != nil {
		return err
	}
	s.log.Info().Int("routes", len(report.Routes)).Msg("optimizer report exported")
	return nil
}

func WriteXLSX(report *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const routesSheet, recsSheet = "Routes", "Recommendations"
	if err := f.SetSheetName(f.GetSheetName(0), routesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(recsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := []interface{}{"Route", "Flights", "Capacity (kg)", "Used (kg)", "Held (kg)", "Unused (kg)", "Utilization"}
	if err := f.SetSheetRow(routesSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(routesSheet, "A1", "G1", headerStyle); err != nil {
		return err
	}

	row := 2
	for _, r := range report.Routes {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{r.Route, r.Flights, r.Capacity, r.Used, r.Held, r.Unused, r.Utilization}
		if err := f.SetSheetRow(routesSheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []interface{}{"Total", "", report.TotalCapacity, report.TotalUsed, report.TotalHeld, report.TotalUnused}
	if err := f.SetSheetRow(routesSheet, cell, &totals); err != nil {
		return err
	}
	if err := f.SetColWidth(routesSheet, "A", "A", 24); err != nil {
		return err
	}

	recHeader := []interface{}{"Route", "Kind", "Recommendation"}
	if err := f.SetSheetRow(recsSheet, "A1", &recHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(recsSheet, "A1", "C1", headerStyle); err != nil {
		return err
	}
	for i, rec := range report.Recommendations {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{rec.Route, rec.Kind, rec.Message}
		if err := f.SetSheetRow(recsSheet, cell, &values); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
