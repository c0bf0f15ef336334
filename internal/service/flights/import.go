package flights

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/metrics"
	"github.com/Domenick1991/cargobooking/internal/retry"
	"github.com/xuri/excelize/v2"
)

const (
	SourceCSV  = "csv"
	SourceXLSX = "xlsx"
	SourceFeed = "feed"
)

var requiredColumns = []string{"airline", "flight_no", "origin", "destination", "date", "capacity"}

// Import validates every input before writing any, then creates them in one
// transaction. A failing input aborts the import and is reported by its
// 1-based data row, header excluded.
func (s *FlightService) Import(ctx context.Context, source string, inputs []CreateFlightInput) ([]domain.Flight, error) {
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("file", "no flights to import")
	}

	built := make([]*domain.Flight, 0, len(inputs))
	for i, input := range inputs {
		flight, err := s.build(input)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		built = append(built, flight)
	}

	var created []domain.Flight
	attempt := 0
	err := retry.Do(ctx, s.retryPolicy, isConflict, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.IncTxRetry()
			s.log.Debug().Int("attempt", attempt).Str("source", source).Msg("retrying import after transaction conflict")
		}
		created = make([]domain.Flight, 0, len(built))
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			for _, template := range built {
				flight := *template
				if err := s.repo.Create(txCtx, &flight); err != nil {
					return err
				}
				created = append(created, flight)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("import flights: %w", err)
	}

	metrics.AddImported(source, len(created))
	s.invalidate(ctx)
	s.log.Info().Str("source", source).Int("count", len(created)).Msg("flights imported")
	return created, nil
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrTxConflict)
}

// ImportCSV reads a header row naming airline, flight_no, origin,
// destination, date, capacity and optionally cargo_type, in any order.
func (s *FlightService) ImportCSV(ctx context.Context, r io.Reader) ([]domain.Flight, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.NewValidationError("file", "malformed csv: "+err.Error())
	}
	inputs, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, SourceCSV, inputs)
}

// ImportXLSX reads the first sheet of a workbook laid out like the CSV.
func (s *FlightService) ImportXLSX(ctx context.Context, r io.Reader) ([]domain.Flight, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("file", "unreadable workbook: "+err.Error())
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("file", "workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	inputs, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, SourceXLSX, inputs)
}

func parseRows(rows [][]string) ([]CreateFlightInput, error) {
	if len(rows) == 0 {
		return nil, domain.NewValidationError("file", "missing header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, domain.NewValidationError("file", "missing column "+col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	inputs := make([]CreateFlightInput, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rawCapacity := cell(row, "capacity")
		capacity, err := strconv.Atoi(rawCapacity)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, domain.NewValidationError("capacity", "not an integer: "+rawCapacity))
		}
		inputs = append(inputs, CreateFlightInput{
			Carrier:      cell(row, "airline"),
			FlightNumber: cell(row, "flight_no"),
			Origin:       cell(row, "origin"),
			Destination:  cell(row, "destination"),
			Date:         cell(row, "date"),
			Capacity:     capacity,
			Category:     cell(row, "cargo_type"),
		})
	}
	if len(inputs) == 0 {
		return nil, domain.NewValidationError("file", "no data rows")
	}
	return inputs, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
