package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"envchart/internal/dataset"
	"envchart/internal/exporter"
	"envchart/internal/infrastructure"
	"envchart/internal/palette"
	ws "envchart/internal/websocket"
	"envchart/pkg/contracts/domain"
)

// ExportSheetName is the sheet label used for xlsx exports.
const ExportSheetName = "Dados"

// ChartQuery selects the slice of the dataset a chart reads.
type ChartQuery struct {
	Parameter domain.Parameter
	Range     domain.DateRange
	Palette   string
}

// ChartData is the chart-ready response: pivoted rows plus the series
// metadata the frontend needs to draw them.
type ChartData struct {
	Parameter  domain.Parameter  `json:"parameter"`
	Palette    string            `json:"palette"`
	Categories []string          `json:"categories"`
	Colors     map[string]string `json:"colors"`
	Rows       []domain.PivotRow `json:"rows"`
}

// PaletteInfo describes one selectable color palette.
type PaletteInfo struct {
	Name    string   `json:"name"`
	Colors  []string `json:"colors"`
	Default bool     `json:"default"`
}

// ExportQuery selects what an export contains.
type ExportQuery struct {
	Parameter domain.Parameter
	Range     domain.DateRange
	Format    string // "csv" or "xlsx"
}

// DatasetService owns the dataset lifecycle: ingesting workbooks,
// serving chart queries against the installed samples, and exporting
// the pivoted view.
type DatasetService struct {
	store   *dataset.Store
	loader  *dataset.Loader
	hub     *ws.Hub
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewDatasetService creates a dataset service with injected dependencies.
// The hub and metrics may be nil; lifecycle events and telemetry are then
// skipped, which the CLI relies on.
func NewDatasetService(store *dataset.Store, loader *dataset.Loader, hub *ws.Hub, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:   store,
		loader:  loader,
		hub:     hub,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset.service")),
	}
}

// Replace parses an uploaded workbook and, on success, swaps it in as
// the current dataset wholesale. A parse failure leaves the previously
// installed dataset untouched. Concurrent uploads resolve by recency:
// the upload that claimed its slot last wins and earlier in-flight
// uploads get ErrLoadSuperseded.
func (s *DatasetService) Replace(ctx context.Context, source string, data []byte) (domain.LoadSummary, error) {
	token := s.store.BeginLoad()
	start := time.Now()

	var progress dataset.ProgressFunc
	if s.hub != nil {
		progress = func(rowsRead int) {
			s.hub.BroadcastLoadProgress(source, rowsRead)
		}
	}
	samples, skipped, err := s.loader.LoadWithProgress(data, progress)
	infrastructure.RecordLoadMetrics(ctx, s.metrics, source, int64(len(samples)), int64(skipped), time.Since(start), err)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook load failed",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return domain.LoadSummary{}, err
	}

	if !s.store.Install(token, samples, source) {
		s.logger.InfoContext(ctx, "load superseded by newer upload",
			slog.String("source", source))
		return domain.LoadSummary{}, ErrLoadSuperseded
	}

	summary := loadSummary(source, samples, skipped, time.Now())
	s.logger.InfoContext(ctx, "dataset replaced",
		slog.String("source", source),
		slog.Int("rows_loaded", summary.RowsLoaded),
		slog.Int("rows_skipped", summary.RowsSkipped),
		slog.Int("categories", len(summary.Categories)))

	if s.hub != nil {
		s.hub.BroadcastDatasetReplaced(source, summary.RowsLoaded, summary.RowsSkipped)
	}
	return summary, nil
}

// Clear removes the installed dataset. Clearing an already empty store
// is a no-op beyond the broadcast suppression.
func (s *DatasetService) Clear(ctx context.Context) {
	wasEmpty := s.store.Empty()
	s.store.Clear()
	if wasEmpty {
		return
	}
	s.logger.InfoContext(ctx, "dataset cleared")
	if s.hub != nil {
		s.hub.BroadcastDatasetCleared()
	}
}

// Summary describes the currently installed dataset.
func (s *DatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	samples, source, loadedAt := s.store.Snapshot()
	if len(samples) == 0 {
		return domain.DatasetSummary{}, ErrNoDataset
	}

	first, last := dayBounds(samples)
	return domain.DatasetSummary{
		Source:      source,
		SampleCount: len(samples),
		Categories:  dataset.Categories(samples),
		FirstDay:    first,
		LastDay:     last,
		LoadedAt:    loadedAt,
	}, nil
}

// ChartData runs the filter-and-pivot stage for one parameter and
// decorates the result with palette colors per category.
func (s *DatasetService) ChartData(ctx context.Context, q ChartQuery) (*ChartData, error) {
	if !q.Parameter.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParameter, q.Parameter)
	}

	samples, _, _ := s.store.Snapshot()
	if len(samples) == 0 {
		return nil, ErrNoDataset
	}

	paletteName := q.Palette
	if paletteName == "" {
		paletteName = palette.DefaultName
	}

	filtered := dataset.FilterByDate(samples, q.Range)
	categories := dataset.Categories(filtered)
	colors, err := palette.Assign(categories, paletteName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPalette, paletteName)
	}

	infrastructure.RecordChartRequest(ctx, s.metrics, string(q.Parameter))

	return &ChartData{
		Parameter:  q.Parameter,
		Palette:    paletteName,
		Categories: categories,
		Colors:     colors,
		Rows:       dataset.Pivot(filtered, q.Parameter),
	}, nil
}

// Palettes lists the selectable palettes with their swatches.
func (s *DatasetService) Palettes() []PaletteInfo {
	names := palette.Names()
	out := make([]PaletteInfo, 0, len(names))
	for _, name := range names {
		colors, err := palette.Colors(name)
		if err != nil {
			continue
		}
		out = append(out, PaletteInfo{
			Name:    name,
			Colors:  colors,
			Default: name == palette.DefaultName,
		})
	}
	return out
}

// Export writes the pivoted view of the dataset to w in the requested
// format. The same filter-and-pivot stage backs charts and exports, so
// a download always matches what the chart showed.
func (s *DatasetService) Export(ctx context.Context, w io.Writer, q ExportQuery) error {
	if !q.Parameter.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidParameter, q.Parameter)
	}

	samples, _, _ := s.store.Snapshot()
	if len(samples) == 0 {
		return ErrNoDataset
	}

	filtered := dataset.FilterByDate(samples, q.Range)
	categories := dataset.Categories(filtered)
	rows := dataset.Pivot(filtered, q.Parameter)

	switch q.Format {
	case "csv":
		if err := exporter.WriteCSV(w, rows, categories); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	case "xlsx":
		if err := exporter.WriteXLSX(w, rows, categories, ExportSheetName); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, q.Format)
	}

	infrastructure.RecordExport(ctx, s.metrics, q.Format)
	s.logger.InfoContext(ctx, "dataset exported",
		slog.String("format", q.Format),
		slog.String("parameter", string(q.Parameter)),
		slog.Int("rows", len(rows)))
	return nil
}

// loadSummary derives the upload response from the freshly installed samples.
func loadSummary(source string, samples []domain.Sample, skipped int, loadedAt time.Time) domain.LoadSummary {
	first, last := dayBounds(samples)
	return domain.LoadSummary{
		Source:      source,
		RowsLoaded:  len(samples),
		RowsSkipped: skipped,
		Categories:  dataset.Categories(samples),
		FirstDay:    first,
		LastDay:     last,
		LoadedAt:    loadedAt,
	}
}

// dayBounds finds the earliest and latest sample timestamps. Rows are
// not guaranteed to arrive in chronological order.
func dayBounds(samples []domain.Sample) (first, last time.Time) {
	for _, s := range samples {
		if first.IsZero() || s.Timestamp.Before(first) {
			first = s.Timestamp
		}
		if last.IsZero() || s.Timestamp.After(last) {
			last = s.Timestamp
		}
	}
	return first, last
}
