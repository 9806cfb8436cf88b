package http

import (
	"context"
	"io"

	"envchart/internal/services"
	"envchart/pkg/contracts/domain"
)

// DatasetServiceInterface is the surface the handlers need from the
// dataset service. Defined here so handler tests can substitute a stub.
type DatasetServiceInterface interface {
	Replace(ctx context.Context, source string, data []byte) (domain.LoadSummary, error)
	Clear(ctx context.Context)
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	ChartData(ctx context.Context, q services.ChartQuery) (*services.ChartData, error)
	Palettes() []services.PaletteInfo
	Export(ctx context.Context, w io.Writer, q services.ExportQuery) error
}
