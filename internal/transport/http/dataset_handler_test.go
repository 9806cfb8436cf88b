package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "envchart/internal/errors"
	"envchart/internal/services"
	"envchart/internal/validation"
	"envchart/pkg/contracts/domain"
)

// stubDatasetService records calls and returns canned responses.
type stubDatasetService struct {
	replaceSummary domain.LoadSummary
	replaceErr     error
	summary        domain.DatasetSummary
	summaryErr     error
	chart          *services.ChartData
	chartErr       error
	palettes       []services.PaletteInfo
	exportPayload  []byte
	exportErr      error

	cleared         bool
	lastSource      string
	lastChartQuery  services.ChartQuery
	lastExportQuery services.ExportQuery
}

func (s *stubDatasetService) Replace(ctx context.Context, source string, data []byte) (domain.LoadSummary, error) {
	s.lastSource = source
	return s.replaceSummary, s.replaceErr
}

func (s *stubDatasetService) Clear(ctx context.Context) {
	s.cleared = true
}

func (s *stubDatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	return s.summary, s.summaryErr
}

func (s *stubDatasetService) ChartData(ctx context.Context, q services.ChartQuery) (*services.ChartData, error) {
	s.lastChartQuery = q
	return s.chart, s.chartErr
}

func (s *stubDatasetService) Palettes() []services.PaletteInfo {
	return s.palettes
}

func (s *stubDatasetService) Export(ctx context.Context, w io.Writer, q services.ExportQuery) error {
	s.lastExportQuery = q
	if s.exportErr != nil {
		return s.exportErr
	}
	_, err := w.Write(s.exportPayload)
	return err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(svc *stubDatasetService) chi.Router {
	logger := testLogger()
	handler := NewDatasetHandler(svc,
		validation.NewUploadValidator(logger, 10<<20),
		logger,
		apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Mount("/api/dataset", handler.Routes())
	r.Mount("/api/chart", handler.ChartRoutes())
	return r
}

func multipartUpload(t *testing.T, filename string, payload []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDatasetHandler_Upload(t *testing.T) {
	t.Run("success returns 201 with summary", func(t *testing.T) {
		svc := &stubDatasetService{
			replaceSummary: domain.LoadSummary{
				Source:     "samples.xlsx",
				RowsLoaded: 3,
				Categories: []string{"Sala A"},
			},
		}
		router := newTestRouter(svc)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, multipartUpload(t, "samples.xlsx", []byte("payload")))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "samples.xlsx", svc.lastSource)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 3, body["rows_loaded"])
	})

	t.Run("missing form file returns 400", func(t *testing.T) {
		router := newTestRouter(&stubDatasetService{})

		req := httptest.NewRequest(http.MethodPost, "/api/dataset", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong extension rejected before the service", func(t *testing.T) {
		svc := &stubDatasetService{}
		router := newTestRouter(svc)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, multipartUpload(t, "samples.csv", []byte("payload")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.lastSource)
	})

	t.Run("non-multipart content type returns 415", func(t *testing.T) {
		svc := &stubDatasetService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/dataset", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Empty(t, svc.lastSource)
	})

	t.Run("superseded load returns 409", func(t *testing.T) {
		svc := &stubDatasetService{replaceErr: services.ErrLoadSuperseded}
		router := newTestRouter(svc)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, multipartUpload(t, "samples.xlsx", []byte("payload")))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDatasetHandler_Summary(t *testing.T) {
	t.Run("returns summary", func(t *testing.T) {
		svc := &stubDatasetService{
			summary: domain.DatasetSummary{Source: "samples.xlsx", SampleCount: 3},
		}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 3, body["sample_count"])
	})

	t.Run("no dataset returns 404", func(t *testing.T) {
		svc := &stubDatasetService{summaryErr: services.ErrNoDataset}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDatasetHandler_Clear(t *testing.T) {
	svc := &stubDatasetService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/dataset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, svc.cleared)
}

func TestDatasetHandler_ChartData(t *testing.T) {
	t.Run("defaults to temperature", func(t *testing.T) {
		svc := &stubDatasetService{chart: &services.ChartData{Parameter: domain.ParameterTemperature}}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ParameterTemperature, svc.lastChartQuery.Parameter)
	})

	t.Run("passes date range and palette through", func(t *testing.T) {
		svc := &stubDatasetService{chart: &services.ChartData{}}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet,
			"/api/chart?parameter=co2&from=05/03/2024&to=06/03/2024&palette=Oceano", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ParameterCO2, svc.lastChartQuery.Parameter)
		assert.Equal(t, "Oceano", svc.lastChartQuery.Palette)
		require.NotNil(t, svc.lastChartQuery.Range.Start)
		require.NotNil(t, svc.lastChartQuery.Range.End)
		assert.Equal(t, 5, svc.lastChartQuery.Range.Start.Day())
		assert.Equal(t, time.March, svc.lastChartQuery.Range.Start.Month())
	})

	t.Run("unknown parameter returns 400", func(t *testing.T) {
		router := newTestRouter(&stubDatasetService{})

		req := httptest.NewRequest(http.MethodGet, "/api/chart?parameter=pressure", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed from date returns 400", func(t *testing.T) {
		router := newTestRouter(&stubDatasetService{})

		req := httptest.NewRequest(http.MethodGet, "/api/chart?from=2024-03-05", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inverted range returns 400", func(t *testing.T) {
		router := newTestRouter(&stubDatasetService{})

		req := httptest.NewRequest(http.MethodGet, "/api/chart?from=06/03/2024&to=05/03/2024", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("overlong palette rejected before the service", func(t *testing.T) {
		svc := &stubDatasetService{chart: &services.ChartData{}}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet,
			"/api/chart?palette="+strings.Repeat("x", 65), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.lastChartQuery.Palette)
	})

	t.Run("no dataset returns 404", func(t *testing.T) {
		svc := &stubDatasetService{chartErr: services.ErrNoDataset}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDatasetHandler_Palettes(t *testing.T) {
	svc := &stubDatasetService{
		palettes: []services.PaletteInfo{
			{Name: "Floresta", Colors: []string{"#2d6a4f"}, Default: true},
			{Name: "Oceano", Colors: []string{"#023e8a"}},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/chart/palettes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]services.PaletteInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body["palettes"], 2)
	assert.True(t, body["palettes"][0].Default)
}

func TestDatasetHandler_Export(t *testing.T) {
	t.Run("csv download with headers", func(t *testing.T) {
		svc := &stubDatasetService{exportPayload: []byte("Data,Sala A\n")}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset/export?parameter=humidity&format=csv", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `"envchart-humidity.csv"`)
		assert.Equal(t, "csv", svc.lastExportQuery.Format)
		assert.Equal(t, "Data,Sala A\n", rec.Body.String())
	})

	t.Run("format defaults to xlsx", func(t *testing.T) {
		svc := &stubDatasetService{exportPayload: []byte{0x50, 0x4b}}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset/export", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			rec.Header().Get("Content-Type"))
		assert.Equal(t, "xlsx", svc.lastExportQuery.Format)
	})

	t.Run("unsupported format returns 400", func(t *testing.T) {
		svc := &stubDatasetService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset/export?format=pdf", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.lastExportQuery.Format)
	})

	t.Run("malformed from date returns 400", func(t *testing.T) {
		svc := &stubDatasetService{}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset/export?from=2024-03-05&format=csv", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.lastExportQuery.Format)
	})

	t.Run("no dataset renders a problem instead of a download", func(t *testing.T) {
		svc := &stubDatasetService{exportErr: services.ErrNoDataset}
		router := newTestRouter(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/dataset/export?format=csv", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}
