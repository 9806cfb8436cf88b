package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "envchart/internal/errors"
	custommw "envchart/internal/middleware"
	"envchart/internal/services"
	"envchart/internal/validation"
	api "envchart/pkg/contracts/api/v1"
	"envchart/pkg/contracts/domain"
)

// uploadFieldName is the multipart form field carrying the workbook.
const uploadFieldName = "file"

// queryDateFormat matches the DD/MM/YYYY dates used in the workbook's
// date column, so the UI can echo displayed values back as filters.
const queryDateFormat = "02/01/2006"

// DatasetHandler handles dataset and chart HTTP requests with RFC 7807 compliance
type DatasetHandler struct {
	service      DatasetServiceInterface
	validator    *validation.UploadValidator
	rules        *custommw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler with RFC 7807 error handling
func NewDatasetHandler(service DatasetServiceInterface, validator *validation.UploadValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validator:    validator,
		rules:        custommw.NewValidationMiddleware(logger, errorHandler),
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes mounted under /api/dataset
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.With(custommw.ContentTypeValidator("multipart/form-data")).Post("/", h.Upload)
	r.Get("/", h.Summary)
	r.Delete("/", h.Clear)
	r.Get("/export", h.Export)

	return r
}

// ChartRoutes returns the chart routes mounted under /api/chart
func (h *DatasetHandler) ChartRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ChartData)
	r.Get("/palettes", h.Palettes)

	return r
}

// Upload handles POST /api/dataset. The workbook arrives as a
// multipart form file and replaces the current dataset wholesale.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidUploadError(
			fmt.Sprintf("missing %q form file: %v", uploadFieldName, err)))
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidUploadError(err.Error()))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidUploadError(
			fmt.Sprintf("reading upload: %v", err)))
		return
	}

	h.logger.InfoContext(r.Context(), "workbook upload received",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	summary, err := h.service.Replace(r.Context(), header.Filename, data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// Summary handles GET /api/dataset
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// Clear handles DELETE /api/dataset
func (h *DatasetHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(r.Context())
	render.NoContent(w, r)
}

// ChartData handles GET /api/chart
func (h *DatasetHandler) ChartData(w http.ResponseWriter, r *http.Request) {
	q, err := h.chartQueryFromRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	chart, err := h.service.ChartData(r.Context(), q)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, chart)
}

// Palettes handles GET /api/chart/palettes
func (h *DatasetHandler) Palettes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"palettes": h.service.Palettes(),
	})
}

// Export handles GET /api/dataset/export. The body is buffered so a
// late failure still renders as a problem document instead of a
// truncated download.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := api.DatasetExportRequest{
		Parameter: strings.ToLower(query.Get("parameter")),
		From:      query.Get("from"),
		To:        query.Get("to"),
		Format:    strings.ToLower(query.Get("format")),
	}
	if req.Parameter == "" {
		req.Parameter = string(domain.ParameterTemperature)
	}
	if req.Format == "" {
		req.Format = "xlsx"
	}
	if err := h.rules.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dr, err := parseDateRange(req.From, req.To)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("from/to", err.Error()))
		return
	}

	format := req.Format
	var buf bytes.Buffer
	err = h.service.Export(r.Context(), &buf, services.ExportQuery{
		Parameter: domain.Parameter(req.Parameter),
		Range:     dr,
		Format:    format,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("envchart-%s.%s", req.Parameter, format)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// chartQueryFromRequest validates the chart query params against the
// API contract, then parses them into a service query. Tag validation
// covers field shape; the range parse still owns calendar validity and
// bound ordering.
func (h *DatasetHandler) chartQueryFromRequest(r *http.Request) (services.ChartQuery, error) {
	query := r.URL.Query()

	req := api.ChartDataRequest{
		Parameter: strings.ToLower(query.Get("parameter")),
		From:      query.Get("from"),
		To:        query.Get("to"),
		Palette:   query.Get("palette"),
	}
	if req.Parameter == "" {
		req.Parameter = string(domain.ParameterTemperature)
	}
	if err := h.rules.ValidateStruct(req); err != nil {
		return services.ChartQuery{}, err
	}

	dr, err := parseDateRange(req.From, req.To)
	if err != nil {
		return services.ChartQuery{}, apierrors.ErrValidation("from/to", err.Error())
	}

	return services.ChartQuery{
		Parameter: domain.Parameter(req.Parameter),
		Range:     dr,
		Palette:   req.Palette,
	}, nil
}

// parseDateRange interprets optional DD/MM/YYYY bounds in local time.
func parseDateRange(from, to string) (domain.DateRange, error) {
	var dr domain.DateRange
	if from != "" {
		t, err := time.ParseInLocation(queryDateFormat, from, time.Local)
		if err != nil {
			return dr, fmt.Errorf("invalid from date %q, expected DD/MM/YYYY", from)
		}
		dr.Start = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(queryDateFormat, to, time.Local)
		if err != nil {
			return dr, fmt.Errorf("invalid to date %q, expected DD/MM/YYYY", to)
		}
		dr.End = &t
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return dr, fmt.Errorf("to date %q precedes from date %q", to, from)
	}
	return dr, nil
}

// handleServiceError maps service sentinel errors onto API errors and
// lets everything else (including *dataset.LoadError) flow to the
// centralized handler untouched.
func (h *DatasetHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoDataset):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotFound)
	case errors.Is(err, services.ErrLoadSuperseded):
		h.errorHandler.HandleError(w, r, apierrors.ErrLoadSuperseded)
	case errors.Is(err, services.ErrInvalidParameter):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("parameter", err.Error()))
	case errors.Is(err, services.ErrUnknownPalette):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("palette", err.Error()))
	case errors.Is(err, services.ErrUnsupportedFormat):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
