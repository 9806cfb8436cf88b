package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"envchart/internal/dataset"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON flattens extensions into the problem document
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapLoadError converts a workbook load failure into problem details.
// Every load failure is the client's workbook, so all kinds map to
// 422 except the unreadable-bytes case which is a plain 400.
func MapLoadError(loadErr *dataset.LoadError, instance string) *ProblemDetails {
	var problem *ProblemDetails

	switch loadErr.Kind {
	case dataset.KindUnreadableFile:
		problem = NewProblemDetails(
			http.StatusBadRequest,
			TypeDatasetUnreadable,
			"Unreadable Workbook",
			"The uploaded file could not be opened as a workbook",
			instance,
		)
	case dataset.KindReadError:
		problem = NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDatasetReadFailed,
			"Workbook Read Failed",
			"The workbook was opened but its first sheet could not be read",
			instance,
		)
	case dataset.KindEmptyWorkbook:
		problem = NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDatasetEmpty,
			"Empty Workbook",
			"The workbook has no data rows below the header",
			instance,
		)
	case dataset.KindNoValidRows:
		problem = NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeDatasetNoValidRows,
			"No Valid Rows",
			"Every data row was rejected during validation",
			instance,
		)
	default:
		problem = NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while loading the workbook",
			instance,
		)
	}

	return problem.WithExtension("error_code", string(loadErr.Kind))
}
