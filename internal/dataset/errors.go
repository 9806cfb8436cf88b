package dataset

import "fmt"

// LoadErrorKind enumerates the recognized load failure modes. Every
// failure that escapes Load is mapped into exactly one of these.
type LoadErrorKind string

const (
	// KindUnreadableFile means the byte payload is not a decodable workbook.
	KindUnreadableFile LoadErrorKind = "UNREADABLE_FILE"
	// KindReadError means the underlying sheet read itself failed.
	KindReadError LoadErrorKind = "READ_ERROR"
	// KindEmptyWorkbook means the first sheet has no rows after the header.
	KindEmptyWorkbook LoadErrorKind = "EMPTY_WORKBOOK"
	// KindNoValidRows means every data row was rejected by validation.
	KindNoValidRows LoadErrorKind = "NO_VALID_ROWS"
)

// LoadError is the only error type Load returns. Message carries the
// original cause verbatim so it can be surfaced to the user unchanged.
type LoadError struct {
	Kind    LoadErrorKind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

func newLoadError(kind LoadErrorKind, message string, cause error) *LoadError {
	return &LoadError{Kind: kind, Message: message, Cause: cause}
}
