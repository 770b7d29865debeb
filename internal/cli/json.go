package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/panels"
)

// Machine mode flag - set by -o json so failures are reported as JSON too
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound   = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "CONFIG_INVALID"
	ErrCodeNoEndpoints      = "ENDPOINTS_UNRESOLVED"
	ErrCodeLayoutInvalid    = "LAYOUT_INVALID"
	ErrCodeUnknownPanel     = "UNKNOWN_PANEL"
	ErrCodeMissingParameter = "MISSING_PARAMETER"
	ErrCodeFetchFailed      = "FETCH_FAILED"
	ErrCodeHealthFailed     = "HEALTH_FAILED"
	ErrCodeUnknown          = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	// Typed errors first: they carry details the structured message drops.
	var missing *panels.MissingParameterError
	if stderrors.As(err, &missing) {
		return withStructured(err, &JSONError{
			Code: ErrCodeMissingParameter,
			Details: map[string]interface{}{
				"panel": missing.Panel,
				"param": string(missing.Param),
				"flag":  missing.Param.Flag(),
			},
		})
	}
	var unknown *layout.UnknownPanelError
	if stderrors.As(err, &unknown) {
		return withStructured(err, &JSONError{
			Code:    ErrCodeUnknownPanel,
			Details: map[string]interface{}{"panel": unknown.ID, "layout": unknown.Expr},
		})
	}
	var notFound *panels.NotFoundError
	if stderrors.As(err, &notFound) {
		return withStructured(err, &JSONError{
			Code:    ErrCodeUnknownPanel,
			Details: map[string]interface{}{"panel": notFound.ID},
		})
	}

	var gErr *errors.Error
	if stderrors.As(err, &gErr) {
		return &JSONError{
			Code:       mapErrorCode(gErr.Code, gErr.Message),
			Message:    gErr.Message,
			Suggestion: gErr.Suggestion,
		}
	}

	// Generic error
	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// withStructured fills message and suggestion from the structured error in err's chain.
func withStructured(err error, j *JSONError) *JSONError {
	var gErr *errors.Error
	if stderrors.As(err, &gErr) {
		j.Message = gErr.Message
		j.Suggestion = gErr.Suggestion
	} else {
		j.Message = err.Error()
	}
	return j
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrEndpoint:
		return ErrCodeNoEndpoints
	case errors.ErrLayout:
		return ErrCodeLayoutInvalid
	case errors.ErrPanel:
		return ErrCodeUnknownPanel
	case errors.ErrFetch:
		return ErrCodeFetchFailed
	case errors.ErrHealth:
		return ErrCodeHealthFailed
	}

	return ErrCodeUnknown
}
