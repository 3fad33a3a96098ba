package response

import (
	"errors"
	"net/http"
)

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}

// Error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeConflict           = "CONFLICT"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeBadGateway         = "BAD_GATEWAY"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
)

// StatusError carries the status, code and client-facing message an error is
// reported with. Err is the underlying cause and is never sent to clients.
type StatusError struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

// NewStatusError returns a StatusError whose code is derived from status.
func NewStatusError(status int, message string, err error) *StatusError {
	return &StatusError{
		Status:  status,
		Code:    CodeForStatus(status),
		Message: message,
		Err:     err,
	}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *StatusError) Unwrap() error { return e.Err }

// CodeForStatus returns the error code for an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrCodeMethodNotAllowed
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusRequestEntityTooLarge:
		return ErrCodePayloadTooLarge
	case http.StatusBadGateway:
		return ErrCodeBadGateway
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeGatewayTimeout
	default:
		return ErrCodeInternalServer
	}
}

// HandleError writes err as an error envelope. A *StatusError in the chain is
// written as described; anything else becomes an opaque 500.
func HandleError(w http.ResponseWriter, err error, requestID string) {
	var se *StatusError
	if !errors.As(err, &se) {
		se = NewStatusError(http.StatusInternalServerError, "Internal server error", err)
	}
	code := se.Code
	if code == "" {
		code = CodeForStatus(se.Status)
	}
	ErrorWithDetails(w, se.Status, code, se.Message, se.Details, requestID)
}
