package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/coremem/coremem/pkg/api/middleware"
	"github.com/coremem/coremem/pkg/api/response"
	"github.com/coremem/coremem/pkg/controller"
	"github.com/coremem/coremem/pkg/llm"
	"github.com/coremem/coremem/pkg/semantic"
	"github.com/coremem/coremem/pkg/storage"
)

// maxBodyBytes bounds request bodies when no limit is configured.
const maxBodyBytes = 1 << 20

type handlerLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// getRequestID extracts request ID from context
func getRequestID(ctx context.Context) string {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		return reqID
	}
	return "unknown"
}

// classify maps a session error to the status error it is reported with.
func classify(err error) *response.StatusError {
	switch {
	case errors.Is(err, controller.ErrEmptyInput):
		return &response.StatusError{Status: http.StatusBadRequest, Code: response.ErrCodeValidationFailed, Message: "Input must not be empty", Err: err}
	case errors.Is(err, controller.ErrBusy):
		return response.NewStatusError(http.StatusConflict, "An operation of this kind is already in progress", err)
	case errors.Is(err, controller.ErrMemoryNotFound):
		return response.NewStatusError(http.StatusNotFound, "Memory not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return response.NewStatusError(http.StatusGatewayTimeout, "Request timeout", err)
	case errors.Is(err, semantic.ErrMalformedReply), llm.IsBadReply(err):
		return response.NewStatusError(http.StatusBadGateway, "The language model returned an unusable reply", err)
	case llm.IsUnavailable(err):
		return response.NewStatusError(http.StatusBadGateway, "The language model request failed", err)
	case storage.IsUnavailable(err):
		return response.NewStatusError(http.StatusServiceUnavailable, "Storage is unavailable", err)
	default:
		return response.NewStatusError(http.StatusInternalServerError, "Internal server error", err)
	}
}

// writeError logs err and writes the matching error envelope.
func writeError(w http.ResponseWriter, r *http.Request, log handlerLogger, action string, err error) {
	se := classify(err)
	requestID := getRequestID(r.Context())
	if se.Status >= http.StatusInternalServerError {
		log.Error(action+" failed", "request_id", requestID, "status", se.Status, "error", err)
	} else {
		log.Debug(action+" rejected", "request_id", requestID, "status", se.Status, "error", err)
	}
	response.HandleError(w, se, requestID)
}

// decodeBody decodes and validates a JSON request body into dst. It writes
// the error response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v *validator.Validate, limit int64, dst any) bool {
	if limit <= 0 {
		limit = maxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, response.ErrCodePayloadTooLarge, "Request body too large", getRequestID(r.Context()))
			return false
		}
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(r.Context()))
		return false
	}

	if err := v.Struct(dst); err != nil {
		response.ErrorWithDetails(w, http.StatusBadRequest, response.ErrCodeValidationFailed,
			"Request validation failed", validationDetails(err), getRequestID(r.Context()))
		return false
	}
	return true
}

func validationDetails(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]interface{}{"error": err.Error()}
	}
	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "max":
			details[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			details[field] = "failed " + fe.Tag()
		}
	}
	return details
}

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}
