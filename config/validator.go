package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the global validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("env", validateEnvironment)
}

// ConfigError represents a validation error for a specific field.
type ConfigError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of config errors.
type ValidationErrors []ConfigError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// ValidateWithDetails performs validation and returns detailed errors.
// Struct tags are checked first, then the rules that span several fields.
func ValidateWithDetails(cfg *Config) error {
	var details ValidationErrors
	if err := validate.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range validationErrors {
			details = append(details, ConfigError{
				Field:   fe.Namespace(),
				Message: formatValidationError(fe),
				Value:   fe.Value(),
			})
		}
	}

	details = append(details, crossFieldErrors(cfg)...)
	if len(details) > 0 {
		return details
	}
	return nil
}

func crossFieldErrors(cfg *Config) ValidationErrors {
	var errs ValidationErrors

	switch cfg.Storage.Type {
	case "badger":
		if strings.TrimSpace(cfg.Storage.Badger.Path) == "" {
			errs = append(errs, ConfigError{
				Field:   "Config.Storage.Badger.Path",
				Message: "is required when storage.type is badger",
				Value:   cfg.Storage.Badger.Path,
			})
		}
	case "redis":
		if strings.TrimSpace(cfg.Storage.Redis.Address) == "" {
			errs = append(errs, ConfigError{
				Field:   "Config.Storage.Redis.Address",
				Message: "is required when storage.type is redis",
				Value:   cfg.Storage.Redis.Address,
			})
		}
	}

	if cfg.Model.Provider != "fake" && strings.TrimSpace(cfg.Model.Model) == "" {
		errs = append(errs, ConfigError{
			Field:   "Config.Model.Model",
			Message: "is required for provider " + cfg.Model.Provider,
			Value:   cfg.Model.Model,
		})
	}
	if cfg.Model.Timeout <= 0 {
		errs = append(errs, ConfigError{
			Field:   "Config.Model.Timeout",
			Message: "must be positive",
			Value:   cfg.Model.Timeout,
		})
	}
	if cfg.Model.RateLimit.Enabled && cfg.Model.RateLimit.RPS <= 0 {
		errs = append(errs, ConfigError{
			Field:   "Config.Model.RateLimit.RPS",
			Message: "must be positive when rate limiting is enabled",
			Value:   cfg.Model.RateLimit.RPS,
		})
	}

	if cfg.Tracing.Enabled {
		if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
			errs = append(errs, ConfigError{
				Field:   "Config.Tracing.Endpoint",
				Message: "is required when tracing is enabled",
				Value:   cfg.Tracing.Endpoint,
			})
		}
		if cfg.Tracing.Timeout <= 0 {
			errs = append(errs, ConfigError{
				Field:   "Config.Tracing.Timeout",
				Message: "must be positive when tracing is enabled",
				Value:   cfg.Tracing.Timeout,
			})
		}
	}

	return errs
}

// formatValidationError converts validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "env":
		return "must be one of [development staging production]"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// validateEnvironment is a custom validator for environment values.
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	validEnvs := []string{"development", "staging", "production"}
	for _, valid := range validEnvs {
		if env == valid {
			return true
		}
	}
	return false
}
