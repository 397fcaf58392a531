package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can match them to inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// notfuture rejects model years after the current calendar year.
	v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})

	// cents rejects amounts with more than two decimal places, which the
	// decimal(12,2) price column would silently round.
	v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		text := strconv.FormatFloat(fl.Field().Float(), 'f', -1, 64)
		dot := strings.IndexByte(text, '.')
		return dot < 0 || len(text)-dot-1 <= 2
	})

	return v
}

// validateStruct runs every rule on s and returns a validation error listing all violations.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make([]apperror.FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return apperror.Validation(fields...)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be an absolute URL"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "cents":
		return field + " must have at most two decimal places"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "notfuture":
		return fmt.Sprintf("%s must not be after %d", field, time.Now().Year())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// mergeValidation appends extra violations to err, which must be nil or a validation error.
func mergeValidation(err error, extra ...apperror.FieldError) error {
	if len(extra) == 0 {
		return err
	}
	if err == nil {
		return apperror.Validation(extra...)
	}
	return apperror.Validation(append(apperror.FieldsOf(err), extra...)...)
}
