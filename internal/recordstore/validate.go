package recordstore

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator returns a validator that reports fields by their JSON names and knows the
// plausible_email and rfc3339 tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("plausible_email", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.Contains(s, "@") && strings.Contains(s, ".")
	})
	v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct checks the validate tags of record and converts the first failure into a
// ValidationError.
func validateStruct(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reason(fe.Tag())}
	}
	return err
}

func reason(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "plausible_email":
		return "must be a valid email address"
	case "rfc3339":
		return "must be an RFC 3339 timestamp"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed " + tag + " check"
	}
}
