package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

// New returns a validator that reports fields by their json names and knows
// the cargo_category and airport tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails on an empty tag or nil func, neither can happen here.
	_ = v.RegisterValidation("cargo_category", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		return raw == "" || domain.NormalizeCategory(raw).Valid()
	})
	_ = v.RegisterValidation("airport", func(fl validator.FieldLevel) bool {
		code := domain.NormalizeAirport(fl.Field().String())
		if len(code) < 3 || len(code) > 4 {
			return false
		}
		for _, r := range code {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	})
	return &Validator{validate: v}
}

// Struct validates s and converts the first failure into a domain.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return domain.NewValidationError(fe.Field(), message(fe))
	}
	return domain.NewValidationError("request", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "cargo_category":
		return "unknown cargo category " + fe.Value().(string)
	case "airport":
		return "must be a 3-4 letter airport code"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
