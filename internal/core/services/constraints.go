package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

// ConstraintValidator coerces raw constraint input and checks it against
// the accepted ranges. It is safe for concurrent use.
type ConstraintValidator struct {
	validate  *validator.Validate
	minBudget float64
}

// constraintFields is the coerced form that the struct tags run against.
type constraintFields struct {
	UseCase    string  `json:"use_case" validate:"required,oneof=gaming creator ai"`
	Resolution int     `json:"resolution" validate:"omitempty,oneof=1080 1440 2160"`
	Budget     float64 `json:"budget" validate:"gt=0"`
	VRAM       int     `json:"vram" validate:"vramfloor"`
	Brand      string  `json:"brand" validate:"oneof=any NVIDIA AMD"`
}

// NewConstraintValidator creates a validator. A positive minBudget adds a
// lower bound on top of the budget > 0 rule.
func NewConstraintValidator(minBudget float64) *ConstraintValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("vramfloor", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.AllowedVRAMFloors, int(fl.Field().Int()))
	})

	return &ConstraintValidator{validate: v, minBudget: minBudget}
}

// Validate returns a strongly-typed constraint set or a *domain.ValidationError
// listing every violated rule. Nothing is partially applied.
func (cv *ConstraintValidator) Validate(raw domain.RawConstraints) (domain.Constraints, error) {
	verr := &domain.ValidationError{}
	skip := map[string]bool{}

	fields := constraintFields{
		UseCase: strings.TrimSpace(raw.UseCase),
		Brand:   strings.TrimSpace(raw.Brand),
	}
	if fields.Brand == "" {
		fields.Brand = string(domain.BrandAny)
	}

	if budget, ok := coerceNumber(raw.Budget); ok {
		fields.Budget = budget
	} else if strings.TrimSpace(raw.Budget) == "" {
		verr.Add("Budget is required.")
		skip["budget"] = true
	} else {
		verr.Add("Budget must be a number.")
		skip["budget"] = true
	}

	if strings.TrimSpace(raw.VRAM) != "" {
		if vram, ok := coerceInt(raw.VRAM); ok {
			fields.VRAM = vram
		} else {
			verr.Add("VRAM must be a whole number of gigabytes.")
			skip["vram"] = true
		}
	}

	if strings.TrimSpace(raw.Resolution) != "" {
		if res, ok := coerceInt(raw.Resolution); ok {
			fields.Resolution = res
			if res == 0 {
				// 0 would read as "absent" under omitempty
				verr.Add(constraintMessages["resolution"])
				skip["resolution"] = true
			}
		} else {
			verr.Add("Resolution must be a number.")
			skip["resolution"] = true
		}
	}

	if err := cv.validate.Struct(fields); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			verr.Add(err.Error())
			return domain.Constraints{}, verr
		}
		for _, fe := range fieldErrs {
			if skip[fe.Field()] {
				continue
			}
			skip[fe.Field()] = true
			verr.Add(translateConstraintError(fe))
		}
	}

	if cv.minBudget > 0 && !skip["budget"] {
		if err := cv.validate.Var(fields.Budget, fmt.Sprintf("gte=%g", cv.minBudget)); err != nil {
			verr.Add(fmt.Sprintf("Budget must be at least %g.", cv.minBudget))
		}
	}

	if err := verr.OrNil(); err != nil {
		return domain.Constraints{}, err
	}

	return domain.Constraints{
		UseCase:    domain.UseCase(fields.UseCase),
		Resolution: domain.Resolution(fields.Resolution),
		Budget:     fields.Budget,
		VRAM:       fields.VRAM,
		Brand:      domain.Brand(fields.Brand),
	}, nil
}

// constraintMessages holds the message for any rule failure on a field.
var constraintMessages = map[string]string{
	"use_case":   "Use case must be one of: gaming, creator, ai.",
	"resolution": "Resolution must be one of: 1080, 1440, 2160.",
	"budget":     "Budget must be a positive number.",
	"vram":       "VRAM must be one of: 0, 8, 12, 16, 24.",
	"brand":      "Brand must be one of: any, NVIDIA, AMD.",
}

func translateConstraintError(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required.", fieldLabel(fe.Field()))
	}
	if msg, ok := constraintMessages[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s validation.", fieldLabel(fe.Field()), fe.Tag())
}

func fieldLabel(field string) string {
	switch field {
	case "use_case":
		return "Use case"
	case "vram":
		return "VRAM"
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

// coerceNumber converts a numeric-looking string. Non-finite values fail.
func coerceNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceInt accepts integral numbers, including "16.0".
func coerceInt(s string) (int, bool) {
	f, ok := coerceNumber(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
