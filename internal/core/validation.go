package core

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// Range tags on decimals compare the float value.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		d, ok := field.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		return d.InexactFloat64()
	}, decimal.Decimal{})
	// Scale checks need the exact decimal, which field-level tags no longer
	// see once the custom type func has run.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(ItemInput)
		checkScale(sl, &in.DiscountPercent, "discount_percent", "DiscountPercent", discountScale)
	}, ItemInput{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(ItemUpdate)
		checkScale(sl, in.DiscountPercent, "discount_percent", "DiscountPercent", discountScale)
	}, ItemUpdate{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(CreateQuoteInput)
		checkScale(sl, in.TaxRate, "tax_rate", "TaxRate", taxRateScale)
	}, CreateQuoteInput{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(UpdateQuoteInput)
		checkScale(sl, in.TaxRate, "tax_rate", "TaxRate", taxRateScale)
	}, UpdateQuoteInput{})
	return v
}

// Decimal places stored by quote_items.discount_percent and quotes.tax_rate.
const (
	discountScale = 2
	taxRateScale  = 4
)

func checkScale(sl validator.StructLevel, d *decimal.Decimal, field, structField string, places int32) {
	if d == nil || d.Equal(d.Truncate(places)) {
		return
	}
	sl.ReportError(*d, field, structField, "scale", strconv.Itoa(int(places)))
}

// validateStruct runs the struct tags of s and converts failures into a
// *ValidationError with one entry per offending field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return ve
}

// fieldPath drops the root struct name from the namespace: "items[1].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must contain at least one entry"
		}
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "scale":
		return "must have at most " + fe.Param() + " decimal places"
	}
	return "failed " + fe.Tag() + " check"
}

// Validate checks a creation request before any I/O happens.
func (in CreateQuoteInput) Validate() error {
	return validateStruct(in)
}

// Validate checks an update request. Status must be a known status; whether
// the transition is permitted, and whether it needs an actor, is decided
// against the stored quote.
func (in UpdateQuoteInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", *in.Status))
	}
	if in.ValidUntil != nil && in.ValidUntil.IsZero() {
		return NewValidationError("valid_until", "is required")
	}
	return nil
}

// Validate checks an item update.
func (in ItemUpdate) Validate() error {
	return validateStruct(in)
}

// Validate checks a single item input.
func (in ItemInput) Validate() error {
	return validateStruct(in)
}

// Validate checks a calculation request.
func (in CalculationRequest) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if !in.Tier.Valid() {
		return NewValidationError("tier", fmt.Sprintf("unknown customer tier %q", in.Tier))
	}
	return nil
}
