package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries one message per offending field, keyed by the JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"price":    "must be a positive monthly amount",
	"min":      "is too short",
	"max":      "is too long",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, err := FormatPrice(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateStruct runs the struct tags of s and converts failures into a *ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields[fieldPath(fe)] = msg
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the struct name from the namespace: "ListingDraft.newImages[1]" -> "newImages[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Validate checks the required fields, the price and the image cap.
func (d ListingDraft) Validate() error {
	if err := ValidateStruct(d); err != nil {
		return err
	}
	if len(d.ExistingImages)+len(d.NewImages) > MaxImages {
		return fmt.Errorf("%w: %d images, at most %d allowed", ErrTooManyImages, len(d.ExistingImages)+len(d.NewImages), MaxImages)
	}
	return nil
}
