package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"quickbuy/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs v over s and folds any failure into a validation error.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Validation("invalid input: %v", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag()))
	}
	return apperror.Validation("%s", strings.Join(messages, "; "))
}
