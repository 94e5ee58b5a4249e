package serverutils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return fieldName(f.Tag.Get("json"), f.Tag.Get("query"), f.Name)
	})
	return v
}

// ValidateRequest runs struct tag validation and returns a *ValidationError
// keyed by the JSON (or query) field name.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe.Namespace())] = describe(fe)
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

// fieldPath drops the struct name from a namespace like "ChatRequest.preferences.allergies[0]".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldName(jsonTag, queryTag, goName string) string {
	for _, tag := range []string{jsonTag, queryTag} {
		name := strings.SplitN(tag, ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return goName
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
