package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sobhihamadi/paint-by-number-microservice/internal/domain"
)

const createInvalidMessage = "Invalid request: filename, image path, and session ID are required"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return !f.IsZero()
		}
		return strings.TrimSpace(f.String()) != ""
	})
	if err != nil {
		panic("service: register notblank validation: " + err.Error())
	}
	return v
}

// validateInput runs struct validation and reports every failing field by
// its detail key. Keys come from the `detail` struct tag.
func validateInput(v *validator.Validate, message string, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	t := reflect.TypeOf(in)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.StructField()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if tag := sf.Tag.Get("detail"); tag != "" {
				key = tag
			}
		}
		keys = append(keys, key)
	}
	return domain.NewValidationError(message, keys...)
}
