package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Для decimal в теге проверяется только знак (gt=0). Границы значений
	// проверяет inventory, без перевода во float.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		return d.Sign()
	}, decimal.Decimal{})
	return v
}

// checkStruct превращает первую ошибку валидатора в 422.
func checkStruct(v any) error {
	return toAPIError(validate.Struct(v), "")
}

// checkLines проверяет каждую строку пакета; в ошибке номер строки с 1.
func checkLines[T any](lines []T) error {
	for i := range lines {
		if err := toAPIError(validate.Struct(&lines[i]), fmt.Sprintf("linha %d: ", i+1)); err != nil {
			return err
		}
	}
	return nil
}

func toAPIError(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apiError{http.StatusUnprocessableEntity, prefix + "campo " + verrs[0].Field() + " inválido"}
	}
	return err
}
