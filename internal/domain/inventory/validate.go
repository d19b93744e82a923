package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Количество и цена в строке: строго меньше 1e12 и не больше 6 знаков
// после запятой.
const (
	maxScale    = 6
	maxExponent = 12
	// экспонента ниже этой считается мусором без пересчёта
	minExponent = -3 * maxScale
)

var maxAmount = decimal.New(1, maxExponent)

func validateEntries(lines []EntryLine) error {
	if len(lines) == 0 {
		return ErrEmptyBatch
	}
	for i, l := range lines {
		switch {
		case l.MaterialID <= 0:
			return ValidationError{Line: i + 1, Field: "materialId", Message: "is required"}
		case !l.Quantity.IsPositive():
			return ValidationError{Line: i + 1, Field: "quantidade", Message: "must be greater than zero"}
		case !inRange(l.Quantity):
			return ValidationError{Line: i + 1, Field: "quantidade", Message: "out of range"}
		case !l.UnitPrice.IsPositive():
			return ValidationError{Line: i + 1, Field: "preco", Message: "must be greater than zero"}
		case !inRange(l.UnitPrice):
			return ValidationError{Line: i + 1, Field: "preco", Message: "out of range"}
		}
	}
	return nil
}

func validateExits(lines []ExitLine) error {
	if len(lines) == 0 {
		return ErrEmptyBatch
	}
	for i, l := range lines {
		switch {
		case l.MaterialID <= 0:
			return ValidationError{Line: i + 1, Field: "materialId", Message: "is required"}
		case !l.Quantity.IsPositive():
			return ValidationError{Line: i + 1, Field: "quantidade", Message: "must be greater than zero"}
		case !inRange(l.Quantity):
			return ValidationError{Line: i + 1, Field: "quantidade", Message: "out of range"}
		}
	}
	return nil
}

// inRange проверяет положительное значение на границы. Экспоненту смотрим
// до любых сравнений: Cmp и Truncate пересчитывают коэффициент в 10^|exp|.
func inRange(v decimal.Decimal) bool {
	if e := v.Exponent(); e >= maxExponent || e < minExponent {
		return false
	}
	return v.LessThan(maxAmount) && v.Equal(v.Truncate(maxScale))
}

func materialNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", ErrUnknownMaterial, id)
}
