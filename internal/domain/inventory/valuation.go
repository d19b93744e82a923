package inventory

import "github.com/shopspring/decimal"

// WithEntry - остаток после прихода qty по цене unitPrice. Сумма растёт на
// qty*unitPrice, средняя цена пересчитывается как сумма/количество.
func (b Balance) WithEntry(qty, unitPrice decimal.Decimal) Balance {
	b.TotalValue = b.TotalValue.Add(qty.Mul(unitPrice))
	b.Quantity = b.Quantity.Add(qty)
	if b.Quantity.IsPositive() {
		b.AverageCost = b.TotalValue.Div(b.Quantity)
	}
	return b
}

// WithExit - остаток после расхода qty. Средняя цена не меняется, сумма
// равна оставшемуся количеству по этой цене.
func (b Balance) WithExit(qty decimal.Decimal) (Balance, error) {
	if b.Quantity.LessThan(qty) {
		return b, ErrInsufficientStock
	}
	b.Quantity = b.Quantity.Sub(qty)
	b.TotalValue = b.Quantity.Mul(b.AverageCost)
	return b, nil
}
