package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyBatch        = errors.New("inventory: empty batch")
	ErrInvalidLine       = errors.New("inventory: invalid line")
	ErrUnknownMaterial   = errors.New("inventory: material not found")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// ValidationError - некорректная строка пакета. Line считается с 1.
type ValidationError struct {
	Line    int
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("inventory: line %d: %s %s", e.Line, e.Field, e.Message)
}

func (e ValidationError) Unwrap() error { return ErrInvalidLine }

// StockError - первая строка расхода, которую остаток не покрывает.
type StockError struct {
	MaterialID int64
	Material   string
	Available  decimal.Decimal
	Requested  decimal.Decimal
}

func (e StockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for %q (id %d): available %s, requested %s",
		e.Material, e.MaterialID, e.Available, e.Requested)
}

func (e StockError) Unwrap() error { return ErrInsufficientStock }
