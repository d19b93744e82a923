package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindEntry Kind = "entry"
	KindExit  Kind = "exit"
)

// EntryLine - строка пакета прихода.
type EntryLine struct {
	MaterialID int64
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// ExitLine - строка пакета расхода.
type ExitLine struct {
	MaterialID int64
	Quantity   decimal.Decimal
}

type Entry struct {
	ID         int64
	OwnerID    int64
	MaterialID int64
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	CreatedAt  time.Time
}

type Exit struct {
	ID         int64
	OwnerID    int64
	MaterialID int64
	Quantity   decimal.Decimal
	CreatedAt  time.Time
}

// Balance - текущий итог по паре (владелец, материал).
type Balance struct {
	OwnerID     int64
	MaterialID  int64
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	TotalValue  decimal.Decimal
	UpdatedAt   time.Time
}

// MaterialRef - то, что учёту нужно знать о материале.
type MaterialRef struct {
	ID   int64
	Name string
	Unit string
}

// Position - остаток вместе с материалом, как его видит пользователь.
type Position struct {
	MaterialID  int64
	Material    string
	Unit        string
	Quantity    decimal.Decimal
	AverageCost decimal.Decimal
	TotalValue  decimal.Decimal
}

// Movement - приход или расход в истории. У расхода UnitPrice нулевой.
type Movement struct {
	ID         int64
	Kind       Kind
	MaterialID int64
	Material   string
	Unit       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	CreatedAt  time.Time
}

type MovementFilter struct {
	MaterialID int64 // 0 = все материалы
	Limit      int
}

// LowStock - материал, остаток которого на пороге или ниже.
type LowStock struct {
	MaterialID int64
	Material   string
	Unit       string
	Quantity   decimal.Decimal
}
