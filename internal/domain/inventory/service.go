package inventory

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shopspring/decimal"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// Store - хранилище учёта. InTx должен быть атомарным: либо фиксируются все
// записи через tx, либо ни одна.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Balances(ctx context.Context, ownerID int64) ([]Position, error)
	Movements(ctx context.Context, ownerID int64, f MovementFilter) ([]Movement, error)
}

// Tx - хранилище внутри транзакции.
type Tx interface {
	// LockMaterials блокирует от удаления живые материалы ownerID из ids.
	// Неизвестных, удалённых и чужих id в результате нет.
	LockMaterials(ctx context.Context, ownerID int64, ids []int64) (map[int64]MaterialRef, error)
	// LockBalance блокирует строку остатка, при необходимости создаёт пустую.
	LockBalance(ctx context.Context, ownerID, materialID int64) (Balance, error)
	SaveBalance(ctx context.Context, b Balance) error
	InsertEntry(ctx context.Context, e *Entry) error
	InsertExit(ctx context.Context, x *Exit) error
}

// Recorder принимает метрики учёта.
type Recorder interface {
	Movement(kind string, lines int)
	Rejected(kind, reason string)
}

// Notifier узнаёт о материалах, у которых после расхода мало остатка.
type Notifier interface {
	LowStock(ctx context.Context, ownerID int64, items []LowStock) error
}

type Service struct {
	store        Store
	log          *slog.Logger
	metrics      Recorder
	notifier     Notifier
	lowThreshold decimal.Decimal
}

type Option func(*Service)

func WithRecorder(r Recorder) Option { return func(s *Service) { s.metrics = r } }

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLowStockThreshold включает уведомления для остатков <= t.
func WithLowStockThreshold(t decimal.Decimal) Option {
	return func(s *Service) { s.lowThreshold = t }
}

func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, metrics: nopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordEntries проверяет и атомарно проводит пакет прихода.
func (s *Service) RecordEntries(ctx context.Context, ownerID int64, lines []EntryLine) ([]Entry, error) {
	if err := validateEntries(lines); err != nil {
		s.reject(KindEntry, err)
		return nil, err
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}

	var out []Entry
	err := s.store.InTx(ctx, func(tx Tx) error {
		out = out[:0]
		balances, _, err := lockAll(ctx, tx, ownerID, ids)
		if err != nil {
			return err
		}
		for _, l := range lines {
			balances[l.MaterialID] = balances[l.MaterialID].WithEntry(l.Quantity, l.UnitPrice)
			e := Entry{OwnerID: ownerID, MaterialID: l.MaterialID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
			if err := tx.InsertEntry(ctx, &e); err != nil {
				return err
			}
			out = append(out, e)
		}
		return saveAll(ctx, tx, balances)
	})
	if err != nil {
		s.reject(KindEntry, err)
		return nil, err
	}

	s.metrics.Movement(string(KindEntry), len(lines))
	s.log.Debug("entries recorded", "owner_id", ownerID, "lines", len(lines))
	return out, nil
}

// RecordExits проверяет и атомарно проводит пакет расхода. Если хоть одна
// строка больше остатка, ничего не записывается.
func (s *Service) RecordExits(ctx context.Context, ownerID int64, lines []ExitLine) ([]Exit, error) {
	if err := validateExits(lines); err != nil {
		s.reject(KindExit, err)
		return nil, err
	}

	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}

	var (
		out     []Exit
		after   map[int64]Balance
		matRefs map[int64]MaterialRef
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		out = out[:0]
		balances, mats, err := lockAll(ctx, tx, ownerID, ids)
		if err != nil {
			return err
		}
		// Проверяем все строки до первой записи
		for _, l := range lines {
			b, err := balances[l.MaterialID].WithExit(l.Quantity)
			if err != nil {
				return StockError{
					MaterialID: l.MaterialID,
					Material:   mats[l.MaterialID].Name,
					Available:  balances[l.MaterialID].Quantity,
					Requested:  l.Quantity,
				}
			}
			balances[l.MaterialID] = b
		}
		for _, l := range lines {
			x := Exit{OwnerID: ownerID, MaterialID: l.MaterialID, Quantity: l.Quantity}
			if err := tx.InsertExit(ctx, &x); err != nil {
				return err
			}
			out = append(out, x)
		}
		after, matRefs = balances, mats
		return saveAll(ctx, tx, balances)
	})
	if err != nil {
		s.reject(KindExit, err)
		return nil, err
	}

	s.metrics.Movement(string(KindExit), len(lines))
	s.log.Debug("exits recorded", "owner_id", ownerID, "lines", len(lines))
	s.notifyLow(ctx, ownerID, after, matRefs)
	return out, nil
}

// Balances - материалы с положительным остатком.
func (s *Service) Balances(ctx context.Context, ownerID int64) ([]Position, error) {
	return s.store.Balances(ctx, ownerID)
}

// Movements - приходы и расходы, сначала новые.
func (s *Service) Movements(ctx context.Context, ownerID int64, f MovementFilter) ([]Movement, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = defaultMovementLimit
	case f.Limit > maxMovementLimit:
		f.Limit = maxMovementLimit
	}
	return s.store.Movements(ctx, ownerID, f)
}

// lockAll блокирует сначала материалы, потом остатки, по возрастанию id
// материала: параллельные пакеты не зайдут в дедлок.
func lockAll(ctx context.Context, tx Tx, ownerID int64, ids []int64) (map[int64]Balance, map[int64]MaterialRef, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	mats, err := tx.LockMaterials(ctx, ownerID, ids)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ids {
		if _, ok := mats[id]; !ok {
			return nil, nil, materialNotFound(id)
		}
	}

	balances := make(map[int64]Balance, len(ids))
	for _, id := range ids {
		b, err := tx.LockBalance(ctx, ownerID, id)
		if err != nil {
			return nil, nil, err
		}
		balances[id] = b
	}
	return balances, mats, nil
}

func saveAll(ctx context.Context, tx Tx, balances map[int64]Balance) error {
	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if err := tx.SaveBalance(ctx, balances[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) notifyLow(ctx context.Context, ownerID int64, balances map[int64]Balance, mats map[int64]MaterialRef) {
	if s.notifier == nil || !s.lowThreshold.IsPositive() {
		return
	}
	var low []LowStock
	for id, b := range balances {
		if b.Quantity.GreaterThan(s.lowThreshold) {
			continue
		}
		low = append(low, LowStock{MaterialID: id, Material: mats[id].Name, Unit: mats[id].Unit, Quantity: b.Quantity})
	}
	if len(low) == 0 {
		return
	}
	slices.SortFunc(low, func(a, b LowStock) int { return cmp.Compare(a.MaterialID, b.MaterialID) })
	if err := s.notifier.LowStock(ctx, ownerID, low); err != nil {
		s.log.Warn("low stock notification failed", "owner_id", ownerID, "err", err)
	}
}

func (s *Service) reject(kind Kind, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidLine):
		reason = "invalid"
	case errors.Is(err, ErrUnknownMaterial):
		reason = "unknown_material"
	case errors.Is(err, ErrInsufficientStock):
		reason = "insufficient_stock"
	}
	s.metrics.Rejected(string(kind), reason)
	if reason == "internal" {
		s.log.Error("ledger batch failed", "kind", kind, "err", err)
	}
}

type nopRecorder struct{}

func (nopRecorder) Movement(string, int)     {}
func (nopRecorder) Rejected(string, string) {}
