// Package memory - хранилище в памяти процесса для users, materials и
// inventory. Используется драйвером "memory" и в тестах.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/domain/users"
)

type balanceKey struct {
	ownerID    int64
	materialID int64
}

// Store держит всё состояние под одним мьютексом; транзакция учёта держит
// его до конца.
type Store struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time

	userSeq, materialSeq, entrySeq, exitSeq int64

	users     map[int64]users.User
	materials map[int64]materials.Material
	balances  map[balanceKey]inventory.Balance
	entries   []inventory.Entry
	exits     []inventory.Exit
}

func New() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[int64]users.User),
		materials: make(map[int64]materials.Material),
		balances:  make(map[balanceKey]inventory.Balance),
	}
}

// stamp выдаёт строго возрастающее время, чтобы порядок истории был стабильным.
func (s *Store) stamp() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func (s *Store) Users() users.Store { return userStore{s} }

func (s *Store) Materials() materials.Store { return materialStore{s} }

func (s *Store) Inventory() inventory.Store { return ledgerStore{s} }

/* ---- users ---- */

type userStore struct{ s *Store }

func (r userStore) Create(_ context.Context, u users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, users.ErrEmailTaken
		}
	}
	r.s.userSeq++
	u.ID = r.s.userSeq
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = u
	return &u, nil
}

func (r userStore) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, users.ErrNotFound
}

/* ---- materials ---- */

type materialStore struct{ s *Store }

func (r materialStore) Create(_ context.Context, m materials.Material) (*materials.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.nameTaken(m.OwnerID, 0, m.Name) {
		return nil, materials.ErrNameTaken
	}
	r.s.materialSeq++
	m.ID = r.s.materialSeq
	m.CreatedAt = r.s.now()
	m.UpdatedAt = m.CreatedAt
	m.DeletedAt = nil
	r.s.materials[m.ID] = m
	return &m, nil
}

func (r materialStore) GetByID(_ context.Context, ownerID, id int64) (*materials.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.liveMaterial(ownerID, id)
	if !ok {
		return nil, materials.ErrNotFound
	}
	return &m, nil
}

func (r materialStore) List(_ context.Context, ownerID int64) ([]materials.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []materials.Material{}
	for _, m := range r.s.materials {
		if m.OwnerID == ownerID && m.DeletedAt == nil {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b materials.Material) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (r materialStore) Update(_ context.Context, m materials.Material) (*materials.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.liveMaterial(m.OwnerID, m.ID)
	if !ok {
		return nil, materials.ErrNotFound
	}
	if r.s.nameTaken(m.OwnerID, m.ID, m.Name) {
		return nil, materials.ErrNameTaken
	}
	cur.Name, cur.Description, cur.Unit = m.Name, m.Description, m.Unit
	cur.UpdatedAt = r.s.now()
	r.s.materials[cur.ID] = cur
	return &cur, nil
}

func (r materialStore) Archive(_ context.Context, ownerID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.liveMaterial(ownerID, id)
	if !ok {
		return materials.ErrNotFound
	}
	if b, ok := r.s.balances[balanceKey{ownerID, id}]; ok && b.Quantity.IsPositive() {
		return materials.ErrInStock
	}
	now := r.s.now()
	m.DeletedAt = &now
	r.s.materials[id] = m
	return nil
}

func (s *Store) liveMaterial(ownerID, id int64) (materials.Material, bool) {
	m, ok := s.materials[id]
	if !ok || m.OwnerID != ownerID || m.DeletedAt != nil {
		return materials.Material{}, false
	}
	return m, true
}

func (s *Store) nameTaken(ownerID, exceptID int64, name string) bool {
	for _, m := range s.materials {
		if m.OwnerID == ownerID && m.ID != exceptID && m.DeletedAt == nil && strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}

/* ---- inventory ---- */

type ledgerStore struct{ s *Store }

// InTx пишет изменения на месте и откатывает состояние, если fn вернула ошибку.
func (r ledgerStore) InTx(_ context.Context, fn func(tx inventory.Tx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	balances := maps.Clone(r.s.balances)
	nEntries, nExits := len(r.s.entries), len(r.s.exits)
	entrySeq, exitSeq := r.s.entrySeq, r.s.exitSeq

	if err := fn(ledgerTx{r.s}); err != nil {
		r.s.balances = balances
		r.s.entries = r.s.entries[:nEntries]
		r.s.exits = r.s.exits[:nExits]
		r.s.entrySeq, r.s.exitSeq = entrySeq, exitSeq
		return err
	}
	return nil
}

func (r ledgerStore) Balances(_ context.Context, ownerID int64) ([]inventory.Position, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []inventory.Position{}
	for k, b := range r.s.balances {
		if k.ownerID != ownerID || !b.Quantity.IsPositive() {
			continue
		}
		m, ok := r.s.liveMaterial(ownerID, k.materialID)
		if !ok {
			continue
		}
		out = append(out, inventory.Position{
			MaterialID:  m.ID,
			Material:    m.Name,
			Unit:        m.Unit,
			Quantity:    b.Quantity,
			AverageCost: b.AverageCost,
			TotalValue:  b.TotalValue,
		})
	}
	slices.SortFunc(out, func(a, b inventory.Position) int {
		return cmp.Or(strings.Compare(a.Material, b.Material), cmp.Compare(a.MaterialID, b.MaterialID))
	})
	return out, nil
}

func (r ledgerStore) Movements(_ context.Context, ownerID int64, f inventory.MovementFilter) ([]inventory.Movement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match := func(owner, material int64) bool {
		return owner == ownerID && (f.MaterialID == 0 || material == f.MaterialID)
	}
	out := []inventory.Movement{}
	for _, e := range r.s.entries {
		if match(e.OwnerID, e.MaterialID) {
			out = append(out, r.s.movement(inventory.KindEntry, e.ID, e.MaterialID, e.Quantity, e.UnitPrice, e.CreatedAt))
		}
	}
	for _, x := range r.s.exits {
		if match(x.OwnerID, x.MaterialID) {
			out = append(out, r.s.movement(inventory.KindExit, x.ID, x.MaterialID, x.Quantity, decimal.Zero, x.CreatedAt))
		}
	}
	slices.SortFunc(out, func(a, b inventory.Movement) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) movement(kind inventory.Kind, id, materialID int64, qty, price decimal.Decimal, at time.Time) inventory.Movement {
	m := s.materials[materialID]
	return inventory.Movement{
		ID:         id,
		Kind:       kind,
		MaterialID: materialID,
		Material:   m.Name,
		Unit:       m.Unit,
		Quantity:   qty,
		UnitPrice:  price,
		CreatedAt:  at,
	}
}

// ledgerTx работает под Store.mu, взятым в InTx.
type ledgerTx struct{ s *Store }

func (t ledgerTx) LockMaterials(_ context.Context, ownerID int64, ids []int64) (map[int64]inventory.MaterialRef, error) {
	out := make(map[int64]inventory.MaterialRef, len(ids))
	for _, id := range ids {
		if m, ok := t.s.liveMaterial(ownerID, id); ok {
			out[id] = inventory.MaterialRef{ID: m.ID, Name: m.Name, Unit: m.Unit}
		}
	}
	return out, nil
}

func (t ledgerTx) LockBalance(_ context.Context, ownerID, materialID int64) (inventory.Balance, error) {
	k := balanceKey{ownerID, materialID}
	b, ok := t.s.balances[k]
	if !ok {
		b = inventory.Balance{OwnerID: ownerID, MaterialID: materialID, UpdatedAt: t.s.now()}
		t.s.balances[k] = b
	}
	return b, nil
}

func (t ledgerTx) SaveBalance(_ context.Context, b inventory.Balance) error {
	b.UpdatedAt = t.s.now()
	t.s.balances[balanceKey{b.OwnerID, b.MaterialID}] = b
	return nil
}

func (t ledgerTx) InsertEntry(_ context.Context, e *inventory.Entry) error {
	t.s.entrySeq++
	e.ID = t.s.entrySeq
	e.CreatedAt = t.s.stamp()
	t.s.entries = append(t.s.entries, *e)
	return nil
}

func (t ledgerTx) InsertExit(_ context.Context, x *inventory.Exit) error {
	t.s.exitSeq++
	x.ID = t.s.exitSeq
	x.CreatedAt = t.s.stamp()
	t.s.exits = append(t.s.exits, *x)
	return nil
}
