package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/domain/users"
)

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*users.Session, error)
	Login(ctx context.Context, email, password string) (*users.Session, error)
}

type MaterialService interface {
	Create(ctx context.Context, ownerID int64, in materials.Input) (*materials.Material, error)
	Get(ctx context.Context, ownerID, id int64) (*materials.Material, error)
	List(ctx context.Context, ownerID int64) ([]materials.Material, error)
	Update(ctx context.Context, ownerID, id int64, in materials.Input) (*materials.Material, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type LedgerService interface {
	RecordEntries(ctx context.Context, ownerID int64, lines []inventory.EntryLine) ([]inventory.Entry, error)
	RecordExits(ctx context.Context, ownerID int64, lines []inventory.ExitLine) ([]inventory.Exit, error)
	Balances(ctx context.Context, ownerID int64) ([]inventory.Position, error)
	Movements(ctx context.Context, ownerID int64, f inventory.MovementFilter) ([]inventory.Movement, error)
}

type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type Metrics interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	Handler() http.Handler
}
