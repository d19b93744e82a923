package materials_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
	"github.com/Spok95/recycle-stock/internal/store/memory"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func ptr(s string) *string { return &s }

func TestCreateNormalizesInput(t *testing.T) {
	svc := materials.NewService(memory.New().Materials(), discard)

	m, err := svc.Create(context.Background(), 1, materials.Input{Name: "  Papelão ", Description: ptr("   "), Unit: " kg"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Papelão" || m.Unit != "kg" || m.Description != nil {
		t.Errorf("material = %+v", m)
	}

	tests := []struct {
		name string
		in   materials.Input
	}{
		{"blank name", materials.Input{Name: "  ", Unit: "kg"}},
		{"blank unit", materials.Input{Name: "Vidro"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), 1, tt.in); !errors.Is(err, materials.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNamesAreUniquePerOwner(t *testing.T) {
	ctx := context.Background()
	svc := materials.NewService(memory.New().Materials(), discard)

	first, err := svc.Create(ctx, 1, materials.Input{Name: "PET", Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, 1, materials.Input{Name: "pet", Unit: "kg"}); !errors.Is(err, materials.ErrNameTaken) {
		t.Errorf("duplicate create err = %v, want ErrNameTaken", err)
	}
	if _, err := svc.Create(ctx, 2, materials.Input{Name: "PET", Unit: "kg"}); err != nil {
		t.Errorf("other owner create: %v", err)
	}

	second, err := svc.Create(ctx, 1, materials.Input{Name: "PEAD", Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Update(ctx, 1, second.ID, materials.Input{Name: "PET", Unit: "kg"}); !errors.Is(err, materials.ErrNameTaken) {
		t.Errorf("rename onto taken name err = %v, want ErrNameTaken", err)
	}
	// переименование в то же имя допустимо
	if _, err := svc.Update(ctx, 1, first.ID, materials.Input{Name: "PET", Description: ptr("garrafas"), Unit: "kg"}); err != nil {
		t.Errorf("self rename: %v", err)
	}

	// имя удалённого материала можно занять снова
	if err := svc.Delete(ctx, 1, second.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, 1, materials.Input{Name: "PEAD", Unit: "kg"}); err != nil {
		t.Errorf("reuse of deleted name: %v", err)
	}
}

func TestForeignMaterialIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := materials.NewService(memory.New().Materials(), discard)
	m, err := svc.Create(ctx, 1, materials.Input{Name: "Cobre", Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(ctx, 2, m.ID); !errors.Is(err, materials.ErrNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if _, err := svc.Update(ctx, 2, m.ID, materials.Input{Name: "X", Unit: "kg"}); !errors.Is(err, materials.ErrNotFound) {
		t.Errorf("Update err = %v", err)
	}
	if err := svc.Delete(ctx, 2, m.ID); !errors.Is(err, materials.ErrNotFound) {
		t.Errorf("Delete err = %v", err)
	}
	if list, _ := svc.List(ctx, 2); len(list) != 0 {
		t.Errorf("owner 2 lists %+v", list)
	}
}

func TestDeleteBlockedWhileInStock(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := materials.NewService(st.Materials(), discard)
	ledger := inventory.NewService(st.Inventory(), discard)

	m, err := svc.Create(ctx, 1, materials.Input{Name: "Alumínio", Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ledger.RecordEntries(ctx, 1, []inventory.EntryLine{{MaterialID: m.ID, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(7)}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, 1, m.ID); !errors.Is(err, materials.ErrInStock) {
		t.Fatalf("Delete err = %v, want ErrInStock", err)
	}

	if _, err := ledger.RecordExits(ctx, 1, []inventory.ExitLine{{MaterialID: m.ID, Quantity: decimal.NewFromInt(3)}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, 1, m.ID); err != nil {
		t.Fatalf("Delete after drain: %v", err)
	}
	if _, err := svc.Get(ctx, 1, m.ID); !errors.Is(err, materials.ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}

	// история остаётся после удаления
	moves, err := ledger.Movements(ctx, 1, inventory.MovementFilter{MaterialID: m.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 || moves[0].Material != "Alumínio" {
		t.Errorf("movements after delete = %+v", moves)
	}
}
