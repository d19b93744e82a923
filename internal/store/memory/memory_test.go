package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Spok95/recycle-stock/internal/domain/inventory"
	"github.com/Spok95/recycle-stock/internal/domain/materials"
)

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	m, err := s.Materials().Create(ctx, materials.Material{OwnerID: 1, Name: "Papel", Unit: "kg"})
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = s.Inventory().InTx(ctx, func(tx inventory.Tx) error {
		b, err := tx.LockBalance(ctx, 1, m.ID)
		if err != nil {
			return err
		}
		if b.OwnerID != 1 || b.MaterialID != m.ID {
			t.Errorf("new balance = %+v", b)
		}
		e := inventory.Entry{OwnerID: 1, MaterialID: m.ID, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(2)}
		if err := tx.InsertEntry(ctx, &e); err != nil {
			return err
		}
		if err := tx.SaveBalance(ctx, b.WithEntry(e.Quantity, e.UnitPrice)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v", err)
	}

	if len(s.entries) != 0 || len(s.balances) != 0 || s.entrySeq != 0 {
		t.Errorf("state after rollback: entries=%d balances=%d seq=%d", len(s.entries), len(s.balances), s.entrySeq)
	}
	if err := s.Materials().Archive(ctx, 1, m.ID); err != nil {
		t.Errorf("Archive after rollback: %v", err)
	}
}

func TestLockMaterialsScopesByOwner(t *testing.T) {
	ctx := context.Background()
	s := New()
	mine, _ := s.Materials().Create(ctx, materials.Material{OwnerID: 1, Name: "A", Unit: "kg"})
	theirs, _ := s.Materials().Create(ctx, materials.Material{OwnerID: 2, Name: "B", Unit: "kg"})
	gone, _ := s.Materials().Create(ctx, materials.Material{OwnerID: 1, Name: "C", Unit: "kg"})
	if err := s.Materials().Archive(ctx, 1, gone.ID); err != nil {
		t.Fatal(err)
	}

	_ = s.Inventory().InTx(ctx, func(tx inventory.Tx) error {
		got, err := tx.LockMaterials(ctx, 1, []int64{mine.ID, theirs.ID, gone.ID})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[mine.ID].Name != "A" {
			t.Errorf("locked = %+v", got)
		}
		return nil
	})
}
