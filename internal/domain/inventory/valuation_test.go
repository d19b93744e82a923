package inventory

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertBalance(t *testing.T, b Balance, qty, avg, total string) {
	t.Helper()
	if !b.Quantity.Equal(d(qty)) || !b.AverageCost.Equal(d(avg)) || !b.TotalValue.Equal(d(total)) {
		t.Errorf("balance = (qty %s, avg %s, total %s), want (%s, %s, %s)",
			b.Quantity, b.AverageCost, b.TotalValue, qty, avg, total)
	}
}

func TestWeightedAverage(t *testing.T) {
	var b Balance
	b = b.WithEntry(d("10"), d("2"))
	assertBalance(t, b, "10", "2", "20")

	b = b.WithEntry(d("10"), d("4"))
	assertBalance(t, b, "20", "3", "60")

	b, err := b.WithExit(d("5"))
	if err != nil {
		t.Fatal(err)
	}
	assertBalance(t, b, "15", "3", "45")
}

func TestWithExit(t *testing.T) {
	start := Balance{}.WithEntry(d("15"), d("3"))

	tests := []struct {
		name    string
		qty     string
		wantErr error
		want    [3]string
	}{
		{"partial", "5", nil, [3]string{"10", "3", "30"}},
		{"exact drain keeps average", "15", nil, [3]string{"0", "3", "0"}},
		{"too much", "100", ErrInsufficientStock, [3]string{"15", "3", "45"}},
		{"just over", "15.001", ErrInsufficientStock, [3]string{"15", "3", "45"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := start.WithExit(d(tt.qty))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			assertBalance(t, b, tt.want[0], tt.want[1], tt.want[2])
		})
	}
}

func TestEntryAfterDrain(t *testing.T) {
	b := Balance{}.WithEntry(d("4"), d("5"))
	b, _ = b.WithExit(d("4"))
	b = b.WithEntry(d("2"), d("8"))
	assertBalance(t, b, "2", "8", "16")
}

func TestFractionalQuantities(t *testing.T) {
	b := Balance{}.WithEntry(d("0.5"), d("1.20"))
	b = b.WithEntry(d("1.5"), d("2.00"))
	assertBalance(t, b, "2", "1.8", "3.6")
}

// Сумма считается отдельно от Balance: приход добавляет q*p, расход списывает
// q по средней цене на момент расхода. Расхождение допускается только на
// округление средней цены.
func TestTotalValueTracksSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	tolerance := d("0.000001")

	var b Balance
	qty, want := decimal.Zero, decimal.Zero
	for step := 1; step <= 500; step++ {
		kind := "entry"
		if qty.IsPositive() && rng.IntN(3) == 0 {
			kind = "exit"
		}

		switch kind {
		case "entry":
			q := decimal.New(rng.Int64N(50000)+1, -3)
			p := decimal.New(rng.Int64N(100000)+1, -2)
			b = b.WithEntry(q, p)
			qty = qty.Add(q)
			want = want.Add(q.Mul(p))
		case "exit":
			q := qty
			if rng.IntN(10) > 0 {
				q = decimal.New(rng.Int64N(qty.Shift(3).IntPart())+1, -3)
			}
			avg := b.AverageCost
			var err error
			if b, err = b.WithExit(q); err != nil {
				t.Fatalf("step %d: exit %s of %s: %v", step, q, qty, err)
			}
			if !b.AverageCost.Equal(avg) {
				t.Fatalf("step %d: exit moved average %s -> %s", step, avg, b.AverageCost)
			}
			qty = qty.Sub(q)
			want = want.Sub(q.Mul(avg))
		}

		if !b.Quantity.Equal(qty) {
			t.Fatalf("step %d (%s): quantity = %s, want %s", step, kind, b.Quantity, qty)
		}
		if b.TotalValue.IsNegative() || b.TotalValue.Sub(want).Abs().GreaterThan(tolerance) {
			t.Fatalf("step %d (%s): total = %s, want %s", step, kind, b.TotalValue, want)
		}
	}
}
