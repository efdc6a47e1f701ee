package billing

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

func sumShares(shares []valueobject.Money) valueobject.Money {
	sum := valueobject.ZeroEUR()
	for _, s := range shares {
		sum = sum.MustAdd(s)
	}
	return sum
}

func TestSplitEqual(t *testing.T) {
	t.Run("uneven total distributes extra cents to first payers", func(t *testing.T) {
		shares, err := SplitEqual(eur(100.01), 3)
		require.NoError(t, err)

		require.Len(t, shares, 3)
		assert.Equal(t, "33.34 EUR", shares[0].String())
		assert.Equal(t, "33.34 EUR", shares[1].String())
		assert.Equal(t, "33.33 EUR", shares[2].String())
	})

	t.Run("even split", func(t *testing.T) {
		shares, err := SplitEqual(eur(90), 3)
		require.NoError(t, err)

		for _, s := range shares {
			assert.Equal(t, "30.00 EUR", s.String())
		}
	})

	t.Run("single payer gets the whole total", func(t *testing.T) {
		shares, err := SplitEqual(eur(47.93), 1)
		require.NoError(t, err)

		require.Len(t, shares, 1)
		assert.Equal(t, "47.93 EUR", shares[0].String())
	})

	t.Run("rejects non-positive payer counts", func(t *testing.T) {
		_, err := SplitEqual(eur(10), 0)
		assert.ErrorIs(t, err, shared.ErrNoPayers)
		_, err = SplitEqual(eur(10), -2)
		assert.ErrorIs(t, err, shared.ErrNoPayers)
	})

	t.Run("shares always sum to the total", func(t *testing.T) {
		for cents := int64(1); cents <= 500; cents += 7 {
			total := valueobject.FromCents(cents, valueobject.EUR)
			for n := 1; n <= 9; n++ {
				shares, err := SplitEqual(total, n)
				require.NoError(t, err)
				assert.True(t, sumShares(shares).Equals(total),
					"cents=%d n=%d sum=%s", cents, n, sumShares(shares))
			}
		}
	})

	t.Run("shares never differ by more than one cent", func(t *testing.T) {
		shares, err := SplitEqual(eur(99.97), 7)
		require.NoError(t, err)

		min, max := shares[0].Cents(), shares[0].Cents()
		for _, s := range shares {
			if s.Cents() < min {
				min = s.Cents()
			}
			if s.Cents() > max {
				max = s.Cents()
			}
		}
		assert.LessOrEqual(t, max-min, int64(1))
	})
}

func splitFixture(t *testing.T) ([]*Session, map[string]valueobject.Money) {
	t.Helper()
	selectionID := uuid.New()

	alice := NewSession(selectionID, "Alice")
	alice.Assign("latte::oat-milk")
	alice.Assign("croissant::")

	bob := NewSession(selectionID, "Bob")
	bob.Assign("mocha::")

	lineTotals := map[string]valueobject.Money{
		"latte::oat-milk": eur(10.00),
		"croissant::":     eur(5.00),
		"mocha::":         eur(5.00),
	}
	return []*Session{alice, bob}, lineTotals
}

func TestSplitBySessions(t *testing.T) {
	sessions, lineTotals := splitFixture(t)

	totals := ComputeTotals(eur(20), PricingConfig{
		Tax: TaxConfig{Enabled: true, Percentage: pct(10), DisplayMode: TaxExclusive},
	}, valueobject.ZeroEUR())

	shares, err := SplitBySessions(sessions, lineTotals, totals)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	assert.Equal(t, "Alice", shares[0].Label)
	assert.Equal(t, "15.00 EUR", shares[0].Subtotal.String())
	assert.Equal(t, "1.50 EUR", shares[0].TaxAmount.String())
	assert.Equal(t, "16.50 EUR", shares[0].Total.String())

	assert.Equal(t, "Bob", shares[1].Label)
	assert.Equal(t, "5.00 EUR", shares[1].Subtotal.String())
	assert.Equal(t, "0.50 EUR", shares[1].TaxAmount.String())
	assert.Equal(t, "5.50 EUR", shares[1].Total.String())
}

func TestSplitBySessions_LeftoverCentGoesToLargestSession(t *testing.T) {
	selectionID := uuid.New()
	big := NewSession(selectionID, "big")
	big.Assign("a")
	small := NewSession(selectionID, "small")
	small.Assign("b")

	lineTotals := map[string]valueobject.Money{
		"a": eur(5.00),
		"b": eur(5.00),
	}
	// 0.03 tip over two equal halves rounds to 0.02 + 0.02; the surplus cent
	// is pulled back from the largest session.
	totals := ComputeTotals(eur(10), PricingConfig{}, eur(0.03))

	shares, err := SplitBySessions([]*Session{big, small}, lineTotals, totals)
	require.NoError(t, err)

	tipSum := shares[0].TipAmount.MustAdd(shares[1].TipAmount)
	assert.Equal(t, "0.03 EUR", tipSum.String())

	totalSum := shares[0].Total.MustAdd(shares[1].Total)
	assert.True(t, totalSum.Equals(totals.Total), "got %s want %s", totalSum, totals.Total)
}

func TestSplitBySessions_ComponentsSumExactly(t *testing.T) {
	for _, taxPct := range []float64{7, 10, 19, 21} {
		t.Run(fmt.Sprintf("tax_%v", taxPct), func(t *testing.T) {
			sessions, lineTotals := splitFixture(t)
			totals := ComputeTotals(eur(20), PricingConfig{
				Tax:           TaxConfig{Enabled: true, Percentage: pct(taxPct), DisplayMode: TaxExclusive},
				ServiceCharge: ServiceChargeConfig{Enabled: true, Percentage: pct(5), Base: BasePostTax},
			}, eur(1.11))

			shares, err := SplitBySessions(sessions, lineTotals, totals)
			require.NoError(t, err)

			tax := valueobject.ZeroEUR()
			svc := valueobject.ZeroEUR()
			tip := valueobject.ZeroEUR()
			sum := valueobject.ZeroEUR()
			for _, s := range shares {
				tax = tax.MustAdd(s.TaxAmount)
				svc = svc.MustAdd(s.ServiceChargeAmount)
				tip = tip.MustAdd(s.TipAmount)
				sum = sum.MustAdd(s.Total)
			}
			assert.True(t, tax.Equals(totals.TaxAmount), "tax %s != %s", tax, totals.TaxAmount)
			assert.True(t, svc.Equals(totals.ServiceChargeAmount), "svc %s != %s", svc, totals.ServiceChargeAmount)
			assert.True(t, tip.Equals(totals.TipAmount), "tip %s != %s", tip, totals.TipAmount)
			assert.True(t, sum.Equals(totals.Total), "total %s != %s", sum, totals.Total)
		})
	}
}

func TestSplitBySessions_NoAssignedItems(t *testing.T) {
	empty := NewSession(uuid.New(), "empty")
	totals := ComputeTotals(eur(20), PricingConfig{}, valueobject.ZeroEUR())

	_, err := SplitBySessions([]*Session{empty}, map[string]valueobject.Money{}, totals)
	assert.ErrorIs(t, err, shared.ErrNoAssignedItems)
}

func TestSplitBySessions_UnknownKeysIgnored(t *testing.T) {
	s := NewSession(uuid.New(), "solo")
	s.Assign("known")
	s.Assign("stale-key")

	lineTotals := map[string]valueobject.Money{"known": eur(8)}
	totals := ComputeTotals(eur(8), PricingConfig{}, valueobject.ZeroEUR())

	shares, err := SplitBySessions([]*Session{s}, lineTotals, totals)
	require.NoError(t, err)
	assert.Equal(t, "8.00 EUR", shares[0].Subtotal.String())
	assert.Equal(t, "8.00 EUR", shares[0].Total.String())
}
