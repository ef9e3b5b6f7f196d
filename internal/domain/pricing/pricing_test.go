package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomloop/storefront/internal/domain/coupon"
)

func tenPercent() *coupon.Coupon {
	return &coupon.Coupon{
		Code:            "FRESHTEST01",
		OwnerID:         "u1",
		DiscountPercent: 10,
		ExpiresAt:       time.Now().Add(time.Hour),
		Active:          true,
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name      string
		lines     []Line
		coupon    *coupon.Coupon
		wantTotal int64
		wantErr   error
	}{
		{
			name:      "single line no coupon",
			lines:     []Line{{ProductID: "p1", UnitPrice: 1000, Quantity: 2}},
			wantTotal: 2000,
		},
		{
			name: "multiple lines accumulate",
			lines: []Line{
				{ProductID: "p1", UnitPrice: 1000, Quantity: 2},
				{ProductID: "p2", UnitPrice: 2500, Quantity: 1},
				{ProductID: "p3", UnitPrice: 1, Quantity: 500},
			},
			wantTotal: 5000,
		},
		{
			name:      "ten percent coupon on 10000",
			lines:     []Line{{ProductID: "p1", UnitPrice: 10000, Quantity: 1}},
			coupon:    tenPercent(),
			wantTotal: 9000,
		},
		{
			name:      "discount rounds half up",
			lines:     []Line{{ProductID: "p1", UnitPrice: 1005, Quantity: 1}},
			coupon:    tenPercent(), // 10% of 1005 = 100.5 -> 101
			wantTotal: 904,
		},
		{
			name:  "hundred percent coupon zeroes the total",
			lines: []Line{{ProductID: "p1", UnitPrice: 700, Quantity: 3}},
			coupon: &coupon.Coupon{
				Code: "FRESHFULL00", OwnerID: "u1", DiscountPercent: 100,
				ExpiresAt: time.Now().Add(time.Hour), Active: true,
			},
			wantTotal: 0,
		},
		{
			name:  "zero percent coupon changes nothing",
			lines: []Line{{ProductID: "p1", UnitPrice: 700, Quantity: 3}},
			coupon: &coupon.Coupon{
				Code: "FRESHZERO00", OwnerID: "u1", DiscountPercent: 0,
				ExpiresAt: time.Now().Add(time.Hour), Active: true,
			},
			wantTotal: 2100,
		},
		{
			name:      "zero priced line is allowed",
			lines:     []Line{{ProductID: "freebie", UnitPrice: 0, Quantity: 1}},
			wantTotal: 0,
		},
		{
			name:    "empty cart rejected",
			lines:   nil,
			wantErr: ErrEmptyCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := Price(tt.lines, tt.coupon)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			require.Len(t, items, len(tt.lines))
			for i, item := range items {
				assert.Equal(t, tt.lines[i].ProductID, item.ProductID)
				assert.Equal(t, tt.lines[i].UnitPrice*int64(tt.lines[i].Quantity), item.Amount)
			}
		})
	}
}

func TestPrice_InvalidLines(t *testing.T) {
	_, _, err := Price([]Line{{ProductID: "p1", UnitPrice: 100, Quantity: 0}}, nil)
	var ilErr *InvalidLineError
	require.ErrorAs(t, err, &ilErr)
	assert.Equal(t, "p1", ilErr.ProductID)

	_, _, err = Price([]Line{{ProductID: "p2", UnitPrice: -1, Quantity: 1}}, nil)
	require.ErrorAs(t, err, &ilErr)
	assert.Equal(t, "p2", ilErr.ProductID)
}

// Any coupon with a percentage in [0,100] never increases the total and the
// undiscounted total always equals the plain sum of the lines.
func TestPrice_DiscountMonotonic(t *testing.T) {
	lines := []Line{
		{ProductID: "p1", UnitPrice: 199, Quantity: 3},
		{ProductID: "p2", UnitPrice: 2050, Quantity: 1},
	}
	_, base, err := Price(lines, nil)
	require.NoError(t, err)
	require.Equal(t, int64(199*3+2050), base)

	prev := base
	for pct := 0; pct <= 100; pct++ {
		c := tenPercent()
		c.DiscountPercent = pct
		_, total, err := Price(lines, c)
		require.NoError(t, err)
		assert.LessOrEqual(t, total, base, "pct=%d", pct)
		assert.LessOrEqual(t, total, prev, "pct=%d", pct)
		assert.GreaterOrEqual(t, total, int64(0), "pct=%d", pct)
		prev = total
	}
}
