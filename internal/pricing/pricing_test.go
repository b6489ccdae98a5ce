package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
)

func testCatalog() Catalog {
	return Catalog{
		"Yellowpad":   10,
		"Ballpen":     15,
		"Burger Meal": 120,
		"Bond Paper":  2,
		"Milk Tea":    95,
		"Notebook":    35,
	}
}

func TestCalculateBreakdown(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name            string
		category        string
		items           []Item
		wantSubtotal    float64
		wantDeliveryFee float64
		wantTotal       float64
	}{
		{
			name:            "printing with two yellowpads",
			category:        models.CategoryPrinting,
			items:           []Item{{Name: "Yellowpad", Quantity: 2}},
			wantSubtotal:    20,
			wantDeliveryFee: 7, // 5 base + 2 x max(2-1, 0)
			wantTotal:       38.20,
		},
		{
			name:            "single item pays base fee only",
			category:        models.CategoryFoodDelivery,
			items:           []Item{{Name: "Burger Meal", Quantity: 1}},
			wantSubtotal:    120,
			wantDeliveryFee: 15,
			wantTotal:       146.20,
		},
		{
			name:     "deliver items with mixed quantities",
			category: models.CategoryDeliverItems,
			items: []Item{
				{Name: "Notebook", Quantity: 2},
				{Name: "Ballpen", Quantity: 3},
			},
			wantSubtotal:    115,
			wantDeliveryFee: 40, // 20 base + 5 x max(5-1, 0)
			wantTotal:       166.20,
		},
		{
			name:            "unknown item prices at zero, not an error",
			category:        models.CategorySchoolMaterials,
			items:           []Item{{Name: "Mystery Item", Quantity: 2}},
			wantSubtotal:    0,
			wantDeliveryFee: 15, // 10 base + 5 x max(2-1, 0)
			wantTotal:       26.20,
		},
		{
			name:            "unknown category gets zero delivery fee",
			category:        "Laundry",
			items:           []Item{{Name: "Yellowpad", Quantity: 1}},
			wantSubtotal:    10,
			wantDeliveryFee: 0,
			wantTotal:       21.20,
		},
		{
			name:            "blank item names do not count toward delivery fee",
			category:        models.CategoryPrinting,
			items:           []Item{{Name: "Yellowpad", Quantity: 1}, {Name: "", Quantity: 4}},
			wantSubtotal:    10,
			wantDeliveryFee: 5, // only the named item counts
			wantTotal:       26.20,
		},
		{
			name:            "no items still pays base and service fees",
			category:        models.CategoryFoodDelivery,
			items:           nil,
			wantSubtotal:    0,
			wantDeliveryFee: 15,
			wantTotal:       26.20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := CalculateBreakdown(tt.category, tt.items, catalog.Lookup)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSubtotal, b.Subtotal, 0.001)
			assert.InDelta(t, tt.wantDeliveryFee, b.DeliveryFee, 0.001)
			assert.InDelta(t, 11.20, b.ServiceFee, 0.001)
			assert.InDelta(t, tt.wantTotal, b.Total, 0.001)
		})
	}
}

func TestCalculateBreakdownRejectsNegatives(t *testing.T) {
	catalog := testCatalog()

	_, err := CalculateBreakdown(models.CategoryPrinting, []Item{{Name: "Yellowpad", Quantity: -1}}, catalog.Lookup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	badLookup := func(string) float64 { return -5 }
	_, err = CalculateBreakdown(models.CategoryPrinting, []Item{{Name: "Yellowpad", Quantity: 1}}, badLookup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeliveryFeeMonotonicity(t *testing.T) {
	table := DefaultFeeTable()
	for _, category := range []string{
		models.CategoryDeliverItems,
		models.CategoryFoodDelivery,
		models.CategorySchoolMaterials,
		models.CategoryPrinting,
	} {
		prev := table.DeliveryFee(category, 0)
		for qty := 1; qty <= 10; qty++ {
			fee := table.DeliveryFee(category, qty)
			assert.GreaterOrEqual(t, fee, prev, "category %s qty %d", category, qty)
			prev = fee
		}
	}
}

func TestServiceFee(t *testing.T) {
	assert.InDelta(t, 11.20, ServiceFee(), 0.0001)
}

func TestSubtotalFromInvoiceTotal(t *testing.T) {
	got, err := SubtotalFromInvoiceTotal(122)
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 0.001)

	_, err = SubtotalFromInvoiceTotal(-1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestItemRows(t *testing.T) {
	catalog := testCatalog()
	b, err := CalculateBreakdown(models.CategoryPrinting, []Item{
		{Name: "Yellowpad", Quantity: 2},
		{Name: "Ballpen", Quantity: 1},
	}, catalog.Lookup)
	require.NoError(t, err)

	require.Len(t, b.Items, 2)
	assert.Equal(t, "Yellowpad", b.Items[0].Name)
	assert.InDelta(t, 20, b.Items[0].Total, 0.001)
	assert.Equal(t, "Ballpen", b.Items[1].Name)
	assert.InDelta(t, 15, b.Items[1].Total, 0.001)
}
