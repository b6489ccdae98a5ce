// Package pricing computes the price breakdown for an errand: item subtotal,
// category-based delivery fee, flat service fee with tax, and invoice total.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrValidation is returned for negative quantities or prices. Bad input is
// rejected, never clamped.
var ErrValidation = errors.New("validation failed")

// Service fee: flat base plus 12% tax on that base, independent of order size.
const (
	ServiceFeeBase = 10.0
	TaxRate        = 0.12
)

// legacyTotalMultiplier reverse-derives a subtotal from an invoice total that
// was recorded with tax and platform fee baked in. Display-only; see
// SubtotalFromInvoiceTotal.
const legacyTotalMultiplier = 1.22

// Item is one requested line item: a name and how many.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ItemRow is one priced line in a breakdown.
type ItemRow struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// Breakdown is the derived cost view of one errand. Never persisted,
// recomputed on demand.
type Breakdown struct {
	Items       []ItemRow `json:"items"`
	Subtotal    float64   `json:"subtotal"`
	DeliveryFee float64   `json:"delivery_fee"`
	ServiceFee  float64   `json:"service_fee"`
	Total       float64   `json:"total"`
}

// PriceLookup resolves an item name to its catalog price. Unknown items
// price at 0; that is a catalog gap, not an error.
type PriceLookup func(name string) float64

// ServiceFee returns the flat service fee including tax (10 x 1.12 = 11.20).
func ServiceFee() float64 {
	return round2(ServiceFeeBase * (1 + TaxRate))
}

// CalculateBreakdown prices an errand with the default category fee table.
func CalculateBreakdown(category string, items []Item, lookup PriceLookup) (*Breakdown, error) {
	return CalculateBreakdownWith(category, items, lookup, DefaultFeeTable())
}

// CalculateBreakdownWith prices an errand against an explicit fee table.
//
// Per-item total is price x quantity; the delivery fee is the category base
// plus a per-extra-item add-on; the service fee is flat. The grand total is
// subtotal + deliveryFee + serviceFee (the canonical forward formula - never
// mix with SubtotalFromInvoiceTotal on the same errand).
func CalculateBreakdownWith(category string, items []Item, lookup PriceLookup, table FeeTable) (*Breakdown, error) {
	breakdown := &Breakdown{}

	totalQuantity := 0
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, fmt.Errorf("item %q: negative quantity %d: %w", item.Name, item.Quantity, ErrValidation)
		}

		price := lookup(item.Name)
		if price < 0 {
			return nil, fmt.Errorf("item %q: negative price %.2f: %w", item.Name, price, ErrValidation)
		}

		row := ItemRow{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    price,
			Total:    price * float64(item.Quantity),
		}
		breakdown.Items = append(breakdown.Items, row)
		breakdown.Subtotal += row.Total

		// Blank rows don't count toward the delivery fee.
		if item.Name != "" {
			totalQuantity += item.Quantity
		}
	}

	breakdown.DeliveryFee = table.DeliveryFee(category, totalQuantity)
	breakdown.ServiceFee = ServiceFee()
	breakdown.Total = round2(breakdown.Subtotal + breakdown.DeliveryFee + breakdown.ServiceFee)

	return breakdown, nil
}

// SubtotalFromInvoiceTotal estimates the pre-fee subtotal from a final
// invoice total recorded before itemization existed, where 12% tax and a 10%
// platform fee were both applied to the subtotal. Display-only legacy
// formula; nothing derived from it is persisted, and it must not be combined
// with CalculateBreakdown output for the same errand.
func SubtotalFromInvoiceTotal(total float64) (float64, error) {
	if total < 0 {
		return 0, fmt.Errorf("negative invoice total %.2f: %w", total, ErrValidation)
	}
	return round2(total / legacyTotalMultiplier), nil
}

// round2 rounds to 2 decimal places, half-up.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
