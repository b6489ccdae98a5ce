package pricing

import "github.com/gobuddy-app/gobuddy-backend/internal/models"

// FeeRate is the delivery-fee pricing for one errand category: a flat base
// plus an add-on per item beyond the first.
type FeeRate struct {
	Base  float64 `json:"base"`
	AddOn float64 `json:"add_on"`
}

// FeeTable maps errand categories to their delivery-fee rates. Categories
// missing from the table price at zero.
type FeeTable map[string]FeeRate

// DefaultFeeTable returns the standard category rates.
func DefaultFeeTable() FeeTable {
	return FeeTable{
		models.CategoryDeliverItems:    {Base: 20, AddOn: 5},
		models.CategoryFoodDelivery:    {Base: 15, AddOn: 5},
		models.CategorySchoolMaterials: {Base: 10, AddOn: 5},
		models.CategoryPrinting:        {Base: 5, AddOn: 2},
	}
}

// DeliveryFee computes base + addOn x max(totalQuantity-1, 0) for the
// category. Unknown categories fall back to a zero rate.
func (t FeeTable) DeliveryFee(category string, totalQuantity int) float64 {
	rate := t[category]
	extras := totalQuantity - 1
	if extras < 0 {
		extras = 0
	}
	return rate.Base + rate.AddOn*float64(extras)
}
