package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VAT rate applied to every cosmetics line (KDV %20).
var vatRate = decimal.NewFromFloat(0.20)

var one = decimal.NewFromInt(1)

// Item is a priced cart line. Prices are VAT-exclusive; DiscountPrice is the
// effective selling price.
type Item struct {
	ProductID     uuid.UUID
	Name          string
	Brand         string
	ImageURL      *string
	SalePrice     decimal.Decimal
	DiscountPrice decimal.Decimal
	Quantity      int
}

// Totals is the full pricing breakdown of a cart. All amounts are exact; call
// Rounded before presenting them.
type Totals struct {
	TotalItems           int
	TotalPriceWithoutVAT decimal.Decimal
	MemberDiscountAmount decimal.Decimal
	VATAmount            decimal.Decimal
	TotalPrice           decimal.Decimal
	FinalTotal           decimal.Decimal
}

// ComputeTotals derives the cart totals from scratch. It is pure and
// idempotent: recomputing over the same lines yields the same breakdown.
//
//	TotalPriceWithoutVAT = Σ DiscountPrice × Quantity
//	MemberDiscountAmount = TotalPriceWithoutVAT × pct/100
//	VATAmount            = (TotalPriceWithoutVAT − MemberDiscountAmount) × 0.20
//	TotalPrice           = TotalPriceWithoutVAT × 1.20
//	FinalTotal           = (TotalPriceWithoutVAT − MemberDiscountAmount) × 1.20
func ComputeTotals(items []Item, memberDiscountPercent int) Totals {
	pct := clampPercent(memberDiscountPercent)

	totals := Totals{
		TotalPriceWithoutVAT: decimal.Zero,
		MemberDiscountAmount: decimal.Zero,
		VATAmount:            decimal.Zero,
		TotalPrice:           decimal.Zero,
		FinalTotal:           decimal.Zero,
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		price := SanitizePrice(item.DiscountPrice)
		totals.TotalItems += item.Quantity
		totals.TotalPriceWithoutVAT = totals.TotalPriceWithoutVAT.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	totals.MemberDiscountAmount = totals.TotalPriceWithoutVAT.Mul(pct).Div(decimal.NewFromInt(100))
	discounted := totals.TotalPriceWithoutVAT.Sub(totals.MemberDiscountAmount)
	totals.VATAmount = discounted.Mul(vatRate)
	totals.TotalPrice = totals.TotalPriceWithoutVAT.Mul(one.Add(vatRate))
	totals.FinalTotal = discounted.Mul(one.Add(vatRate))

	return totals
}

// Rounded returns the breakdown with every amount rounded to two decimal
// places for presentation.
func (t Totals) Rounded() Totals {
	return Totals{
		TotalItems:           t.TotalItems,
		TotalPriceWithoutVAT: t.TotalPriceWithoutVAT.Round(2),
		MemberDiscountAmount: t.MemberDiscountAmount.Round(2),
		VATAmount:            t.VATAmount.Round(2),
		TotalPrice:           t.TotalPrice.Round(2),
		FinalTotal:           t.FinalTotal.Round(2),
	}
}

// LineSubtotal is the VAT-exclusive subtotal of a single line.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return SanitizePrice(price).Mul(decimal.NewFromInt(int64(quantity)))
}

// SanitizePrice coerces dirty price input (negative or unparseable upstream
// data mapped to zero) into a usable amount.
func SanitizePrice(price decimal.Decimal) decimal.Decimal {
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func clampPercent(pct int) decimal.Decimal {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return decimal.NewFromInt(int64(pct))
}
