// Package pricing evaluates promotional offer rules into line subtotals.
//
// An offer rule is free text attached to a line item. It is interpreted as
// either the "2x1" bundle tag or a fractional discount rate ("0.10" = 10%
// off). Anything else degrades to no discount: malformed promo text must
// never block a save or surface as an error.
//
// The same evaluation serves the live preview, the checkout total, and the
// recomputation of historical subtotals, so estimates and archived totals
// can never diverge for the same inputs.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OfferKind discriminates the parsed form of an offer rule.
type OfferKind int

const (
	// OfferNone applies no discount. Empty and unparsable rules map here.
	OfferNone OfferKind = iota
	// OfferTwoForOne pays for every second unit; an odd unit is paid in full.
	OfferTwoForOne
	// OfferRate applies a fractional discount rate to the whole line.
	OfferRate
)

// twoForOneTag is the literal rule text for the bundle offer.
const twoForOneTag = "2x1"

var (
	one = decimal.NewFromInt(1)
	two = decimal.NewFromInt(2)
)

// Offer is the deterministic parse result of an offer rule.
type Offer struct {
	Kind OfferKind
	// Rate is the fractional discount, set only for OfferRate. It is taken
	// as parsed: values outside [0, 1] produce inflated or negative
	// subtotals on purpose (store credit, markup).
	Rate decimal.Decimal
}

// ParseOffer interprets raw rule text. Surrounding whitespace is ignored.
// Unparsable text maps to OfferNone, never an error.
func ParseOffer(raw string) Offer {
	rule := strings.TrimSpace(raw)
	if rule == "" {
		return Offer{Kind: OfferNone}
	}
	if rule == twoForOneTag {
		return Offer{Kind: OfferTwoForOne}
	}
	rate, err := decimal.NewFromString(rule)
	if err != nil {
		return Offer{Kind: OfferNone}
	}
	return Offer{Kind: OfferRate, Rate: rate}
}

// Subtotal computes the discounted amount for one line, rounded to
// 2 decimal places.
func Subtotal(quantity int, unitPrice decimal.Decimal, rule string) decimal.Decimal {
	return ParseOffer(rule).Subtotal(quantity, unitPrice)
}

// Subtotal applies the offer to quantity units at unitPrice each.
func (o Offer) Subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	qty := decimal.NewFromInt(int64(quantity))

	var amount decimal.Decimal
	switch o.Kind {
	case OfferTwoForOne:
		// Pay ceil(quantity/2) units.
		paid := qty.Div(two).Ceil()
		amount = paid.Mul(unitPrice)
	case OfferRate:
		amount = qty.Mul(unitPrice).Mul(one.Sub(o.Rate))
	default:
		amount = qty.Mul(unitPrice)
	}
	return amount.Round(2)
}
