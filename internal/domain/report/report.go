// Package report answers aggregate questions over the purchase archive.
// All queries are read-only; per-line amounts are always recomputed from
// the canonical pricing rule, never trusted from storage.
package report

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/pricing"
	"github.com/lista-app/lista/internal/domain/purchase"
)

// Summary aggregates the whole archive.
type Summary struct {
	TotalSpent         decimal.Decimal
	PurchaseCount      int64
	AveragePerPurchase decimal.Decimal
}

// PricedLineItem pairs a frozen line item with its recomputed subtotal.
type PricedLineItem struct {
	purchase.LineItem
	Subtotal decimal.Decimal
}

// PurchaseDetail is the full line-item breakdown of one purchase. For an
// unknown id it is empty, not an error.
type PurchaseDetail struct {
	PurchaseID int64
	Items      []PricedLineItem
	Total      decimal.Decimal
}

// Reporter runs aggregate queries over the archive.
type Reporter struct {
	archive purchase.Repository
}

// NewReporter creates a Reporter over the given archive.
func NewReporter(archive purchase.Repository) *Reporter {
	return &Reporter{archive: archive}
}

// TotalSpent returns the sum of all purchase totals, zero when the archive
// is empty.
func (r *Reporter) TotalSpent(ctx context.Context) (decimal.Decimal, error) {
	total, err := r.archive.TotalSpent(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "total spent")
	}
	return total, nil
}

// PurchaseCount returns the number of archived purchases.
func (r *Reporter) PurchaseCount(ctx context.Context) (int64, error) {
	n, err := r.archive.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "purchase count")
	}
	return n, nil
}

// Summary returns totals, count, and the average purchase size. The average
// is zero, not an error, when the archive is empty.
func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	total, err := r.TotalSpent(ctx)
	if err != nil {
		return nil, err
	}
	count, err := r.PurchaseCount(ctx)
	if err != nil {
		return nil, err
	}

	avg := decimal.Zero
	if count > 0 {
		avg = total.Div(decimal.NewFromInt(count)).Round(2)
	}

	return &Summary{
		TotalSpent:         total,
		PurchaseCount:      count,
		AveragePerPurchase: avg,
	}, nil
}

// SpendByStore returns per-store spend totals rounded to 2 decimal places.
// Map iteration order is irrelevant to callers.
func (r *Reporter) SpendByStore(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.archive.SpendByStore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "spend by store")
	}

	byStore := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byStore[row.Store] = row.Total.Round(2)
	}
	return byStore, nil
}

// Purchases lists archived purchases, newest first.
func (r *Reporter) Purchases(ctx context.Context) ([]purchase.Purchase, error) {
	purchases, err := r.archive.Purchases(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list purchases")
	}
	return purchases, nil
}

// PurchaseDetail returns the frozen line items of one purchase with every
// subtotal recomputed via the pricing rule, so historical detail reflects
// the canonical rule even after a rule fix.
func (r *Reporter) PurchaseDetail(ctx context.Context, purchaseID int64) (*PurchaseDetail, error) {
	items, err := r.archive.LineItems(ctx, purchaseID)
	if err != nil {
		return nil, errors.Wrap(err, "purchase line items")
	}

	detail := &PurchaseDetail{
		PurchaseID: purchaseID,
		Items:      make([]PricedLineItem, len(items)),
		Total:      decimal.Zero,
	}
	for i, it := range items {
		sub := pricing.Subtotal(it.Quantity, it.UnitPrice, it.OfferRule)
		detail.Items[i] = PricedLineItem{LineItem: it, Subtotal: sub}
		detail.Total = detail.Total.Add(sub)
	}
	return detail, nil
}
