// Package purchase holds the append-only archive of completed checkouts.
// Purchases and their line items are frozen at archive time and never
// mutated or deleted afterwards.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
)

// Purchase is one archived checkout.
type Purchase struct {
	ID    int64
	Date  time.Time
	Store string
	Total decimal.Decimal
}

// LineItem is a frozen copy of an active item at archive time. Its subtotal
// is never stored; it is recomputed from the offer rule at read time.
type LineItem struct {
	PurchaseID int64
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	OfferRule  string
}

// StoreTotal is one row of the per-store spend breakdown.
type StoreTotal struct {
	Store string
	Total decimal.Decimal
}

// Repository defines the archive's persistence operations. Archive is the
// only write; it also clears the active list within the same transaction so
// checkout is all-or-nothing.
type Repository interface {
	Archive(ctx context.Context, store string, date time.Time, total decimal.Decimal, items []list.LineItem) (int64, error)
	Purchases(ctx context.Context) ([]Purchase, error)
	// LineItems returns an empty slice, not an error, for an unknown id.
	LineItems(ctx context.Context, purchaseID int64) ([]LineItem, error)
	TotalSpent(ctx context.Context) (decimal.Decimal, error)
	Count(ctx context.Context) (int64, error)
	SpendByStore(ctx context.Context) ([]StoreTotal, error)
}
