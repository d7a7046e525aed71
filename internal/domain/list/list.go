// Package list holds the active shopping list: the mutable set of line
// items being assembled before checkout.
package list

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validation errors reported to the caller without touching storage.
var (
	ErrNameRequired  = errors.New("item name is required")
	ErrNegativePrice = errors.New("unit price must not be negative")
	// ErrItemNotFound is returned by update/remove for an unknown item id.
	ErrItemNotFound = errors.New("item not found")
)

// LineItem is one entry of the active list.
type LineItem struct {
	ID        int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	// OfferRule is free promotional text ("2x1", "0.10", ...). Empty means
	// no offer. It is stored verbatim and interpreted by the pricing package.
	OfferRule string
}

// Repository defines persistence operations for the active list. The order
// of List results is storage-defined; callers must not depend on it.
type Repository interface {
	Insert(ctx context.Context, item *LineItem) (int64, error)
	Update(ctx context.Context, item *LineItem) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]LineItem, error)
	Clear(ctx context.Context) error
}
