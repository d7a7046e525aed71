// Package checkout converts the mutable active list into an immutable
// archived purchase. It is the one place in the system with a transactional
// boundary: the archive write and the list clear either both happen or
// neither does.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/pricing"
	"github.com/lista-app/lista/internal/domain/purchase"
)

var (
	// ErrStoreRequired is returned when the store name is blank after trimming.
	ErrStoreRequired = errors.New("store name is required")
	// ErrEmptyList is returned when checking out with no active items.
	// A zero-item, zero-total purchase is rejected rather than archived.
	ErrEmptyList = errors.New("active list is empty")
)

// Invalidator drops a cached view. Caches are invalidated synchronously
// after a committed checkout, before control returns to the caller.
type Invalidator interface {
	Invalidate()
}

// Result reports a committed checkout.
type Result struct {
	PurchaseID int64
	Store      string
	Total      decimal.Decimal
	Items      int
}

// Service coordinates the checkout transition.
type Service struct {
	items   list.Repository
	archive purchase.Repository
	caches  []Invalidator
	now     func() time.Time
}

// NewService creates a checkout Service. Caches passed here are invalidated
// after every successful checkout.
func NewService(items list.Repository, archive purchase.Repository, caches ...Invalidator) *Service {
	return &Service{
		items:   items,
		archive: archive,
		caches:  caches,
		now:     time.Now,
	}
}

// Checkout snapshots the active list, prices it, archives it under the
// given store name dated today, and clears the list. On any failure the
// active list and the archive are left exactly as before the call.
func (s *Service) Checkout(ctx context.Context, storeName string) (*Result, error) {
	store := strings.TrimSpace(storeName)
	if store == "" {
		return nil, ErrStoreRequired
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot active list")
	}
	if len(items) == 0 {
		return nil, ErrEmptyList
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(pricing.Subtotal(it.Quantity, it.UnitPrice, it.OfferRule))
	}

	// Calendar date only; intra-day ordering falls back to purchase id.
	date := s.now().UTC().Truncate(24 * time.Hour)

	id, err := s.archive.Archive(ctx, store, date, total, items)
	if err != nil {
		return nil, errors.Wrap(err, "archive purchase")
	}

	for _, c := range s.caches {
		c.Invalidate()
	}

	return &Result{
		PurchaseID: id,
		Store:      store,
		Total:      total,
		Items:      len(items),
	}, nil
}
