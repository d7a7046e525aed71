package cache

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/purchase"
)

var _ purchase.Repository = (*PurchaseRepository)(nil)

// PurchaseRepository decorates a purchase.Repository with a cached
// Purchases listing. The archive is append-only, so the snapshot only goes
// stale on Archive, which invalidates it before returning. Aggregate reads
// stay uncached; they are single SQL statements.
type PurchaseRepository struct {
	inner    purchase.Repository
	snapshot Snapshot[[]purchase.Purchase]
}

// NewPurchaseRepository wraps inner with a read-through cache.
func NewPurchaseRepository(inner purchase.Repository) *PurchaseRepository {
	return &PurchaseRepository{inner: inner}
}

// Invalidate drops the cached purchases snapshot.
func (r *PurchaseRepository) Invalidate() {
	r.snapshot.Invalidate()
}

func (r *PurchaseRepository) Purchases(ctx context.Context) ([]purchase.Purchase, error) {
	return r.snapshot.Load(ctx, r.inner.Purchases)
}

func (r *PurchaseRepository) Archive(ctx context.Context, store string, date time.Time, total decimal.Decimal, items []list.LineItem) (int64, error) {
	id, err := r.inner.Archive(ctx, store, date, total, items)
	if err == nil {
		r.snapshot.Invalidate()
	}
	return id, err
}

func (r *PurchaseRepository) LineItems(ctx context.Context, purchaseID int64) ([]purchase.LineItem, error) {
	return r.inner.LineItems(ctx, purchaseID)
}

func (r *PurchaseRepository) TotalSpent(ctx context.Context) (decimal.Decimal, error) {
	return r.inner.TotalSpent(ctx)
}

func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	return r.inner.Count(ctx)
}

func (r *PurchaseRepository) SpendByStore(ctx context.Context) ([]purchase.StoreTotal, error) {
	return r.inner.SpendByStore(ctx)
}
