package cache

import (
	"context"

	"github.com/lista-app/lista/internal/domain/list"
)

var _ list.Repository = (*ListRepository)(nil)

// ListRepository decorates a list.Repository with a cached List. Mutations
// pass through and invalidate the snapshot before returning.
type ListRepository struct {
	inner    list.Repository
	snapshot Snapshot[[]list.LineItem]
}

// NewListRepository wraps inner with a read-through cache.
func NewListRepository(inner list.Repository) *ListRepository {
	return &ListRepository{inner: inner}
}

// Invalidate drops the cached snapshot. Exposed for the checkout
// coordinator, whose list clear happens inside the archive transaction and
// therefore bypasses this decorator.
func (r *ListRepository) Invalidate() {
	r.snapshot.Invalidate()
}

func (r *ListRepository) List(ctx context.Context) ([]list.LineItem, error) {
	return r.snapshot.Load(ctx, r.inner.List)
}

func (r *ListRepository) Insert(ctx context.Context, item *list.LineItem) (int64, error) {
	id, err := r.inner.Insert(ctx, item)
	if err == nil {
		r.snapshot.Invalidate()
	}
	return id, err
}

func (r *ListRepository) Update(ctx context.Context, item *list.LineItem) error {
	err := r.inner.Update(ctx, item)
	if err == nil {
		r.snapshot.Invalidate()
	}
	return err
}

func (r *ListRepository) Delete(ctx context.Context, id int64) error {
	err := r.inner.Delete(ctx, id)
	if err == nil {
		r.snapshot.Invalidate()
	}
	return err
}

func (r *ListRepository) Clear(ctx context.Context) error {
	err := r.inner.Clear(ctx)
	if err == nil {
		r.snapshot.Invalidate()
	}
	return err
}
