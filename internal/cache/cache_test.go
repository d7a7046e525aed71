package cache

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lista-app/lista/internal/domain/list"
)

// --- Mock implementations ---

type countingListRepo struct {
	items     []list.LineItem
	listCalls int
	listErr   error
}

func (m *countingListRepo) Insert(_ context.Context, item *list.LineItem) (int64, error) {
	m.items = append(m.items, *item)
	return int64(len(m.items)), nil
}

func (m *countingListRepo) Update(_ context.Context, _ *list.LineItem) error { return nil }
func (m *countingListRepo) Delete(_ context.Context, _ int64) error          { return nil }

func (m *countingListRepo) List(_ context.Context) ([]list.LineItem, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.items, nil
}

func (m *countingListRepo) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

// --- Tests ---

func TestSnapshot_LoadOnce(t *testing.T) {
	var s Snapshot[int]
	calls := 0
	fill := func(_ context.Context) (int, error) {
		calls++
		return 7, nil
	}

	for range 3 {
		v, err := s.Load(context.Background(), fill)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.Equal(t, 1, calls)
}

func TestSnapshot_FillErrorLeavesEmpty(t *testing.T) {
	var s Snapshot[int]
	boom := errors.New("db down")

	_, err := s.Load(context.Background(), func(_ context.Context) (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)

	v, err := s.Load(context.Background(), func(_ context.Context) (int, error) { return 9, nil })
	require.NoError(t, err, "a failed fill must not poison the cache")
	assert.Equal(t, 9, v)
}

func TestSnapshot_Invalidate(t *testing.T) {
	var s Snapshot[int]
	calls := 0
	fill := func(_ context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := s.Load(context.Background(), fill)
	assert.Equal(t, 1, v)

	s.Invalidate()

	v, _ = s.Load(context.Background(), fill)
	assert.Equal(t, 2, v)
}

func TestListRepository_MutationsInvalidate(t *testing.T) {
	inner := &countingListRepo{}
	repo := NewListRepository(inner)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.listCalls, "second read is served from the snapshot")

	price := decimal.RequireFromString("1.00")
	_, err = repo.Insert(ctx, &list.LineItem{Name: "Rice", Quantity: 1, UnitPrice: price})
	require.NoError(t, err)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.listCalls, "insert invalidated the snapshot")
	assert.Len(t, items, 1)

	require.NoError(t, repo.Clear(ctx))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListRepository_ExternalInvalidate(t *testing.T) {
	inner := &countingListRepo{}
	repo := NewListRepository(inner)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)

	// Checkout clears the table inside its own transaction, outside this
	// decorator, then calls Invalidate.
	repo.Invalidate()

	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.listCalls)
}
