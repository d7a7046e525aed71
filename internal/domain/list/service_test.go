package list

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	items     []LineItem
	nextID    int64
	insertErr error
	listErr   error
	clearCnt  int
}

func (m *mockRepo) Insert(_ context.Context, item *LineItem) (int64, error) {
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.nextID++
	it := *item
	it.ID = m.nextID
	m.items = append(m.items, it)
	return m.nextID, nil
}

func (m *mockRepo) Update(_ context.Context, item *LineItem) error {
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = *item
			return nil
		}
	}
	return ErrItemNotFound
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (m *mockRepo) List(_ context.Context) ([]LineItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]LineItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockRepo) Clear(_ context.Context) error {
	m.clearCnt++
	m.items = nil
	return nil
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func params(name string, qty int, price, rule string) ItemParams {
	return ItemParams{Name: name, Quantity: qty, UnitPrice: d(price), OfferRule: rule}
}

// --- Tests ---

func TestAdd(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	item, dup, err := svc.Add(context.Background(), params("  Rice ", 5, "10.00", " 2x1 "))
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, int64(1), item.ID)
	assert.Equal(t, "Rice", item.Name)
	assert.Equal(t, "2x1", item.OfferRule)
	assert.Len(t, repo.items, 1)
}

func TestAdd_BlankName(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, _, err := svc.Add(context.Background(), params("   ", 1, "1.00", ""))
	require.ErrorIs(t, err, ErrNameRequired)
	assert.Empty(t, repo.items, "validation failure must not persist")
}

func TestAdd_NegativePrice(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, _, err := svc.Add(context.Background(), params("Rice", 1, "-0.01", ""))
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestAdd_QuantityClamped(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	item, _, err := svc.Add(context.Background(), params("Rice", 0, "10.00", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestAdd_DuplicateNameIsAdvisory(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, dup, err := svc.Add(context.Background(), params("Milk", 1, "3.50", ""))
	require.NoError(t, err)
	assert.False(t, dup)

	_, dup, err = svc.Add(context.Background(), params("milk", 2, "3.50", ""))
	require.NoError(t, err, "duplicate names are structurally permitted")
	assert.True(t, dup)
	assert.Len(t, repo.items, 2)
}

func TestUpdate(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	item, _, err := svc.Add(context.Background(), params("Rice", 5, "10.00", "2x1"))
	require.NoError(t, err)

	updated, dup, err := svc.Update(context.Background(), item.ID, params("Rice", 3, "9.00", ""))
	require.NoError(t, err)
	assert.False(t, dup, "an item does not collide with itself")
	assert.Equal(t, 3, updated.Quantity)
	assert.True(t, d("9.00").Equal(repo.items[0].UnitPrice))
}

func TestUpdate_UnknownID(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, _, err := svc.Update(context.Background(), 42, params("Rice", 1, "1.00", ""))
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemove_UnknownID(t *testing.T) {
	svc := NewService(&mockRepo{})

	err := svc.Remove(context.Background(), 42)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestTotals(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	_, _, err := svc.Add(context.Background(), params("Rice", 5, "10.00", "2x1"))
	require.NoError(t, err)
	_, _, err = svc.Add(context.Background(), params("Milk", 2, "3.50", ""))
	require.NoError(t, err)

	priced, total, err := svc.Totals(context.Background())
	require.NoError(t, err)
	require.Len(t, priced, 2)
	assert.True(t, d("30.00").Equal(priced[0].Subtotal))
	assert.True(t, d("7.00").Equal(priced[1].Subtotal))
	assert.True(t, d("37.00").Equal(total))
}

func TestClear_Idempotent(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	_, _, err := svc.Add(context.Background(), params("Rice", 1, "1.00", ""))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background()))
	require.NoError(t, svc.Clear(context.Background()), "clearing an empty list is a no-op")

	items, err := svc.Items(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 2, repo.clearCnt)
}

func TestPreview(t *testing.T) {
	svc := NewService(&mockRepo{})

	assert.True(t, d("30.00").Equal(svc.Preview(5, d("10.00"), "2x1")))
	assert.True(t, d("10.00").Equal(svc.Preview(0, d("10.00"), "")), "preview clamps quantity like save does")
}

func TestAdd_RepoError(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("db down")}
	svc := NewService(repo)

	_, _, err := svc.Add(context.Background(), params("Rice", 1, "1.00", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert item")
}
