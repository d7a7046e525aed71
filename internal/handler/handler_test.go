package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lista-app/lista/internal/domain/checkout"
	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/purchase"
	"github.com/lista-app/lista/internal/domain/report"
)

// --- Mock implementations ---

// memoryStore backs both the active list and the archive in memory, with
// the same all-or-nothing Archive the postgres substrate provides.
type memoryStore struct {
	items      []list.LineItem
	nextItemID int64

	purchases  []purchase.Purchase
	lines      map[int64][]purchase.LineItem
	nextPurID  int64
	archiveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{lines: make(map[int64][]purchase.LineItem)}
}

func (m *memoryStore) Insert(_ context.Context, item *list.LineItem) (int64, error) {
	m.nextItemID++
	it := *item
	it.ID = m.nextItemID
	m.items = append(m.items, it)
	return m.nextItemID, nil
}

func (m *memoryStore) Update(_ context.Context, item *list.LineItem) error {
	for i := range m.items {
		if m.items[i].ID == item.ID {
			m.items[i] = *item
			return nil
		}
	}
	return list.ErrItemNotFound
}

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return list.ErrItemNotFound
}

func (m *memoryStore) List(_ context.Context) ([]list.LineItem, error) {
	out := make([]list.LineItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memoryStore) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

func (m *memoryStore) Archive(_ context.Context, store string, date time.Time, total decimal.Decimal, items []list.LineItem) (int64, error) {
	if m.archiveErr != nil {
		return 0, m.archiveErr
	}
	m.nextPurID++
	id := m.nextPurID
	m.purchases = append(m.purchases, purchase.Purchase{ID: id, Date: date, Store: store, Total: total})
	for _, it := range items {
		m.lines[id] = append(m.lines[id], purchase.LineItem{
			PurchaseID: id,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			OfferRule:  it.OfferRule,
		})
	}
	m.items = nil
	return id, nil
}

func (m *memoryStore) Purchases(_ context.Context) ([]purchase.Purchase, error) {
	return m.purchases, nil
}

func (m *memoryStore) LineItems(_ context.Context, purchaseID int64) ([]purchase.LineItem, error) {
	return m.lines[purchaseID], nil
}

func (m *memoryStore) TotalSpent(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.purchases {
		total = total.Add(p.Total)
	}
	return total, nil
}

func (m *memoryStore) Count(_ context.Context) (int64, error) {
	return int64(len(m.purchases)), nil
}

func (m *memoryStore) SpendByStore(_ context.Context) ([]purchase.StoreTotal, error) {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, p := range m.purchases {
		if _, ok := sums[p.Store]; !ok {
			order = append(order, p.Store)
		}
		sums[p.Store] = sums[p.Store].Add(p.Total)
	}
	rows := make([]purchase.StoreTotal, 0, len(order))
	for _, s := range order {
		rows = append(rows, purchase.StoreTotal{Store: s, Total: sums[s]})
	}
	return rows, nil
}

// --- Helpers ---

func newTestHandler(store *memoryStore) http.Handler {
	listSvc := list.NewService(store)
	checkoutSvc := checkout.NewService(store, store)
	reporter := report.NewReporter(store)
	return NewHandler(listSvc, checkoutSvc, reporter).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// --- Tests ---

func TestAddItemAndGetList(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/items",
		`{"name":"Rice","quantity":5,"unitPrice":10.00,"offerRule":"2x1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	saved := decode[itemSavedResponse](t, w)
	assert.Equal(t, int64(1), saved.Item.ID)
	assert.InDelta(t, 30.00, saved.Item.Subtotal, 1e-9)
	assert.False(t, saved.DuplicateName)

	w = doJSON(t, h, http.MethodPost, "/list/items",
		`{"name":"Milk","quantity":"2","unitPrice":"3.50"}`)
	require.Equal(t, http.StatusCreated, w.Code, "numeric text is accepted")

	w = doJSON(t, h, http.MethodGet, "/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[listResponse](t, w)
	require.Len(t, got.Items, 2)
	assert.InDelta(t, 37.00, got.Total, 1e-9)
}

func TestAddItem_Validation(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/items", `{"name":"  ","quantity":1,"unitPrice":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":1,"unitPrice":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":"many","unitPrice":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItem_DuplicateNameWarning(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Milk","quantity":1,"unitPrice":3.50}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/list/items", `{"name":"milk","quantity":1,"unitPrice":3.50}`)
	require.Equal(t, http.StatusCreated, w.Code, "duplicates are saved; the warning is advisory")
	saved := decode[itemSavedResponse](t, w)
	assert.True(t, saved.DuplicateName)
}

func TestUpdateItem_NotFound(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPut, "/list/items/42", `{"name":"Rice","quantity":1,"unitPrice":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveItem(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":1,"unitPrice":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/list/items/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/list/items/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearList_Idempotent(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodDelete, "/list", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, h, http.MethodDelete, "/list", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestPreview(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/preview", `{"quantity":5,"unitPrice":"10.00","offerRule":"2x1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[previewResponse](t, w)
	assert.InDelta(t, 30.00, got.Subtotal, 1e-9)
}

func TestCheckoutFlow(t *testing.T) {
	store := newMemoryStore()
	h := newTestHandler(store)

	w := doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":5,"unitPrice":10.00,"offerRule":"2x1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Milk","quantity":2,"unitPrice":3.50}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/checkout", `{"store":"MarketA"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[checkoutResponse](t, w)
	assert.Equal(t, "MarketA", res.Store)
	assert.InDelta(t, 37.00, res.Total, 1e-9)
	assert.Equal(t, 2, res.Items)

	// Active list is empty afterwards.
	w = doJSON(t, h, http.MethodGet, "/list", "")
	got := decode[listResponse](t, w)
	assert.Empty(t, got.Items)

	// Detail recomputes the archived total.
	w = doJSON(t, h, http.MethodGet, "/purchases/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[purchaseDetailResponse](t, w)
	require.Len(t, detail.Items, 2)
	assert.InDelta(t, 37.00, detail.Total, 1e-9)
}

func TestCheckout_EmptyList(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/checkout", `{"store":"MarketA"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckout_BlankStore(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":1,"unitPrice":1}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodPost, "/checkout", `{"store":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/list", "")
	got := decode[listResponse](t, w)
	assert.Len(t, got.Items, 1, "failed checkout leaves the list untouched")
}

func TestPurchaseDetail_Unknown(t *testing.T) {
	h := newTestHandler(newMemoryStore())

	w := doJSON(t, h, http.MethodGet, "/purchases/404", "")
	require.Equal(t, http.StatusOK, w.Code, "unknown ids degrade to an empty detail")
	detail := decode[purchaseDetailResponse](t, w)
	assert.Empty(t, detail.Items)
}

func TestReports(t *testing.T) {
	store := newMemoryStore()
	h := newTestHandler(store)

	w := doJSON(t, h, http.MethodGet, "/reports/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	empty := decode[summaryResponse](t, w)
	assert.Zero(t, empty.PurchaseCount)
	assert.Zero(t, empty.AveragePerPurchase, "no purchases averages to zero")

	doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Rice","quantity":1,"unitPrice":30}`)
	doJSON(t, h, http.MethodPost, "/checkout", `{"store":"MarketA"}`)
	doJSON(t, h, http.MethodPost, "/list/items", `{"name":"Milk","quantity":1,"unitPrice":10}`)
	doJSON(t, h, http.MethodPost, "/checkout", `{"store":"MarketB"}`)

	w = doJSON(t, h, http.MethodGet, "/reports/summary", "")
	s := decode[summaryResponse](t, w)
	assert.InDelta(t, 40.00, s.TotalSpent, 1e-9)
	assert.Equal(t, int64(2), s.PurchaseCount)
	assert.InDelta(t, 20.00, s.AveragePerPurchase, 1e-9)

	w = doJSON(t, h, http.MethodGet, "/reports/by-store", "")
	byStore := decode[map[string]float64](t, w)
	assert.InDelta(t, 30.00, byStore["MarketA"], 1e-9)
	assert.InDelta(t, 10.00, byStore["MarketB"], 1e-9)
}
