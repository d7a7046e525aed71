package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/purchase"
)

const (
	insertPurchaseSQL = `INSERT INTO purchases (purchase_date, store, total)
		VALUES ($1, $2, $3) RETURNING id`

	insertPurchaseLineSQL = `INSERT INTO purchase_line_items
		(purchase_id, name, quantity, unit_price, offer_rule)
		VALUES ($1, $2, $3, $4, $5)`

	listPurchasesSQL = `SELECT id, purchase_date, store, total
		FROM purchases ORDER BY purchase_date DESC, id DESC`

	purchaseLinesSQL = `SELECT purchase_id, name, quantity, unit_price, offer_rule
		FROM purchase_line_items WHERE purchase_id = $1 ORDER BY id`

	totalSpentSQL = `SELECT COALESCE(SUM(total), 0) FROM purchases`

	countPurchasesSQL = `SELECT COUNT(*) FROM purchases`

	spendByStoreSQL = `SELECT store, SUM(total) FROM purchases GROUP BY store`
)

var _ purchase.Repository = (*PurchaseRepository)(nil)

// PurchaseRepository implements purchase.Repository backed by PostgreSQL.
// The archive tables are append-only: no update or delete statements exist
// here.
type PurchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository returns a PurchaseRepository that uses the given pool.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// Archive inserts the purchase and its frozen line items and clears the
// active list, all within one transaction. A failure at any step rolls the
// whole sequence back: no partial rows become visible and the active list
// keeps its pre-checkout state.
func (r *PurchaseRepository) Archive(
	ctx context.Context,
	store string,
	date time.Time,
	total decimal.Decimal,
	items []list.LineItem,
) (int64, error) {
	var purchaseID int64

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertPurchaseSQL, date, store, total).Scan(&purchaseID); err != nil {
			return fmt.Errorf("inserting purchase: %w", err)
		}

		for _, it := range items {
			_, err := tx.Exec(ctx, insertPurchaseLineSQL,
				purchaseID, it.Name, it.Quantity, it.UnitPrice, nullableRule(it.OfferRule),
			)
			if err != nil {
				return fmt.Errorf("inserting line item %q: %w", it.Name, err)
			}
		}

		if _, err := tx.Exec(ctx, clearItemsSQL); err != nil {
			return fmt.Errorf("clearing active list: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("archiving purchase for %q: %w", store, err)
	}

	return purchaseID, nil
}

// Import inserts an already-completed purchase and its line items without
// touching the active list. Used by the history import tool to backfill
// archives from exported data.
func (r *PurchaseRepository) Import(
	ctx context.Context,
	store string,
	date time.Time,
	total decimal.Decimal,
	items []purchase.LineItem,
) (int64, error) {
	var purchaseID int64

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertPurchaseSQL, date, store, total).Scan(&purchaseID); err != nil {
			return fmt.Errorf("inserting purchase: %w", err)
		}

		for _, it := range items {
			_, err := tx.Exec(ctx, insertPurchaseLineSQL,
				purchaseID, it.Name, it.Quantity, it.UnitPrice, nullableRule(it.OfferRule),
			)
			if err != nil {
				return fmt.Errorf("inserting line item %q: %w", it.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("importing purchase for %q: %w", store, err)
	}

	return purchaseID, nil
}

// Purchases returns all archived purchases, newest date first, ties broken
// by id descending.
func (r *PurchaseRepository) Purchases(ctx context.Context) ([]purchase.Purchase, error) {
	rows, err := r.pool.Query(ctx, listPurchasesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}

	purchases, err := pgx.CollectRows(rows, scanPurchase)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	return purchases, nil
}

// LineItems returns the frozen line items of one purchase. An unknown id
// yields an empty slice, not an error.
func (r *PurchaseRepository) LineItems(ctx context.Context, purchaseID int64) ([]purchase.LineItem, error) {
	rows, err := r.pool.Query(ctx, purchaseLinesSQL, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("listing line items for purchase %d: %w", purchaseID, err)
	}

	items, err := pgx.CollectRows(rows, scanPurchaseLine)
	if err != nil {
		return nil, fmt.Errorf("listing line items for purchase %d: %w", purchaseID, err)
	}
	return items, nil
}

// TotalSpent returns the sum of all purchase totals, zero for an empty archive.
func (r *PurchaseRepository) TotalSpent(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, totalSpentSQL).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing purchases: %w", err)
	}
	return total, nil
}

// Count returns the number of archived purchases.
func (r *PurchaseRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countPurchasesSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting purchases: %w", err)
	}
	return n, nil
}

// SpendByStore returns the per-store sum of purchase totals.
func (r *PurchaseRepository) SpendByStore(ctx context.Context) ([]purchase.StoreTotal, error) {
	rows, err := r.pool.Query(ctx, spendByStoreSQL)
	if err != nil {
		return nil, fmt.Errorf("summing per store: %w", err)
	}

	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (purchase.StoreTotal, error) {
		var st purchase.StoreTotal
		err := row.Scan(&st.Store, &st.Total)
		return st, err
	})
	if err != nil {
		return nil, fmt.Errorf("summing per store: %w", err)
	}
	return totals, nil
}

func scanPurchase(row pgx.CollectableRow) (purchase.Purchase, error) {
	var p purchase.Purchase
	err := row.Scan(&p.ID, &p.Date, &p.Store, &p.Total)
	return p, err
}

func scanPurchaseLine(row pgx.CollectableRow) (purchase.LineItem, error) {
	var (
		it   purchase.LineItem
		rule *string
	)
	err := row.Scan(&it.PurchaseID, &it.Name, &it.Quantity, &it.UnitPrice, &rule)
	it.OfferRule = ruleString(rule)
	return it, err
}
