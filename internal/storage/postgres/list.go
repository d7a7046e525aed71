package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lista-app/lista/internal/domain/list"
)

const (
	insertItemSQL = `INSERT INTO active_items (name, quantity, unit_price, offer_rule)
		VALUES ($1, $2, $3, $4) RETURNING id`

	updateItemSQL = `UPDATE active_items
		SET name = $2, quantity = $3, unit_price = $4, offer_rule = $5
		WHERE id = $1`

	deleteItemSQL = `DELETE FROM active_items WHERE id = $1`

	listItemsSQL = `SELECT id, name, quantity, unit_price, offer_rule
		FROM active_items ORDER BY id`

	clearItemsSQL = `DELETE FROM active_items`
)

var _ list.Repository = (*ListRepository)(nil)

// ListRepository implements list.Repository backed by PostgreSQL.
type ListRepository struct {
	pool *pgxpool.Pool
}

// NewListRepository returns a ListRepository that uses the given pool.
func NewListRepository(pool *pgxpool.Pool) *ListRepository {
	return &ListRepository{pool: pool}
}

// Insert persists a new line item and returns its assigned id.
func (r *ListRepository) Insert(ctx context.Context, item *list.LineItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertItemSQL,
		item.Name, item.Quantity, item.UnitPrice, nullableRule(item.OfferRule),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting item %q: %w", item.Name, err)
	}
	return id, nil
}

// Update overwrites an existing line item. Returns list.ErrItemNotFound
// when no row matches the id.
func (r *ListRepository) Update(ctx context.Context, item *list.LineItem) error {
	tag, err := r.pool.Exec(ctx, updateItemSQL,
		item.ID, item.Name, item.Quantity, item.UnitPrice, nullableRule(item.OfferRule),
	)
	if err != nil {
		return fmt.Errorf("updating item %d: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return list.ErrItemNotFound
	}
	return nil
}

// Delete removes one line item. Returns list.ErrItemNotFound when no row
// matches the id.
func (r *ListRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return list.ErrItemNotFound
	}
	return nil
}

// List returns all active items ordered by id.
func (r *ListRepository) List(ctx context.Context) ([]list.LineItem, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanLineItem)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// Clear removes every active item. Clearing an empty table succeeds.
func (r *ListRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, clearItemsSQL); err != nil {
		return fmt.Errorf("clearing items: %w", err)
	}
	return nil
}

func scanLineItem(row pgx.CollectableRow) (list.LineItem, error) {
	var (
		item list.LineItem
		rule *string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.UnitPrice, &rule)
	item.OfferRule = ruleString(rule)
	return item, err
}
