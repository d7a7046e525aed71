package list

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/pricing"
)

// ItemParams carries user-supplied field values for add and update. The
// service normalizes them itself rather than trusting the caller.
type ItemParams struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	OfferRule string
}

// PricedItem pairs a line item with its recomputed subtotal.
type PricedItem struct {
	LineItem
	Subtotal decimal.Decimal
}

// Service implements the caller-facing contract of the active list:
// validation, quantity clamping, the duplicate-name advisory, and live
// subtotal previews.
type Service struct {
	repo Repository
}

// NewService creates a Service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// normalize trims and validates params in place. Quantity below 1 is
// clamped, not rejected.
func normalize(p *ItemParams) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.Quantity < 1 {
		p.Quantity = 1
	}
	p.OfferRule = strings.TrimSpace(p.OfferRule)
	return nil
}

// hasDuplicateName reports whether another item (id != exclude) already
// carries the same name, case-insensitively. Duplicates are permitted;
// the result is surfaced as a warning only.
func (s *Service) hasDuplicateName(ctx context.Context, name string, exclude int64) (bool, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return false, errors.Wrap(err, "list items")
	}
	for _, it := range items {
		if it.ID != exclude && strings.EqualFold(it.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// Add validates and persists a new line item. The returned bool reports the
// duplicate-name advisory.
func (s *Service) Add(ctx context.Context, p ItemParams) (*LineItem, bool, error) {
	if err := normalize(&p); err != nil {
		return nil, false, err
	}

	duplicate, err := s.hasDuplicateName(ctx, p.Name, 0)
	if err != nil {
		return nil, false, err
	}

	item := &LineItem{
		Name:      p.Name,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		OfferRule: p.OfferRule,
	}
	id, err := s.repo.Insert(ctx, item)
	if err != nil {
		return nil, false, errors.Wrap(err, "insert item")
	}
	item.ID = id

	return item, duplicate, nil
}

// Update validates and overwrites an existing line item.
func (s *Service) Update(ctx context.Context, id int64, p ItemParams) (*LineItem, bool, error) {
	if err := normalize(&p); err != nil {
		return nil, false, err
	}

	duplicate, err := s.hasDuplicateName(ctx, p.Name, id)
	if err != nil {
		return nil, false, err
	}

	item := &LineItem{
		ID:        id,
		Name:      p.Name,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		OfferRule: p.OfferRule,
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, false, ErrItemNotFound
		}
		return nil, false, errors.Wrap(err, "update item")
	}

	return item, duplicate, nil
}

// Remove deletes one line item.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		return errors.Wrap(err, "delete item")
	}
	return nil
}

// Items returns the current active list.
func (s *Service) Items(ctx context.Context) ([]LineItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	return items, nil
}

// Totals returns every item paired with its recomputed subtotal plus the
// running total. Subtotals are never read from storage.
func (s *Service) Totals(ctx context.Context) ([]PricedItem, decimal.Decimal, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "list items")
	}

	priced := make([]PricedItem, len(items))
	total := decimal.Zero
	for i, it := range items {
		sub := pricing.Subtotal(it.Quantity, it.UnitPrice, it.OfferRule)
		priced[i] = PricedItem{LineItem: it, Subtotal: sub}
		total = total.Add(sub)
	}
	return priced, total, nil
}

// Clear empties the active list. Clearing an empty list is a no-op.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear list")
	}
	return nil
}

// Preview computes the subtotal for not-yet-saved inputs. Pure: nothing is
// read or written.
func (s *Service) Preview(quantity int, unitPrice decimal.Decimal, rule string) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	return pricing.Subtotal(quantity, unitPrice, rule)
}
