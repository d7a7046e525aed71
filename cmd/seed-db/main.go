// Command seed-db loads a demo shopping list and a small purchase history
// into the database, mainly for local development and manual testing.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lista-app/lista/internal/domain/list"
	"github.com/lista-app/lista/internal/domain/pricing"
	"github.com/lista-app/lista/internal/domain/purchase"
	"github.com/lista-app/lista/internal/storage/postgres"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedActiveList(ctx, postgres.NewListRepository(pool)); err != nil {
		return errors.Wrap(err, "seed active list")
	}

	if err := seedHistory(ctx, postgres.NewPurchaseRepository(pool)); err != nil {
		return errors.Wrap(err, "seed purchase history")
	}

	return nil
}

func seedActiveList(ctx context.Context, repo *postgres.ListRepository) error {
	items := []list.LineItem{
		{Name: "milk", Quantity: 2, UnitPrice: decimal.NewFromFloat(25.50), OfferRule: "2x1"},
		{Name: "bread", Quantity: 1, UnitPrice: decimal.NewFromFloat(18.00)},
		{Name: "rice", Quantity: 3, UnitPrice: decimal.NewFromFloat(32.00), OfferRule: "0.10"},
		{Name: "eggs", Quantity: 1, UnitPrice: decimal.NewFromFloat(42.90)},
	}

	slog.Info("seeding active list", slog.Int("count", len(items)))

	for i := range items {
		id, err := repo.Insert(ctx, &items[i])
		if err != nil {
			return errors.Wrapf(err, "insert item %q", items[i].Name)
		}
		slog.Info("inserted item", slog.Int64("id", id), slog.String("name", items[i].Name))
	}

	return nil
}

func seedHistory(ctx context.Context, repo *postgres.PurchaseRepository) error {
	lines := []purchase.LineItem{
		{Name: "coffee", Quantity: 1, UnitPrice: decimal.NewFromFloat(89.00)},
		{Name: "sugar", Quantity: 2, UnitPrice: decimal.NewFromFloat(15.50), OfferRule: "2x1"},
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(pricing.Subtotal(l.Quantity, l.UnitPrice, l.OfferRule))
	}

	date := time.Now().UTC().AddDate(0, 0, -7).Truncate(24 * time.Hour)

	slog.Info("seeding purchase history",
		slog.String("store", "corner market"),
		slog.String("total", total.StringFixed(2)),
	)

	id, err := repo.Import(ctx, "corner market", date, total, lines)
	if err != nil {
		return errors.Wrap(err, "import purchase")
	}

	slog.Info("imported purchase", slog.Int64("id", id))
	return nil
}
