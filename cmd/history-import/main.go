// Command history-import backfills the purchase archive from gzipped JSONL
// export files. Each line is one purchase record:
//
//	{"store":"corner market","date":"2026-03-14","items":[
//	  {"name":"milk","quantity":2,"unit_price":"25.50","offer_rule":"2x1"}]}
//
// Files are processed concurrently, one goroutine per file. Records with a
// missing store or no items are skipped and counted, not fatal. Line totals
// are recomputed from quantity, price, and offer rule, never trusted from
// the export.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lista-app/lista/internal/domain/pricing"
	"github.com/lista-app/lista/internal/domain/purchase"
	"github.com/lista-app/lista/internal/storage/postgres"
)

const (
	dateLayout    = "2006-01-02"
	progressEvery = 1000
)

type lineJSON struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	OfferRule string          `json:"offer_rule"`
}

type recordJSON struct {
	Store string     `json:"store"`
	Date  string     `json:"date"`
	Items []lineJSON `json:"items"`
}

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

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("no input files: pass one or more .jsonl.gz export files")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("history import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("history import completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewPurchaseRepository(pool)

	var imported, skipped atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(importFile(ctx, repo, f, &imported, &skipped))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Int64("imported", imported.Load()),
		slog.Int64("skipped", skipped.Load()),
	)
	return nil
}

func importFile(
	ctx context.Context,
	repo *postgres.PurchaseRepository,
	path string,
	imported, skipped *atomic.Int64,
) func() error {
	return func() error {
		var count int64

		err := streamGzLines(ctx, path, func(line []byte) error {
			var rec recordJSON
			if err := json.Unmarshal(line, &rec); err != nil {
				slog.Warn("skipping malformed record",
					slog.String("file", path),
					slog.String("error", err.Error()),
				)
				skipped.Add(1)
				return nil
			}

			if rec.Store == "" || len(rec.Items) == 0 {
				skipped.Add(1)
				return nil
			}

			date, err := time.Parse(dateLayout, rec.Date)
			if err != nil {
				slog.Warn("skipping record with bad date",
					slog.String("file", path),
					slog.String("date", rec.Date),
				)
				skipped.Add(1)
				return nil
			}

			lines := make([]purchase.LineItem, 0, len(rec.Items))
			total := decimal.Zero
			for _, it := range rec.Items {
				qty := it.Quantity
				if qty < 1 {
					qty = 1
				}
				total = total.Add(pricing.Subtotal(qty, it.UnitPrice, it.OfferRule))
				lines = append(lines, purchase.LineItem{
					Name:      it.Name,
					Quantity:  qty,
					UnitPrice: it.UnitPrice,
					OfferRule: it.OfferRule,
				})
			}

			if _, err := repo.Import(ctx, rec.Store, date, total, lines); err != nil {
				return errors.Wrapf(err, "import purchase from %s", path)
			}

			imported.Add(1)
			if count++; count%progressEvery == 0 {
				slog.Info("import progress",
					slog.String("file", path),
					slog.Int64("records", count),
				)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import %s", path)
		}

		slog.Info("file complete", slog.String("file", path), slog.Int64("records", count))
		return nil
	}
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
