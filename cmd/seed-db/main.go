// Command seed-db loads demo sellers, catalogs, and discounts from a JSON
// fixture. It is idempotent: sellers, categories, and products are upserted
// by their natural keys, and each seller's discounts are replaced wholesale.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/postgres"
)

type sellerJSON struct {
	Name       string         `json:"name"`
	StoreSlug  string         `json:"storeSlug"`
	Categories []categoryJSON `json:"categories"`
	Discounts  []discountJSON `json:"discounts"`
}

type categoryJSON struct {
	Name     string        `json:"name"`
	Image    string        `json:"image"`
	Products []productJSON `json:"products"`
}

type productJSON struct {
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	Image        string           `json:"image"`
	PricePerKg   *decimal.Decimal `json:"pricePerKg"`
	PricePerUnit *decimal.Decimal `json:"pricePerUnit"`
	UnitLabel    string           `json:"unitLabel"`
	IsAvailable  *bool            `json:"isAvailable"`
}

type discountJSON struct {
	ProductSlug string          `json:"productSlug"`
	Category    string          `json:"category"`
	Percentage  decimal.Decimal `json:"percentage"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
}

func main() {
	var (
		databaseURL string
		fixture     string
	)
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&fixture, "fixture", "db/seed/demo.json", "path to seed fixture JSON")
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

	if err := run(ctx, databaseURL, fixture); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func run(ctx context.Context, databaseURL, fixture string) error {
	raw, err := os.ReadFile(fixture)
	if err != nil {
		return errors.Wrap(err, "read fixture")
	}
	var sellers []sellerJSON
	if err := json.Unmarshal(raw, &sellers); err != nil {
		return errors.Wrap(err, "parse fixture")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return err
	}

	for _, s := range sellers {
		if err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			return seedSeller(ctx, tx, s)
		}); err != nil {
			return errors.Wrapf(err, "seed seller %q", s.StoreSlug)
		}
		slog.Info("seeded seller", slog.String("storeSlug", s.StoreSlug))
	}
	return nil
}

func seedSeller(ctx context.Context, tx pgx.Tx, s sellerJSON) error {
	var sellerID int64
	err := tx.QueryRow(ctx,
		`INSERT INTO sellers (name, store_slug) VALUES ($1, $2)
		 ON CONFLICT (store_slug) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		s.Name, s.StoreSlug,
	).Scan(&sellerID)
	if err != nil {
		return errors.Wrap(err, "upsert seller")
	}

	categoryIDs := make(map[string]int64, len(s.Categories))
	productIDs := make(map[string]int64)

	for _, c := range s.Categories {
		var categoryID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO categories (seller_id, name, image) VALUES ($1, $2, NULLIF($3, ''))
			 ON CONFLICT (seller_id, name) DO UPDATE SET image = EXCLUDED.image
			 RETURNING id`,
			sellerID, c.Name, c.Image,
		).Scan(&categoryID)
		if err != nil {
			return errors.Wrapf(err, "upsert category %q", c.Name)
		}
		categoryIDs[c.Name] = categoryID

		for _, p := range c.Products {
			available := true
			if p.IsAvailable != nil {
				available = *p.IsAvailable
			}
			var productID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO products (seller_id, category_id, name, slug, description, image,
					price_per_kg, price_per_unit, unit_label, is_available)
				 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10)
				 ON CONFLICT (seller_id, slug) DO UPDATE SET
					category_id = EXCLUDED.category_id,
					name = EXCLUDED.name,
					description = EXCLUDED.description,
					image = EXCLUDED.image,
					price_per_kg = EXCLUDED.price_per_kg,
					price_per_unit = EXCLUDED.price_per_unit,
					unit_label = EXCLUDED.unit_label,
					is_available = EXCLUDED.is_available
				 RETURNING id`,
				sellerID, categoryID, p.Name, p.Slug, p.Description, p.Image,
				p.PricePerKg, p.PricePerUnit, p.UnitLabel, available,
			).Scan(&productID)
			if err != nil {
				return errors.Wrapf(err, "upsert product %q", p.Slug)
			}
			productIDs[p.Slug] = productID
		}
	}

	// Discounts have no natural key; replace the seller's set.
	if _, err := tx.Exec(ctx,
		`DELETE FROM order_discounts WHERE discount_id IN (SELECT id FROM discounts WHERE seller_id = $1)`,
		sellerID,
	); err != nil {
		return errors.Wrap(err, "clear order discount links")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM discounts WHERE seller_id = $1`, sellerID); err != nil {
		return errors.Wrap(err, "clear discounts")
	}

	for _, d := range s.Discounts {
		start, err := time.Parse("2006-01-02", d.StartDate)
		if err != nil {
			return errors.Wrapf(err, "discount startDate %q", d.StartDate)
		}
		end, err := time.Parse("2006-01-02", d.EndDate)
		if err != nil {
			return errors.Wrapf(err, "discount endDate %q", d.EndDate)
		}

		var (
			productID  *int64
			categoryID *int64
		)
		switch {
		case d.ProductSlug != "":
			id, ok := productIDs[d.ProductSlug]
			if !ok {
				return errors.Errorf("discount references unknown product %q", d.ProductSlug)
			}
			productID = &id
		case d.Category != "":
			id, ok := categoryIDs[d.Category]
			if !ok {
				return errors.Errorf("discount references unknown category %q", d.Category)
			}
			categoryID = &id
		default:
			return errors.New("discount must reference a product or a category")
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO discounts (seller_id, product_id, category_id, percentage, start_date, end_date)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sellerID, productID, categoryID, d.Percentage, start, end,
		); err != nil {
			return errors.Wrap(err, "insert discount")
		}
	}
	return nil
}
