package refcatalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alima/supply/internal/shared"
)

// ErrNotFound indicates the canonical product does not exist.
var ErrNotFound = shared.ErrNotFound

const selectProduct = `SELECT id, sku, COALESCE(upc, ''), description, COALESCE(long_description, ''),
	sell_unit, buy_unit, conversion_factor, unit_multiple, min_quantity, estimated_weight,
	tax_code, tax_rate, ieps_rate FROM alima_products`

// Repository provides PostgreSQL backed access to the canonical catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListAll returns every active canonical product.
func (r *Repository) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, selectProduct+` WHERE is_active ORDER BY description`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns a canonical product by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.UPC, &p.Description, &p.LongDescription,
		&p.SellUnit, &p.BuyUnit, &p.ConversionFactor, &p.UnitMultiple, &p.MinQuantity, &p.EstimatedWeight,
		&p.TaxCode, &p.TaxRate, &p.IEPSRate)
	return p, err
}
