package products

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alima/supply/internal/platform/db"
)

// ListFilters narrows ListByBusiness.
type ListFilters struct {
	Search   string
	IsActive *bool
	Limit    int
	Page     int
}

// Repository is the PostgreSQL store for supplier products.
type Repository interface {
	ListByBusiness(ctx context.Context, businessID uuid.UUID, filters ListFilters) ([]Product, int, error)
	GetMany(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	Store
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const selectProduct = `SELECT id, supplier_business_id, product_id, sku, COALESCE(upc, ''), description,
	COALESCE(long_description, ''), sell_unit, buy_unit, conversion_factor, unit_multiple, min_quantity,
	estimated_weight, max_daily_stock, tax_id, tax, ieps, COALESCE(tags, '[]'::jsonb), is_active,
	created_by, created_at, last_updated FROM supplier_product`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.BusinessID, &p.ProductID, &p.SKU, &p.UPC, &p.Description,
		&p.LongDescription, &p.SellUnit, &p.BuyUnit, &p.ConversionFactor, &p.UnitMultiple, &p.MinQuantity,
		&p.EstimatedWeight, &p.MaxDailyStock, &p.TaxCode, &p.TaxRate, &p.IEPSRate, &p.Tags, &p.IsActive,
		&p.CreatedBy, &p.CreatedAt, &p.LastUpdated)
	return p, err
}

func collect(rows pgx.Rows) ([]Product, error) {
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

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, filters ListFilters) ([]Product, int, error) {
	where := ` WHERE supplier_business_id = $1`
	args := []any{businessID}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (description ILIKE $` + n + ` OR sku ILIKE $` + n + `)`
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM supplier_product`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectProduct + where + ` ORDER BY description ASC`
	if filters.Limit > 0 {
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, filters.Limit, offset)
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collect(rows)
	return out, total, err
}

func (r *repository) GetMany(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]Product, error) {
	rows, err := r.db.Query(ctx, selectProduct+` WHERE supplier_business_id = $1 AND id = ANY($2)`, businessID, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	_, err := r.db.Exec(ctx, `INSERT INTO supplier_product (id, supplier_business_id, product_id, sku, upc, description,
		long_description, sell_unit, buy_unit, conversion_factor, unit_multiple, min_quantity, estimated_weight,
		max_daily_stock, tax_id, tax, ieps, tax_unit, tags, is_active, created_by, created_at, last_updated)
		VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,NULLIF($7,''),$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		p.ID, p.BusinessID, p.ProductID, p.SKU, p.UPC, p.Description,
		p.LongDescription, p.SellUnit, p.BuyUnit, p.ConversionFactor, p.UnitMultiple, p.MinQuantity, p.EstimatedWeight,
		p.MaxDailyStock, p.TaxCode, p.TaxRate, p.IEPSRate, p.TaxUnit(), tagsParam(p.Tags), p.IsActive, p.CreatedBy,
		p.CreatedAt, p.LastUpdated)
	if err != nil {
		return Product{}, mapWriteError(err)
	}
	return p, nil
}

// Update writes only the columns named by mask.
func (r *repository) Update(ctx context.Context, p Product, mask FieldMask) (Product, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	for _, c := range updateColumns {
		if mask.Has(c.field) {
			set(c.column, c.value(p))
		}
	}
	if mask.Has(FieldSellUnit) {
		set("tax_unit", p.TaxUnit())
	}
	set("last_updated", p.LastUpdated)
	args = append(args, p.ID, p.BusinessID)
	query := `UPDATE supplier_product SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)-1) + ` AND supplier_business_id = $` + strconv.Itoa(len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return Product{}, mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

var updateColumns = []struct {
	field  FieldMask
	column string
	value  func(Product) any
}{
	{FieldSKU, "sku", func(p Product) any { return p.SKU }},
	{FieldUPC, "upc", func(p Product) any { return p.UPC }},
	{FieldDescription, "description", func(p Product) any { return p.Description }},
	{FieldLongDescription, "long_description", func(p Product) any { return p.LongDescription }},
	{FieldSellUnit, "sell_unit", func(p Product) any { return p.SellUnit }},
	{FieldBuyUnit, "buy_unit", func(p Product) any { return p.BuyUnit }},
	{FieldConversionFactor, "conversion_factor", func(p Product) any { return p.ConversionFactor }},
	{FieldUnitMultiple, "unit_multiple", func(p Product) any { return p.UnitMultiple }},
	{FieldMinQuantity, "min_quantity", func(p Product) any { return p.MinQuantity }},
	{FieldEstimatedWeight, "estimated_weight", func(p Product) any { return p.EstimatedWeight }},
	{FieldMaxDailyStock, "max_daily_stock", func(p Product) any { return p.MaxDailyStock }},
	{FieldTaxCode, "tax_id", func(p Product) any { return p.TaxCode }},
	{FieldTaxRate, "tax", func(p Product) any { return p.TaxRate }},
	{FieldIEPSRate, "ieps", func(p Product) any { return p.IEPSRate }},
	{FieldTags, "tags", func(p Product) any { return tagsParam(p.Tags) }},
	{FieldProductID, "product_id", func(p Product) any { return p.ProductID }},
}

func tagsParam(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	return tags
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrSKUTaken
	}
	return err
}
