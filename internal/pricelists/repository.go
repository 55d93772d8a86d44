package pricelists

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alima/supply/internal/platform/db"
	"github.com/alima/supply/internal/shared"
)

// Store is the versioning store behind Service. Versions are appended,
// never updated.
type Store interface {
	FetchLatest(ctx context.Context, name string, unitID uuid.UUID) (PriceList, error)
	AppendVersion(ctx context.Context, list PriceList) (PriceList, error)
	GetByID(ctx context.Context, id uuid.UUID) (PriceList, error)
	FindDefault(ctx context.Context, unitID uuid.UUID) (PriceList, error)
	ListCurrent(ctx context.Context, unitID uuid.UUID) ([]PriceList, error)
	History(ctx context.Context, name string, unitID uuid.UUID) ([]PriceList, error)
	CreatePrice(ctx context.Context, price Price) (Price, error)
	GetPrices(ctx context.Context, ids []uuid.UUID) ([]Price, error)
}

// Repository is the PostgreSQL Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listColumns = `id, name, supplier_unit_id, version, is_default, supplier_product_price_ids,
	supplier_restaurant_ids, valid_from, valid_upto, created_by, created_at, last_updated`

// latestQuery ranks versions inside each (name, supplier_unit_id) partition.
const latestQuery = `SELECT ` + listColumns + ` FROM (
	SELECT ` + listColumns + `, row_number() OVER (
		PARTITION BY name, supplier_unit_id ORDER BY version DESC, last_updated DESC
	) AS rn FROM supplier_price_list WHERE supplier_unit_id = $1
) ranked WHERE rn = 1`

func scanList(row pgx.Row) (PriceList, error) {
	var l PriceList
	err := row.Scan(&l.ID, &l.Name, &l.SupplierUnitID, &l.Version, &l.IsDefault, &l.PriceIDs,
		&l.BranchIDs, &l.ValidFrom, &l.ValidUpto, &l.CreatedBy, &l.CreatedAt, &l.LastUpdated)
	return l, err
}

func collectLists(rows pgx.Rows) ([]PriceList, error) {
	defer rows.Close()
	var out []PriceList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// appendVersionQuery numbers the new row one past the key's highest version.
const appendVersionQuery = `INSERT INTO supplier_price_list (` + listColumns + `)
	SELECT $1, $2, $3, COALESCE(MAX(version), 0) + 1, $4, $5, $6, $7, $8, $9, $10, $10
	FROM supplier_price_list WHERE name = $2 AND supplier_unit_id = $3
	RETURNING version`

// findDefaultQuery filters after ranking: a list whose current version
// dropped the default flag is not the default.
const findDefaultQuery = latestQuery + ` AND is_default ORDER BY last_updated DESC LIMIT 1`

// FetchLatest returns the current version of (name, unitID).
func (r *Repository) FetchLatest(ctx context.Context, name string, unitID uuid.UUID) (PriceList, error) {
	l, err := scanList(r.pool.QueryRow(ctx, latestQuery+` AND name = $2`, unitID, name))
	return l, notFound(err)
}

// AppendVersion inserts list as the next version of its (name, unit) key
// and records an audit entry in the same transaction. The version is
// computed by the INSERT; a concurrent append for the same key fails on
// the unique (supplier_unit_id, name, version) index.
func (r *Repository) AppendVersion(ctx context.Context, list PriceList) (PriceList, error) {
	err := db.WithTx(ctx, r.pool, func(q db.Querier) error {
		err := q.QueryRow(ctx, appendVersionQuery,
			list.ID, list.Name, list.SupplierUnitID, list.IsDefault, list.PriceIDs, list.BranchIDs,
			list.ValidFrom, list.ValidUpto, list.CreatedBy, list.LastUpdated,
		).Scan(&list.Version)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrVersionConflict
			}
			return err
		}
		return shared.RecordAudit(ctx, q, shared.AuditLog{
			ActorID:  list.CreatedBy,
			Action:   "pricelist.version_appended",
			Entity:   "supplier_price_list",
			EntityID: list.ID.String(),
			Meta: map[string]any{
				"name":             list.Name,
				"supplier_unit_id": list.SupplierUnitID,
				"version":          list.Version,
				"prices":           len(list.PriceIDs),
				"is_default":       list.IsDefault,
			},
			At: list.LastUpdated,
		})
	})
	if err != nil {
		return PriceList{}, err
	}
	list.CreatedAt = list.LastUpdated
	return list, nil
}

// GetByID returns the version with id, current or not.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (PriceList, error) {
	l, err := scanList(r.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM supplier_price_list WHERE id = $1`, id))
	return l, notFound(err)
}

// FindDefault returns the current version of the unit's default list.
func (r *Repository) FindDefault(ctx context.Context, unitID uuid.UUID) (PriceList, error) {
	l, err := scanList(r.pool.QueryRow(ctx, findDefaultQuery, unitID))
	return l, notFound(err)
}

// ListCurrent returns the current version of every list of the unit.
func (r *Repository) ListCurrent(ctx context.Context, unitID uuid.UUID) ([]PriceList, error) {
	rows, err := r.pool.Query(ctx, latestQuery+` ORDER BY name`, unitID)
	if err != nil {
		return nil, err
	}
	return collectLists(rows)
}

// History returns every version of (name, unitID), newest first.
func (r *Repository) History(ctx context.Context, name string, unitID uuid.UUID) ([]PriceList, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+listColumns+` FROM supplier_price_list
		WHERE name = $1 AND supplier_unit_id = $2 ORDER BY version DESC, last_updated DESC`, name, unitID)
	if err != nil {
		return nil, err
	}
	return collectLists(rows)
}

// CreatePrice inserts an immutable price record.
func (r *Repository) CreatePrice(ctx context.Context, p Price) (Price, error) {
	if !p.ValidUpto.After(p.ValidFrom) {
		return Price{}, ErrInvalidWindow
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO supplier_product_price (id, supplier_product_id, price, currency,
		valid_from, valid_upto, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SupplierProductID, p.Price, p.Currency, p.ValidFrom, p.ValidUpto, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return Price{}, err
	}
	return p, nil
}

// GetPrices returns the price records with the given ids.
func (r *Repository) GetPrices(ctx context.Context, ids []uuid.UUID) ([]Price, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, supplier_product_id, price, currency, valid_from, valid_upto,
		created_by, created_at FROM supplier_product_price WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Price
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.ID, &p.SupplierProductID, &p.Price, &p.Currency, &p.ValidFrom, &p.ValidUpto,
			&p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ Store = (*Repository)(nil)
