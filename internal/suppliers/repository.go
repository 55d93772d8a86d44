package suppliers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListUnits(ctx context.Context, businessID uuid.UUID) ([]Unit, error)
	UnitsByIDs(ctx context.Context, ids []uuid.UUID) ([]Unit, error)
	BranchesByIDs(ctx context.Context, ids []uuid.UUID) ([]Branch, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListUnits(ctx context.Context, businessID uuid.UUID) ([]Unit, error) {
	return r.queryUnits(ctx, `SELECT id, supplier_business_id, unit_name FROM supplier_unit WHERE supplier_business_id = $1 AND deleted = false ORDER BY unit_name`, businessID)
}

func (r *repository) UnitsByIDs(ctx context.Context, ids []uuid.UUID) ([]Unit, error) {
	return r.queryUnits(ctx, `SELECT id, supplier_business_id, unit_name FROM supplier_unit WHERE id = ANY($1) AND deleted = false`, ids)
}

func (r *repository) queryUnits(ctx context.Context, query string, arg any) ([]Unit, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.BusinessID, &u.Name); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *repository) BranchesByIDs(ctx context.Context, ids []uuid.UUID) ([]Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT id, branch_name FROM restaurant_branch WHERE id = ANY($1) AND deleted = false`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}
