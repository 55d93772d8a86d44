//go:build integration

package pricelists

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alima/supply/internal/platform/db"
)

func TestRepositoryVersioningAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.New(ctx, dsn, db.Options{})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool))

	unit := uuid.New()
	_, err = pool.Exec(ctx, `INSERT INTO supplier_unit (id, supplier_business_id, unit_name) VALUES ($1, $2, 'CEDIS')`, unit, uuid.New())
	require.NoError(t, err)

	repo := NewRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)
	appendAt := func(offset time.Duration, isDefault bool) PriceList {
		at := now.Add(offset)
		saved, err := repo.AppendVersion(ctx, PriceList{
			ID: uuid.New(), Name: "Mayoreo", SupplierUnitID: unit, IsDefault: isDefault,
			PriceIDs: []uuid.UUID{uuid.New()}, BranchIDs: []uuid.UUID{},
			ValidFrom: at, ValidUpto: at.AddDate(0, 0, 1), CreatedBy: uuid.New(), LastUpdated: at,
		})
		require.NoError(t, err)
		return saved
	}

	first := appendAt(0, true)
	require.Equal(t, int64(1), first.Version)
	second := appendAt(time.Second, true)
	require.Equal(t, int64(2), second.Version)

	latest, err := repo.FetchLatest(ctx, "Mayoreo", unit)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, second.PriceIDs, latest.PriceIDs)

	def, err := repo.FindDefault(ctx, unit)
	require.NoError(t, err)
	require.Equal(t, second.ID, def.ID)

	third := appendAt(2*time.Second, false)
	require.Equal(t, int64(3), third.Version)
	_, err = repo.FindDefault(ctx, unit)
	require.ErrorIs(t, err, ErrNotFound)

	history, err := repo.History(ctx, "Mayoreo", unit)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, []int64{3, 2, 1}, []int64{history[0].Version, history[1].Version, history[2].Version})

	current, err := repo.ListCurrent(ctx, unit)
	require.NoError(t, err)
	require.Len(t, current, 1)
	require.Equal(t, third.ID, current[0].ID)

	byID, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), byID.Version)

	var audits int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE entity = 'supplier_price_list' AND entity_id = ANY($1)`,
		[]string{first.ID.String(), second.ID.String(), third.ID.String()}).Scan(&audits))
	require.Equal(t, 3, audits)
}
