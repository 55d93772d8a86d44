package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "supplier_price_list_supplier_unit_id_name_version_key"}
	require.True(t, IsUniqueViolation(unique))
	require.True(t, IsUniqueViolation(fmt.Errorf("append version: %w", unique)))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("23505")))
	require.False(t, IsUniqueViolation(nil))
}

func TestSchemaCoversTables(t *testing.T) {
	for _, table := range []string{
		"sat_product_codes", "alima_products", "supplier_unit", "restaurant_branch",
		"supplier_product", "supplier_product_price", "supplier_price_list",
		"price_list_notifications", "audit_logs",
	} {
		require.True(t, strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	require.Contains(t, Schema, "UNIQUE (supplier_unit_id, name, version)")
}
