package pricelists

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLatestQueryRanksByVersionThenLastUpdated(t *testing.T) {
	require.Contains(t, latestQuery, "PARTITION BY name, supplier_unit_id ORDER BY version DESC, last_updated DESC")
	require.True(t, strings.HasSuffix(latestQuery, "WHERE rn = 1"))
	require.Contains(t, latestQuery, "WHERE supplier_unit_id = $1")
}

func TestFindDefaultFiltersCurrentVersions(t *testing.T) {
	require.True(t, strings.HasPrefix(findDefaultQuery, latestQuery))
	rest := strings.TrimPrefix(findDefaultQuery, latestQuery)
	require.True(t, strings.HasPrefix(rest, " AND is_default"), rest)
}

func TestAppendVersionQueryComputesNextVersion(t *testing.T) {
	require.Contains(t, appendVersionQuery, "COALESCE(MAX(version), 0) + 1")
	require.Contains(t, appendVersionQuery, "WHERE name = $2 AND supplier_unit_id = $3")
	require.Contains(t, appendVersionQuery, "RETURNING version")

	columns := strings.Count(listColumns, ",") + 1
	query := strings.Replace(appendVersionQuery, "COALESCE(MAX(version), 0) + 1", "next", 1)
	selectList := query[strings.Index(query, "SELECT")+len("SELECT") : strings.Index(query, "FROM")]
	require.Equal(t, columns, strings.Count(selectList, ",")+1)
}
