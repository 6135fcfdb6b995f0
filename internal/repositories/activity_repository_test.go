package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-portal/pkg/types"
)

func TestBuildActivitySelect(t *testing.T) {
	filter := types.Filter{
		Filter:         map[string]string{"entityType": "equipment", "from": "2024-06-01", "to": "2024-06-30", "secret": "x"},
		Limit:          20,
		Offset:         40,
		WithPagination: true,
	}

	query, args, err := buildActivitySelect(filter).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT a.id, a.actor_id, a.actor_role, a.action, a.entity_type, a.entity_id, a.payload, a.archive_key, a.created_at "+
			"FROM activity_log AS a WHERE a.created_at >= $1 AND a.created_at < $2 AND a.entity_type = $3 "+
			"ORDER BY a.created_at DESC, a.id DESC LIMIT 20 OFFSET 40",
		query)
	require.Len(t, args, 3)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), args[0])
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), args[1])
	assert.Equal(t, "equipment", args[2])
}

func TestBuildActivityCount_IgnoresPaginationAndSort(t *testing.T) {
	filter := types.Filter{
		Search:         "dispose",
		Filter:         map[string]string{"action": "disposed"},
		Sort:           map[string]string{"createdAt": "asc"},
		Limit:          20,
		WithPagination: true,
	}

	query, args, err := buildActivityCount(filter).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(a.id) FROM activity_log AS a WHERE (a.action ILIKE $1 OR a.entity_type ILIKE $2 OR a.payload::text ILIKE $3) AND a.action = $4",
		query)
	assert.Len(t, args, 4)
}

func TestBuildActivitySelect_BadDateIgnored(t *testing.T) {
	query, args, err := buildActivitySelect(types.Filter{Filter: map[string]string{"from": "yesterday"}}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}
