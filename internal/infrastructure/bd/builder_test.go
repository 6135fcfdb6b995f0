package db

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-portal/pkg/types"
)

var testMap = map[string]string{
	"action":    "a.action",
	"entityId":  "a.entity_id",
	"createdAt": "a.created_at",
}

func TestApplyListParams(t *testing.T) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := psql.Select("a.id").From("activity_log a")

	b = ApplyListParams(b, types.Filter{
		Filter:         map[string]string{"action": "created,updated", "entityId": "7", "password": "x"},
		Sort:           map[string]string{"createdAt": "desc", "unknown": "asc"},
		Limit:          10,
		Offset:         20,
		WithPagination: true,
	}, testMap)

	query, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT a.id FROM activity_log a WHERE a.action IN ($1,$2) AND a.entity_id = $3 ORDER BY a.created_at DESC LIMIT 10 OFFSET 20",
		query)
	assert.Equal(t, []interface{}{"created", "updated", "7"}, args)
}

func TestApplyListParams_NoPagination(t *testing.T) {
	b := ApplyListParams(sq.Select("COUNT(*)").From("activity_log a"), types.Filter{Limit: 10, Offset: 5}, testMap)

	query, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM activity_log a", query)
}
