package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilterFromQuery(t *testing.T) {
	values, _ := url.ParseQuery("search=bike&sort[name]=ASC&sort[id]=sideways&filter[status]=active&filter[branchId]=1&filter[branchId]=2&limit=1000&page=3")

	f := ParseFilterFromQuery(values)

	assert.Equal(t, "bike", f.Search)
	assert.Equal(t, map[string]string{"name": "asc"}, f.Sort, "недопустимое направление сортировки должно отбрасываться")
	assert.Equal(t, "active", f.Filter["status"])
	assert.Equal(t, "1,2", f.Filter["branchId"])
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.True(t, f.WithPagination)
}

func TestParseFilterFromQuery_Defaults(t *testing.T) {
	f := ParseFilterFromQuery(url.Values{})

	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset)
	assert.Empty(t, f.Filter)
}

func TestFilterToQuery_RoundTrip(t *testing.T) {
	values, _ := url.ParseQuery("search=rack&sort[createdAt]=desc&filter[type]=cardio&limit=5&page=2")

	q := FilterToQuery(ParseFilterFromQuery(values))

	assert.Equal(t, "rack", q.Get("search"))
	assert.Equal(t, "desc", q.Get("sort[createdAt]"))
	assert.Equal(t, "cardio", q.Get("filter[type]"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, "2", q.Get("page"))
}
