package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/pkg/contextkeys"
	"equipment-portal/pkg/metrics"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := metrics.New(prometheus.NewRegistry())
	return New(srv.URL+"/api", 5*time.Second, zap.NewNop(), WithMetrics(m)), m
}

func TestClient_Get_EnvelopeWithPagination(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/equipment", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("filter[status]"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":1,"name":"Treadmill"}],"pagination":{"total":21,"page":1,"limit":10}}`)
	})

	var out []item
	ctx := WithToken(context.Background(), "tok-1")
	pg, err := c.Get(ctx, "/equipment", url.Values{"filter[status]": {"active"}}, &out)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Treadmill", out[0].Name)
	require.NotNil(t, pg)
	assert.Equal(t, uint64(21), pg.TotalCount)
	assert.Equal(t, 3, pg.TotalPages)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("equipment", "GET", "200")))
}

func TestClient_Get_BareBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":5,"name":"Rower"}`)
	})

	var out item
	_, err := c.Get(context.Background(), "/equipment/5", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, item{ID: 5, Name: "Rower"}, out)
}

func TestClient_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Token expired"}`)
	})

	_, err := c.Get(context.Background(), "/equipment", nil, &[]item{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	status, ok := StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestClient_ForwardsBackendMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"success":false,"message":"Equipment already disposed"}`)
	})

	err := c.Post(context.Background(), "/equipment/3/dispose", map[string]string{"reason": "broken frame beyond repair"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Equipment already disposed", apiErr.Message)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_SuccessFalseOn200(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"nope"}`)
	})

	var out item
	_, err := c.Get(context.Background(), "/equipment/1", nil, &out)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestClient_PostSendsJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bench", body["name"])
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":9,"name":"Bench"}}`)
	})

	var out item
	err := c.Post(context.Background(), "/equipment", map[string]string{"name": "Bench"}, &out)

	require.NoError(t, err)
	assert.Equal(t, 9, out.ID)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/equipment/a%2Fb/dispose", Path("equipment", "a/b", "dispose"))
	assert.Equal(t, "equipment", resourceLabel("/equipment/12/status"))
	assert.Equal(t, "root", resourceLabel("/"))
}

func TestClient_ForwardsRequestID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"id":1}`)
	})

	ctx := context.WithValue(context.Background(), contextkeys.RequestIDKey, "req-42")
	_, err := c.Get(ctx, "/equipment/1", nil, &item{})
	require.NoError(t, err)
}
