package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/internal/services"
	"equipment-portal/pkg/apiclient"
	"equipment-portal/pkg/types"
)

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	var runs atomic.Int32
	s := New(zap.NewNop())
	s.Add(Job{Name: "count", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	s.Add(Job{Name: "disabled", Run: func(context.Context) error { return errors.New("never") }})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
	s.Stop()
}

type sentFeed struct {
	branchID string
	roles    []string
	feed     *entities.AlertFeed
}

type fakeHub struct {
	mu       sync.Mutex
	clients  int
	branches []string
	sent     []sentFeed
}

func (h *fakeHub) SendToRoles(_ string, payload interface{}, roles ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentFeed{roles: roles, feed: payload.(*entities.AlertFeed)})
	return nil
}

func (h *fakeHub) SendToBranch(branchID, _ string, payload interface{}, roles ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, sentFeed{branchID: branchID, roles: roles, feed: payload.(*entities.AlertFeed)})
	return nil
}

func (h *fakeHub) BranchesOf(...string) []string { return h.branches }

func (h *fakeHub) ClientCount() int { return h.clients }

type tokenCheckingAlerts struct {
	token string
}

func (a *tokenCheckingAlerts) GetAlerts(ctx context.Context, _ services.AlertFilter) (*entities.AlertFeed, error) {
	a.token = apiclient.TokenFromContext(ctx)
	return &entities.AlertFeed{Alerts: []entities.Alert{
		{ID: "overdue-eq-1", BranchID: "10", Severity: entities.SeverityHigh},
		{ID: "inactive-eq-4", BranchID: "20", Severity: entities.SeverityLow},
	}}, nil
}

func ids(feed *entities.AlertFeed) []string {
	out := make([]string, 0, len(feed.Alerts))
	for _, a := range feed.Alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestAlertWatcherJob(t *testing.T) {
	alerts := &tokenCheckingAlerts{}
	hub := &fakeHub{}

	disabled := AlertWatcherJob(alerts, hub, "", time.Minute, zap.NewNop())
	assert.Nil(t, disabled.Run)

	job := AlertWatcherJob(alerts, hub, "svc-token", time.Minute, zap.NewNop())
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, hub.sent, "no clients, nothing to broadcast")
	assert.Empty(t, alerts.token)

	hub.clients = 2
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, "svc-token", alerts.token)
	require.Len(t, hub.sent, 1)
	assert.Equal(t, []string{"admin"}, hub.sent[0].roles)
}

func TestAlertWatcherJob_BranchScoped(t *testing.T) {
	alerts := &tokenCheckingAlerts{}
	hub := &fakeHub{clients: 3, branches: []string{"10", "30"}}

	job := AlertWatcherJob(alerts, hub, "svc-token", time.Minute, zap.NewNop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, hub.sent, 3)
	assert.Equal(t, []string{"admin"}, hub.sent[0].roles)
	assert.Equal(t, []string{"overdue-eq-1", "inactive-eq-4"}, ids(hub.sent[0].feed))

	assert.Equal(t, "10", hub.sent[1].branchID)
	assert.ElementsMatch(t, []string{"manager", "receptionist"}, hub.sent[1].roles)
	assert.Equal(t, []string{"overdue-eq-1"}, ids(hub.sent[1].feed))
	assert.Equal(t, 1, hub.sent[1].feed.BySeverity[entities.SeverityHigh])

	assert.Equal(t, "30", hub.sent[2].branchID)
	assert.Empty(t, hub.sent[2].feed.Alerts, "other branches' alerts never leak")
}

type fakeActivity struct{ retention time.Duration }

func (f *fakeActivity) Record(context.Context, entities.ActivityEntry) error { return nil }

func (f *fakeActivity) List(context.Context, types.Filter) ([]entities.ActivityEntry, *types.Pagination, error) {
	return nil, nil, nil
}

func (f *fakeActivity) Prune(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return 0, nil
}

func TestActivityPruneJob(t *testing.T) {
	activity := &fakeActivity{}

	assert.Zero(t, ActivityPruneJob(activity, 0).Interval)

	job := ActivityPruneJob(activity, 72*time.Hour)
	assert.Equal(t, 24*time.Hour, job.Interval)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 72*time.Hour, activity.retention)
}
