package iot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/config"
)

func iotServer(t *testing.T, messages ...string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		for _, m := range messages {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(m)))
		}
		// держим соединение, пока клиент не закроет
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/iot"
}

func TestConsumer_ReceivesAlertsAndTelemetry(t *testing.T) {
	url := iotServer(t,
		`{"event":"telemetry","data":{"deviceId":"d1","equipmentId":5,"metric":"temp","value":71.5}}`,
		`{"event":"alert","data":{"equipmentId":5,"level":"critical","message":"motor overheating"}}`,
		`not json`,
	)
	c := NewConsumer(config.IoTConfig{URL: url, ReconnectAttempts: 1, ReconnectDelay: 10 * time.Millisecond}, zap.NewNop(), nil)

	var mu sync.Mutex
	var telemetry []entities.Telemetry
	c.OnTelemetry(func(t entities.Telemetry) {
		mu.Lock()
		telemetry = append(telemetry, t)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		alerts, err := c.RecentAlerts(ctx)
		return err == nil && len(alerts) == 1
	}, 2*time.Second, 10*time.Millisecond)

	alerts, _ := c.RecentAlerts(ctx)
	assert.Equal(t, entities.IoTLevelCritical, alerts[0].Level)
	assert.NotEmpty(t, alerts[0].ID)
	assert.False(t, alerts[0].Timestamp.IsZero())

	mu.Lock()
	require.Len(t, telemetry, 1)
	assert.Equal(t, 71.5, telemetry[0].Value)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestConsumer_RecentAlertsBounded(t *testing.T) {
	c := NewConsumer(config.IoTConfig{URL: "ws://unused", RecentAlertsLimit: 2}, zap.NewNop(), nil)
	for _, msg := range []string{"a", "b", "c"} {
		c.handleMessage([]byte(`{"event":"alert","data":{"level":"warning","message":"` + msg + `"}}`))
	}

	alerts, err := c.RecentAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "b", alerts[0].Message)
	assert.Equal(t, "c", alerts[1].Message)
}

func TestConsumer_GivesUp(t *testing.T) {
	c := NewConsumer(config.IoTConfig{URL: "ws://127.0.0.1:1/iot", ReconnectAttempts: 2, ReconnectDelay: time.Millisecond}, zap.NewNop(), nil)

	err := c.Run(context.Background())

	require.Error(t, err)
	_, err = c.RecentAlerts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestConsumer_NotConfigured(t *testing.T) {
	c := NewConsumer(config.IoTConfig{}, zap.NewNop(), nil)
	assert.ErrorIs(t, c.Run(context.Background()), ErrNotConfigured)
	_, err := c.RecentAlerts(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
