// Package iot читает namespace /iot и раздаёт телеметрию и тревоги датчиков.
package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"equipment-portal/internal/entities"
	"equipment-portal/pkg/config"
	"equipment-portal/pkg/metrics"
)

// Имена событий в конверте {event, data}.
const (
	EventTelemetry = "telemetry"
	EventAlert     = "alert"
)

var (
	ErrNotConfigured = errors.New("iot: адрес источника не настроен")
	ErrUnavailable   = errors.New("iot: нет соединения с источником")
)

type message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Consumer держит одно соединение и переподключается с паузой.
// Порядок и повтор пропущенных сообщений не гарантируются.
type Consumer struct {
	url      string
	attempts int
	delay    time.Duration
	limit    int
	dialer   *websocket.Dialer
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu          sync.RWMutex
	connected   bool
	gaveUp      bool
	recent      []entities.IoTAlert
	onTelemetry []func(entities.Telemetry)
	onAlert     []func(entities.IoTAlert)
}

func NewConsumer(cfg config.IoTConfig, logger *zap.Logger, m *metrics.Metrics) *Consumer {
	limit := cfg.RecentAlertsLimit
	if limit <= 0 {
		limit = 50
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}
	return &Consumer{
		url:      cfg.URL,
		attempts: cfg.ReconnectAttempts,
		delay:    delay,
		limit:    limit,
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:   logger.Named("iot"),
		metrics:  m,
	}
}

func (c *Consumer) OnTelemetry(fn func(entities.Telemetry)) {
	c.mu.Lock()
	c.onTelemetry = append(c.onTelemetry, fn)
	c.mu.Unlock()
}

func (c *Consumer) OnAlert(fn func(entities.IoTAlert)) {
	c.mu.Lock()
	c.onAlert = append(c.onAlert, fn)
	c.mu.Unlock()
}

// Run блокируется до отмены ctx или до исчерпания попыток подряд.
// attempts <= 0 - переподключаться бесконечно.
func (c *Consumer) Run(ctx context.Context) error {
	if c.url == "" {
		return ErrNotConfigured
	}

	failures := 0
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			failures = 0
		} else {
			failures++
			c.logger.Warn("соединение с IoT потеряно", zap.Int("failures", failures), zap.Error(err))
		}
		if c.attempts > 0 && failures >= c.attempts {
			c.mu.Lock()
			c.gaveUp = true
			c.mu.Unlock()
			return fmt.Errorf("iot: исчерпаны попытки подключения (%d): %w", c.attempts, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.delay):
		}
	}
}

// session возвращает nil, если соединение было установлено и потом закрылось.
func (c *Consumer) session(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения к %s: %w", c.url, err)
	}
	c.setConnected(true)
	c.logger.Info("подключено к IoT", zap.String("url", c.url))
	defer c.setConnected(false)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("чтение из IoT прервано", zap.Error(err))
			}
			return nil
		}
		c.handleMessage(raw)
	}
}

func (c *Consumer) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	if v {
		c.gaveUp = false
	}
	c.mu.Unlock()
}

func (c *Consumer) handleMessage(raw []byte) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Debug("не удалось разобрать сообщение IoT", zap.Error(err))
		return
	}
	c.metrics.IoTMessage(msg.Event)

	switch msg.Event {
	case EventTelemetry:
		var t entities.Telemetry
		if err := json.Unmarshal(msg.Data, &t); err != nil {
			c.logger.Debug("неверная телеметрия", zap.Error(err))
			return
		}
		if t.Timestamp.IsZero() {
			t.Timestamp = time.Now().UTC()
		}
		c.mu.RLock()
		handlers := append([]func(entities.Telemetry){}, c.onTelemetry...)
		c.mu.RUnlock()
		for _, fn := range handlers {
			fn(t)
		}
	case EventAlert:
		var a entities.IoTAlert
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			c.logger.Debug("неверная тревога IoT", zap.Error(err))
			return
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.Timestamp.IsZero() {
			a.Timestamp = time.Now().UTC()
		}
		c.remember(a)
		c.mu.RLock()
		handlers := append([]func(entities.IoTAlert){}, c.onAlert...)
		c.mu.RUnlock()
		for _, fn := range handlers {
			fn(a)
		}
	default:
		c.logger.Debug("неизвестное событие IoT", zap.String("event", msg.Event))
	}
}

func (c *Consumer) remember(a entities.IoTAlert) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recent = append(c.recent, a)
	if over := len(c.recent) - c.limit; over > 0 {
		c.recent = append([]entities.IoTAlert(nil), c.recent[over:]...)
	}
}

// RecentAlerts - последние тревоги. Ошибка, если источник не настроен или
// consumer прекратил попытки подключения.
func (c *Consumer) RecentAlerts(_ context.Context) ([]entities.IoTAlert, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.gaveUp {
		return nil, ErrUnavailable
	}
	return append([]entities.IoTAlert(nil), c.recent...), nil
}

func (c *Consumer) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
