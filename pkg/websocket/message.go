package websocket

import "time"

// Типы сообщений, которые получает браузер.
const (
	TypeAlerts       = "alerts"
	TypeTelemetry    = "telemetry"
	TypeIoTAlert     = "iot_alert"
	TypeNotification = "notification"
)

// Envelope - конверт для всех сообщений: по Type фронтенд понимает, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NotificationPayload - уведомление о действии над оборудованием.
type NotificationPayload struct {
	EventID    string    `json:"eventId"`
	Event      string    `json:"event"`
	Message    string    `json:"message"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Link       string    `json:"link,omitempty"`
	ActorName  string    `json:"actorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
