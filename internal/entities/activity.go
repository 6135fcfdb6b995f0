package entities

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
)

// ActivityEntry - запись журнала действий, который ведёт сам шлюз.
type ActivityEntry struct {
	ID         int64           `json:"id"`
	ActorID    string          `json:"actorId"`
	ActorRole  string          `json:"actorRole"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ArchiveKey null.String     `json:"archiveKey"`
	CreatedAt  time.Time       `json:"createdAt"`
}
