package websocket

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment-portal/pkg/metrics"
)

// Hub управляет браузерными клиентами и рассылкой.
type Hub struct {
	clients     map[*Client]bool
	userClients map[string][]*Client
	broadcast   chan []byte
	Register    chan *Client
	unregister  chan *Client
	mu          sync.RWMutex
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		userClients: make(map[string][]*Client),
		broadcast:   make(chan []byte, 64),
		Register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger.Named("ws_hub"),
		metrics:     m,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
			h.mu.Unlock()
			h.metrics.WSClientDelta(1)
			h.logger.Debug("клиент зарегистрирован", zap.String("userID", client.UserID), zap.String("role", client.Role))
		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked вызывается под h.mu.Lock.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	clients := h.userClients[client.UserID]
	for i, c := range clients {
		if c == client {
			h.userClients[client.UserID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
	h.metrics.WSClientDelta(-1)
	h.logger.Debug("клиент отсоединён", zap.String("userID", client.UserID))
}

func encode(messageType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()})
}

// Broadcast отправляет сообщение всем подключённым клиентам.
func (h *Hub) Broadcast(messageType string, payload interface{}) error {
	msg, err := encode(messageType, payload)
	if err != nil {
		h.logger.Error("ошибка сериализации сообщения для WebSocket", zap.Error(err))
		return err
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("очередь рассылки переполнена, сообщение отброшено", zap.String("type", messageType))
	}
	return nil
}

// SendToUser отправляет сообщение всем вкладкам пользователя.
func (h *Hub) SendToUser(userID string, messageType string, payload interface{}) error {
	msg, err := encode(messageType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- msg:
		default:
			h.logger.Warn("буфер клиента переполнен", zap.String("userID", userID))
		}
	}
	return nil
}

func roleSet(roles []string) map[string]bool {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return allowed
}

func (h *Hub) sendMatching(messageType string, payload interface{}, match func(*Client) bool) error {
	msg, err := encode(messageType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.Send <- msg:
		default:
		}
	}
	return nil
}

// SendToRoles отправляет сообщение клиентам с одной из ролей.
func (h *Hub) SendToRoles(messageType string, payload interface{}, roles ...string) error {
	allowed := roleSet(roles)
	return h.sendMatching(messageType, payload, func(c *Client) bool { return allowed[c.Role] })
}

// SendToBranch отправляет сообщение клиентам филиала с одной из ролей.
func (h *Hub) SendToBranch(branchID, messageType string, payload interface{}, roles ...string) error {
	allowed := roleSet(roles)
	return h.sendMatching(messageType, payload, func(c *Client) bool {
		return c.BranchID == branchID && allowed[c.Role]
	})
}

// BranchesOf - филиалы подключённых клиентов с одной из ролей. Клиенты без филиала не учитываются.
func (h *Hub) BranchesOf(roles ...string) []string {
	allowed := roleSet(roles)
	seen := make(map[string]bool)
	var out []string
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.BranchID == "" || !allowed[client.Role] || seen[client.BranchID] {
			continue
		}
		seen[client.BranchID] = true
		out = append(out, client.BranchID)
	}
	sort.Strings(out)
	return out
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
