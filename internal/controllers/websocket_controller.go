package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-portal/pkg/utils"
	appwebsocket "equipment-portal/pkg/websocket"
)

type WebSocketController struct {
	hub      *appwebsocket.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// allowedOrigins пуст - проверка Origin отключена (локальная разработка).
func NewWebSocketController(hub *appwebsocket.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &WebSocketController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeWs вызывается после auth-middleware: пользователь уже в контексте.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	principal, err := utils.GetPrincipalFromCtx(ctx.Request().Context())
	if err != nil {
		return ctx.String(http.StatusUnauthorized, "Unauthorized")
	}

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return nil
	}

	client := appwebsocket.NewClient(c.hub, conn, principal.UserID.String(), principal.Role, principal.BranchID.String())
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент успешно подключен",
		zap.String("userID", principal.UserID.String()),
		zap.String("role", principal.Role),
	)
	return nil
}
