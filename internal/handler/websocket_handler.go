// internal/handler/websocket_handler.go
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"printer-bridge/internal/model"
	"printer-bridge/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// EventSource delivers published status events
type EventSource interface {
	Subscribe(names ...model.EventName) (<-chan model.PrinterEvent, func())
}

// ListenerRegistry counts listeners
type ListenerRegistry interface {
	Register() int64
	Remove(n int) int64
}

// WebSocketHandler streams status events. Every open socket counts as one
// registered listener for its lifetime.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	events      EventSource
	listeners   ListenerRegistry
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler. An empty
// allowedOrigins accepts every origin.
func NewWebSocketHandler(events EventSource, listeners ListenerRegistry, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
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
		connections: NewConnectionManager(),
		events:      events,
		listeners:   listeners,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

// Connections returns the connection manager
func (h *WebSocketHandler) Connections() *ConnectionManager {
	return h.connections
}

// HandleEventConnection upgrades the request and streams the events named in
// ?events=a,b, or every event when the filter is empty
func (h *WebSocketHandler) HandleEventConnection(c *gin.Context) {
	names, err := parseEventNames(c.Query("events"))
	if err != nil {
		utils.ValidationErrorResponse(c, map[string]string{"events": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Events:      names,
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	events, unsubscribe := h.events.Subscribe(names...)
	h.connections.Register(client)
	count := h.listeners.Register()

	h.logger.Info("Event WebSocket client connected",
		zap.String("client_id", client.ID),
		zap.Int64("listeners", count),
	)

	requestID, _ := c.Get("request_id")
	welcome := &WebSocketMessage{
		Type:      MessageTypeWelcome,
		Data:      gin.H{"client_id": client.ID, "events": names},
		Timestamp: time.Now(),
	}
	if id, ok := requestID.(string); ok {
		welcome.RequestID = id
	}

	go h.serve(client, events, unsubscribe, welcome)
}

// serve pumps events to the client until either side goes away, then
// releases the listener
func (h *WebSocketHandler) serve(client *Client, events <-chan model.PrinterEvent, unsubscribe func(), welcome *WebSocketMessage) {
	closed := make(chan struct{})
	go h.handleClientRead(client, closed)

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		unsubscribe()
		if h.connections.Unregister(client) {
			count := h.listeners.Remove(1)
			h.logger.Info("Event WebSocket client disconnected",
				zap.String("client_id", client.ID),
				zap.Int64("listeners", count),
			)
		}
		client.Connection.Close()
	}()

	if err := h.sendMessage(client, welcome); err != nil {
		return
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			message := &WebSocketMessage{
				Type:      MessageTypeEvent,
				Data:      event,
				Timestamp: event.Timestamp,
			}
			if err := h.sendMessage(client, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}

// handleClientRead drains the socket so control frames are processed. The
// stream is one way: text frames from the client are ignored.
func (h *WebSocketHandler) handleClientRead(client *Client, closed chan<- struct{}) {
	defer close(closed)

	client.Connection.SetReadLimit(4096)
	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Connection.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}
	}
}

func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to encode WebSocket message", zap.Error(err))
		return err
	}

	client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
	if err := client.Connection.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Warn("WebSocket write error",
			zap.Error(err),
			zap.String("client_id", client.ID),
		)
		return err
	}
	return nil
}

// GetConnectionStats returns the connected clients
func (h *WebSocketHandler) GetConnectionStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "WebSocket connections retrieved", h.connections.GetStats())
}

func parseEventNames(raw string) ([]model.EventName, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var names []model.EventName
	for _, part := range strings.Split(raw, ",") {
		name := model.EventName(strings.TrimSpace(part))
		if !name.IsValid() {
			return nil, fmt.Errorf("unknown event name: %s", name)
		}
		names = append(names, name)
	}
	return names, nil
}
