package websocket

import (
	"encoding/json"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/service"
	"food-rag-be/pkg/sse"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const module = "WebSocket"

// ChatHandler streams chat replies over a websocket. Every text message is
// one chat request; its events come back as JSON text frames shaped like the
// event-stream payloads.
type ChatHandler struct {
	chat   service.IChatService
	logger logger.ILogger
}

func NewChatHandler(chat service.IChatService, log logger.ILogger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: log}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/chat/ws", upgradeRequired)
	r.Get("/chat/ws", websocket.New(h.Serve))
}

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *ChatHandler) Serve(conn *websocket.Conn) {
	client := newClient(conn, h.logger)
	go client.writePump()
	client.readPump(func(payload []byte) {
		h.handle(client, payload)
	})
	// The connection goes back to the pool when Serve returns.
	<-client.flushed
}

func (h *ChatHandler) handle(client *Client, payload []byte) {
	var req dto.ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		client.Emit(sse.Failure("invalid request"))
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		client.Emit(sse.Failure(err.Error()))
		return
	}

	service.EnsureSessionID(&req)
	out := h.chat.Stream(client.Context(), req, service.TransportWebSocket, client)
	h.logger.Debug(module, "Chat request served", map[string]interface{}{
		"session_id":   req.SessionId,
		"state":        out.State.String(),
		"disconnected": out.Disconnected,
	})
}
