package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/rag/session"
	"food-rag-be/pkg/sse"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	requests chan dto.ChatRequest
}

func (f *fakeChat) Stream(_ context.Context, req dto.ChatRequest, _ string, em session.Emitter) session.Outcome {
	f.requests <- req
	for _, frag := range []string{"Try ", "Pesarattu"} {
		if err := em.Emit(sse.Content(frag)); err != nil {
			return session.Outcome{State: session.Errored, Disconnected: true}
		}
	}
	em.Emit(sse.Done())
	return session.Outcome{State: session.Closed, Fragments: 2}
}

func (f *fakeChat) Complete(context.Context, dto.ChatRequest) (*dto.ChatResponse, error) {
	return nil, nil
}

func (f *fakeChat) History(context.Context, string) (*dto.ChatHistoryResponse, error) {
	return nil, nil
}

func serve(t *testing.T, chat *fakeChat) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	NewChatHandler(chat, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/api/chat/ws"
}

func readEvent(t *testing.T, conn *fastws.Conn) sse.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev sse.Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func TestChatOverWebSocket(t *testing.T) {
	chat := &fakeChat{requests: make(chan dto.ChatRequest, 2)}
	conn, _, err := fastws.DefaultDialer.Dial(serve(t, chat), nil)
	require.NoError(t, err)
	defer conn.Close()

	for round := 0; round < 2; round++ {
		require.NoError(t, conn.WriteMessage(fastws.TextMessage, []byte(`{"message":"spicy breakfast"}`)))

		assert.Equal(t, sse.Content("Try "), readEvent(t, conn))
		assert.Equal(t, sse.Content("Pesarattu"), readEvent(t, conn))
		assert.Equal(t, sse.Done(), readEvent(t, conn))

		req := <-chat.requests
		assert.Equal(t, "spicy breakfast", req.Message)
		assert.NotEmpty(t, req.SessionId)
	}
}

func TestChatOverWebSocketInvalidRequest(t *testing.T) {
	chat := &fakeChat{requests: make(chan dto.ChatRequest, 1)}
	conn, _, err := fastws.DefaultDialer.Dial(serve(t, chat), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(fastws.TextMessage, []byte(`not json`)))
	assert.Equal(t, sse.Failure("invalid request"), readEvent(t, conn))

	require.NoError(t, conn.WriteMessage(fastws.TextMessage, []byte(`{"message":""}`)))
	ev := readEvent(t, conn)
	assert.NotEmpty(t, ev.Error)
	assert.Empty(t, chat.requests)
}

func TestUpgradeRequired(t *testing.T) {
	app := fiber.New()
	NewChatHandler(&fakeChat{}, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(newGet("/api/chat/ws"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func newGet(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
