package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/service"
	"food-rag-be/pkg/llm"
	"food-rag-be/pkg/rag/retriever"
	"food-rag-be/pkg/rag/session"
	"food-rag-be/pkg/sse"
	"food-rag-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatService struct {
	fragments   []string
	completeErr error
	streamed    dto.ChatRequest
	transport   string
	history     []store.Message
}

func (f *fakeChatService) Stream(_ context.Context, req dto.ChatRequest, transport string, em session.Emitter) session.Outcome {
	f.streamed, f.transport = req, transport
	for _, frag := range f.fragments {
		if err := em.Emit(sse.Content(frag)); err != nil {
			return session.Outcome{State: session.Errored, Disconnected: true}
		}
	}
	_ = em.Emit(sse.Done())
	return session.Outcome{State: session.Closed, Fragments: len(f.fragments)}
}

func (f *fakeChatService) Complete(_ context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &dto.ChatResponse{SessionId: req.SessionId, Reply: "Try Pesarattu.", Items: []dto.FoodItemResponse{}}, nil
}

func (f *fakeChatService) History(_ context.Context, sessionId string) (*dto.ChatHistoryResponse, error) {
	return &dto.ChatHistoryResponse{SessionId: sessionId, Messages: f.history}, nil
}

type fakeFoodService struct {
	search dto.SearchFoodRequest
}

func (f *fakeFoodService) Search(_ context.Context, req dto.SearchFoodRequest) (*dto.SearchFoodResponse, error) {
	f.search = req
	return &dto.SearchFoodResponse{Items: []dto.FoodItemResponse{{Id: "pesarattu", Name: "Pesarattu"}}}, nil
}

func (f *fakeFoodService) Get(_ context.Context, id string) (*dto.FoodItemResponse, error) {
	if id != "pesarattu" {
		return nil, serverutils.NewNotFoundError("Food item", id)
	}
	return &dto.FoodItemResponse{Id: id, Name: "Pesarattu"}, nil
}

func (f *fakeFoodService) Create(_ context.Context, req dto.CreateFoodRequest) (*dto.CreateFoodResponse, error) {
	return &dto.CreateFoodResponse{Id: "generated", Status: "queued"}, nil
}

type fakePreferenceService struct {
	saved   dto.PreferencesDTO
	deleted string
}

func (f *fakePreferenceService) Get(_ context.Context, userId string) (*dto.PreferencesResponse, error) {
	return &dto.PreferencesResponse{UserId: userId, Preferences: dto.PreferencesDTO{SpiceLevel: "mild"}}, nil
}

func (f *fakePreferenceService) Save(_ context.Context, userId string, req dto.PreferencesDTO) (*dto.PreferencesResponse, error) {
	f.saved = req
	return &dto.PreferencesResponse{UserId: userId, Preferences: req}, nil
}

func (f *fakePreferenceService) Delete(_ context.Context, userId string) error {
	f.deleted = userId
	return nil
}

func (f *fakePreferenceService) Resolve(_ context.Context, _ string) (store.Preferences, error) {
	return store.Preferences{}, nil
}

func newTestApp(register ...func(fiber.Router)) *fiber.App {
	app := fiber.New(fiber.Config{EnableSplittingOnParsers: true})
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	for _, r := range register {
		r(api)
	}
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChatStream(t *testing.T) {
	chat := &fakeChatService{fragments: []string{"Try ", "Pesarattu"}}
	app := newTestApp(NewChatController(chat).RegisterRoutes)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/chat/stream", `{"message":"spicy breakfast","session_id":"s-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sse.ContentType, resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "s-1", resp.Header.Get("X-Session-Id"))

	r := sse.NewReader(resp.Body)
	var got []string
	for r.Next() {
		got = append(got, r.Text())
	}
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"Try ", "Pesarattu"}, got)
	ev, ok := r.Terminal()
	assert.True(t, ok)
	assert.True(t, ev.Done)

	assert.Equal(t, service.TransportSSE, chat.transport)
	assert.Equal(t, "spicy breakfast", chat.streamed.Message)
}

func TestChatStreamRejectsBlankMessage(t *testing.T) {
	chat := &fakeChatService{}
	app := newTestApp(NewChatController(chat).RegisterRoutes)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/chat/stream", `{"message":"   "}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["errors"], "message")
	assert.Empty(t, chat.transport, "no session is started")
}

func TestChatStreamMalformedBody(t *testing.T) {
	app := newTestApp(NewChatController(&fakeChatService{}).RegisterRoutes)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/chat/stream", `{"message":`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatComplete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "ok", status: http.StatusOK},
		{name: "retrieval timeout", err: retriever.ErrRetrievalTimeout, status: http.StatusGatewayTimeout},
		{name: "generation failure", err: fmt.Errorf("%w: 503", llm.ErrGeneration), status: http.StatusBadGateway},
		{name: "unexpected", err: io.ErrUnexpectedEOF, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(NewChatController(&fakeChatService{completeErr: tt.err}).RegisterRoutes)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/chat", `{"message":"dinner","session_id":"s-2"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			if tt.err == nil {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "Try Pesarattu.", data["reply"])
				assert.Equal(t, "s-2", data["session_id"])
			}
		})
	}
}

func TestChatHistory(t *testing.T) {
	chat := &fakeChatService{history: []store.Message{{ID: "m1", Role: store.RoleUser, Content: "hi"}}}
	app := newTestApp(NewChatController(chat).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/sessions/s-3/messages", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "s-3", data["session_id"])
	assert.Len(t, data["messages"], 1)
}

func TestFoodSearch(t *testing.T) {
	foods := &fakeFoodService{}
	app := newTestApp(NewFoodController(foods).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/foods/search?q=dosa&allergies=dairy,peanuts&spice_level=mild&limit=3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "dosa", foods.search.Query)
	assert.Equal(t, "mild", foods.search.SpiceLevel)
	assert.Equal(t, 3, foods.search.Limit)
}

func TestFoodSearchRequiresQuery(t *testing.T) {
	app := newTestApp(NewFoodController(&fakeFoodService{}).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/foods/search?limit=3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFoodShow(t *testing.T) {
	app := newTestApp(NewFoodController(&fakeFoodService{}).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/foods/pesarattu", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/foods/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Food item missing not found", decode(t, resp)["message"])
}

func TestFoodCreate(t *testing.T) {
	app := newTestApp(NewFoodController(&fakeFoodService{}).RegisterRoutes)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/foods", `{"name":"Pesarattu","description":"Green gram crepe","cuisine":"Andhra"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "queued", data["status"])
}

func TestPreferences(t *testing.T) {
	prefs := &fakePreferenceService{}
	app := newTestApp(NewPreferenceController(prefs).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/preferences/u-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodPut, "/api/preferences/u-1", `{"dietary_type":"vegan","allergies":["dairy"]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vegan", prefs.saved.DietaryType)
	assert.Equal(t, []string{"dairy"}, prefs.saved.Allergies)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/preferences/u-1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "u-1", prefs.deleted)
}
