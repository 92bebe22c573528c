package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbchat-backend/internal/config"
	"kbchat-backend/internal/model"
	"kbchat-backend/internal/qa"
	"kbchat-backend/internal/service"
	"kbchat-backend/internal/storage"
)

type fixedBackend struct {
	response *qa.AskResponse
	err      error
}

func (b *fixedBackend) Ask(ctx context.Context, question, backendMode string) (*qa.AskResponse, error) {
	return b.response, b.err
}

func newTestRouter(t *testing.T, backend service.QueryClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Chat: config.ChatConfig{DefaultMode: "knowledgebase", CitationMode: true},
	}
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Init())

	chatService := service.NewChatService(cfg, store, backend)
	chatHandler := NewChatHandler(chatService)

	router := gin.New()
	chat := router.Group("/api/chat")
	{
		chat.POST("/send", chatHandler.SendMessage)
		chat.GET("/state", chatHandler.GetState)
		chat.POST("/session", chatHandler.CreateSession)
		chat.POST("/session/list", chatHandler.GetSessionList)
		chat.GET("/session/:session_id", chatHandler.LoadSession)
		chat.GET("/session/del/:session_id", chatHandler.DeleteSession)
		chat.POST("/mode", chatHandler.SetMode)
		chat.POST("/citations/toggle", chatHandler.ToggleCitationMode)
		chat.GET("/export/:format", chatHandler.ExportChat)
	}
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSendMessageEndpoint(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	w := doJSON(router, http.MethodPost, "/api/chat/send", `{"content": "hello"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.SendMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.Message)
	assert.Equal(t, "hi", resp.Message.Content)
	assert.Equal(t, model.SenderBot, resp.Message.Sender)
}

func TestSendMessageEndpointMissingContent(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	w := doJSON(router, http.MethodPost, "/api/chat/send", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStateEndpoint(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	doJSON(router, http.MethodPost, "/api/chat/send", `{"content": "hello"}`)

	w := doJSON(router, http.MethodGet, "/api/chat/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var state model.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.NotEmpty(t, state.SessionID)
	assert.Len(t, state.Messages, 2)
	assert.Equal(t, model.ModeKnowledgeBase, state.Mode)
	assert.True(t, state.CitationMode)
	assert.False(t, state.InFlight)
}

func TestLoadSessionEndpointUnknownID(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	w := doJSON(router, http.MethodGet, "/api/chat/session/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestModeAndCitationEndpoints(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	w := doJSON(router, http.MethodPost, "/api/chat/mode", `{"mode": "llm"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode": "llm"}`, w.Body.String())

	// unrecognized modes collapse to the default instead of failing
	w = doJSON(router, http.MethodPost, "/api/chat/mode", `{"mode": "warp"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mode": "knowledgebase"}`, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/chat/citations/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"citation_mode": false}`, w.Body.String())
}

func TestExportEndpoint(t *testing.T) {
	router := newTestRouter(t, &fixedBackend{response: &qa.AskResponse{AnswerDisplayText: "hi"}})

	doJSON(router, http.MethodPost, "/api/chat/send", `{"content": "hello"}`)

	w := doJSON(router, http.MethodGet, "/api/chat/export/json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	var exported model.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	assert.Len(t, exported.Messages, 2)

	w = doJSON(router, http.MethodGet, "/api/chat/export/pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
