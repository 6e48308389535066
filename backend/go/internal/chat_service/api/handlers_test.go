package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moihub_chatbot/backend/go/internal/chat_service/matcher"
	"moihub_chatbot/backend/go/internal/chat_service/service"
	"moihub_chatbot/backend/go/internal/chat_service/store"
	"moihub_chatbot/backend/go/internal/config"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenStore 的所有操作都失败。
type brokenStore struct {
	store.KnowledgeStore
}

var errDown = errors.New("connection refused")

func (brokenStore) EntryExists(context.Context, string) (bool, error)    { return false, errDown }
func (brokenStore) AllQuestions(context.Context) ([]string, error)       { return nil, errDown }
func (brokenStore) AllEntries(context.Context) ([]models.QAEntry, error) { return nil, errDown }
func (brokenStore) Ping(context.Context) error                           { return errDown }

func newRouter(t *testing.T, s store.KnowledgeStore) *gin.Engine {
	t.Helper()
	log := logger.New("chat_service_test", "", "")
	resolver := service.NewResolver(s, matcher.NewTokenMatcher(), config.DefaultMatchThreshold, log)
	svc := service.NewKnowledgeService(s, resolver, log)
	h := NewHandler(svc, config.DefaultFallbackMessage, log)
	return SetupRouter(h, log, RouterOptions{AllowedOrigins: []string{"*"}})
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestTrainThenChat(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	w := doJSON(r, http.MethodPost, "/train", `{"question":"What time does the library open?","answer":"8am"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chatbot has learned a new answer!", decode(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/train", `{"question":"What time does the library open?","answer":"9am"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "This question already exists!", decode(t, w)["message"])

	w = doJSON(r, http.MethodPost, "/chat", `{"question":"what time does the library open"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8am", decode(t, w)["response"])
}

func TestChat_WhereIs(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	w := doJSON(r, http.MethodPost, "/train", `{"question":"Tell me about the route","answer":"Lagos is past Ibadan"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/chat", `{"question":"Where is Ibadan?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ibadan is before Lagos", decode(t, w)["response"])
}

func TestChat_Fallback(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	w := doJSON(r, http.MethodPost, "/chat", `{"question":"What is the capital?"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.DefaultFallbackMessage, decode(t, w)["response"])
}

func TestChat_BadRequest(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	for _, body := range []string{`{}`, `{"question":"   "}`, `not json`} {
		w := doJSON(r, http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "No question provided", decode(t, w)["error"], body)
	}
}

func TestTrain_BadRequest(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	for _, body := range []string{`{"question":"q"}`, `{"answer":"a"}`, `{"question":"","answer":""}`} {
		w := doJSON(r, http.MethodPost, "/train", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Both question and answer are required!", decode(t, w)["error"], body)
	}
}

func TestListKnowledge(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	w := doJSON(r, http.MethodGet, "/knowledge", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	doJSON(r, http.MethodPost, "/train", `{"question":"Where is the bus stop?","answer":"Opposite the gate"}`)

	w = doJSON(r, http.MethodGet, "/knowledge", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"question":"Where is the bus stop?","answer":"Opposite the gate"}]`, w.Body.String())
	assert.False(t, strings.Contains(w.Body.String(), "_id"))
}

func TestStoreErrors(t *testing.T) {
	r := newRouter(t, brokenStore{})

	w := doJSON(r, http.MethodPost, "/chat", `{"question":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(r, http.MethodPost, "/train", `{"question":"q","answer":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(r, http.MethodGet, "/knowledge", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doJSON(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	w := doJSON(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t, store.NewMemoryStore())

	req := httptest.NewRequest(http.MethodOptions, "/train", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
