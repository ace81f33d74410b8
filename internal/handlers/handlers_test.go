package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/matchmaker/internal/database/memory"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/internal/models"
	"github.com/thereayou/matchmaker/internal/pubsub"
	"github.com/thereayou/matchmaker/internal/recommender"
	"github.com/thereayou/matchmaker/internal/services"
	ws "github.com/thereayou/matchmaker/internal/websocket"
	"github.com/thereayou/matchmaker/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRanker struct {
	ranking []string
	err     error
}

func (r *stubRanker) Rank(context.Context, string, []float64, []string) ([]string, error) {
	return r.ranking, r.err
}

type env struct {
	router *gin.Engine
	store  *memory.Store
	ranker *stubRanker
	jwt    *auth.JWTManager
	hub    *ws.Hub
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.New()
	bus := pubsub.NewMemoryBus()
	ranker := &stubRanker{}
	jwtMgr := auth.NewJWTManager("secret", time.Hour)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	blacklist := auth.NewRedisBlacklist(rdb)

	matchSvc := services.NewMatchService(store, ranker)
	chatSvc := services.NewChatService(store, bus)

	hub := ws.NewHub(bus)
	go hub.Run()
	t.Cleanup(hub.Stop)

	matchH := NewMatchHandler(matchSvc)
	chatH := NewHTTPMessageHandler(chatSvc)
	wsH := NewWebSocketHandler(hub, NewMessageHandler(chatSvc), nil)
	authH := NewAuthHandler(jwtMgr, blacklist)

	r := gin.New()
	authMW := middleware.AuthMiddleware(jwtMgr, blacklist)
	r.POST("/auth/logout", authMW, authH.Logout)
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, blacklist), wsH.HandleWebSocket)

	api := r.Group("/api", authMW)
	api.GET("/match/list", matchH.ListMyMatches)
	api.POST("/match", matchH.CreateMatch)
	api.GET("/match/:matchId", matchH.GetMatch)
	api.PUT("/match/:matchId/status", matchH.UpdateStatus)
	api.GET("/chat/rooms/:roomId/messages", chatH.GetRoomMessages)
	api.POST("/chat/rooms/:roomId/messages", chatH.SendMessage)

	return &env{router: r, store: store, ranker: ranker, jwt: jwtMgr, hub: hub}
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.jwt.Generate(userID)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, target, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(t, w.Code, env.Code, "envelope code mirrors HTTP status")
	return w.Code, env
}

func TestCreateMatch(t *testing.T) {
	e := newEnv(t)
	e.ranker.ranking = []string{"u3", "u2"}

	status, res := e.do(t, http.MethodPost, "/api/match", e.token(t, "u1"), map[string]interface{}{
		"requesterId":     "u1",
		"requesterVector": []float64{0.1, 0.2},
		"candidateIds":    []string{"u2", "u3"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", res.Message)

	var match models.Match
	require.NoError(t, json.Unmarshal(res.Data, &match))
	assert.Equal(t, "u1", match.UserA)
	assert.Equal(t, "u3", match.UserB)
	assert.Equal(t, models.MatchStatusWaiting, match.Status)
}

func TestCreateMatch_AliasesAndCallerFallback(t *testing.T) {
	e := newEnv(t)
	e.ranker.ranking = []string{"u2"}

	status, res := e.do(t, http.MethodPost, "/api/match", e.token(t, "me"), map[string]interface{}{
		"userVector": []float64{1},
		"candidates": []string{"u2"},
	})
	require.Equal(t, http.StatusOK, status)

	var match models.Match
	require.NoError(t, json.Unmarshal(res.Data, &match))
	assert.Equal(t, "me", match.UserA)
}

func TestCreateMatch_Errors(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, "u1")
	body := map[string]interface{}{"candidateIds": []string{"u2"}}

	e.ranker.ranking = []string{}
	status, res := e.do(t, http.MethodPost, "/api/match", token, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "null", string(res.Data))

	e.ranker.err = recommender.ErrUnavailable
	status, res = e.do(t, http.MethodPost, "/api/match", token, body)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "recommender unavailable", res.Message)

	status, _ = e.do(t, http.MethodPost, "/api/match", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodPost, "/api/match", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	status, _ = e.do(t, http.MethodPost, "/api/match", "", body)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUpdateStatusAndList(t *testing.T) {
	e := newEnv(t)
	e.ranker.ranking = []string{"u2"}
	token := e.token(t, "u1")

	_, res := e.do(t, http.MethodPost, "/api/match", token, map[string]interface{}{"candidateIds": []string{"u2"}})
	var created models.Match
	require.NoError(t, json.Unmarshal(res.Data, &created))

	status, res := e.do(t, http.MethodPut, "/api/match/"+created.ID+"/status?status=accepted", token, nil)
	require.Equal(t, http.StatusOK, status)
	var updated models.Match
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	assert.Equal(t, models.MatchStatusAccepted, updated.Status)

	status, _ = e.do(t, http.MethodPut, "/api/match/"+created.ID+"/status?status=MAYBE", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = e.do(t, http.MethodPut, "/api/match/missing/status?status=REJECTED", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "match not found", res.Message)

	status, res = e.do(t, http.MethodGet, "/api/match/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, status)

	for _, user := range []string{"u1", "u2"} {
		status, res = e.do(t, http.MethodGet, "/api/match/list", e.token(t, user), nil)
		require.Equal(t, http.StatusOK, status)
		var matches []models.Match
		require.NoError(t, json.Unmarshal(res.Data, &matches))
		require.Len(t, matches, 1, user)
		assert.Equal(t, models.MatchStatusAccepted, matches[0].Status)
	}

	_, res = e.do(t, http.MethodGet, "/api/match/list", e.token(t, "stranger"), nil)
	assert.Equal(t, "[]", string(res.Data))
}

func TestChatHTTP(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, "u1")

	status, res := e.do(t, http.MethodPost, "/api/chat/rooms/r1/messages", token, map[string]string{"content": "hi"})
	require.Equal(t, http.StatusOK, status)
	var sent models.ChatMessage
	require.NoError(t, json.Unmarshal(res.Data, &sent))
	assert.Equal(t, "u1", sent.Sender)
	assert.Equal(t, "r1", sent.ChatRoomID)
	assert.False(t, sent.Timestamp.IsZero())

	// пустой content проходит без проверки
	status, res = e.do(t, http.MethodPost, "/api/chat/rooms/r1/messages", token, map[string]string{"content": ""})
	require.Equal(t, http.StatusOK, status)
	var empty models.ChatMessage
	require.NoError(t, json.Unmarshal(res.Data, &empty))
	assert.Equal(t, "", empty.Content)

	status, res = e.do(t, http.MethodGet, "/api/chat/rooms/r1/messages", token, nil)
	require.Equal(t, http.StatusOK, status)
	var history []models.ChatMessage
	require.NoError(t, json.Unmarshal(res.Data, &history))
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, sent.ID, history[0].ID)
	assert.Equal(t, "", history[1].Content)
	assert.Equal(t, empty.ID, history[1].ID)
}

func TestChatHTTP_MalformedBody(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/chat/rooms/r1/messages", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	status, res := e.do(t, http.MethodGet, "/api/chat/rooms/r1/messages", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(res.Data))
}

func TestLogoutRevokesToken(t *testing.T) {
	e := newEnv(t)
	token := e.token(t, "u1")

	status, _ := e.do(t, http.MethodGet, "/api/match/list", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = e.do(t, http.MethodGet, "/api/match/list", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWebSocketRelay(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token="

	_, resp, err := gorilla.DefaultDialer.Dial(base+"bogus", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	sender, _, err := gorilla.DefaultDialer.Dial(base+e.token(t, "u1"), nil)
	require.NoError(t, err)
	defer sender.Close()
	listener, _, err := gorilla.DefaultDialer.Dial(base+e.token(t, "u2"), nil)
	require.NoError(t, err)
	defer listener.Close()

	for _, conn := range []*gorilla.Conn{sender, listener} {
		require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypeRoomJoin, ChatRoomID: "r1"}))
		readType(t, conn, ws.TypeRoomUsers)
	}

	require.NoError(t, sender.WriteJSON(ws.Message{Type: ws.TypeMessage, ChatRoomID: "r1", Content: "hello"}))

	got := readType(t, listener, ws.TypeMessage)
	assert.Equal(t, "u1", got.Sender)
	assert.Equal(t, "hello", got.Content)

	history, err := e.store.GetRoomMessages(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func readType(t *testing.T, conn *gorilla.Conn, want ws.MessageType) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var m ws.Message
		require.NoError(t, conn.ReadJSON(&m))
		if m.Type == want {
			return m
		}
	}
}
