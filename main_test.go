package main

import (
	"api/auth"
	"api/crypto"
	"api/domain"
	"api/game"
	"api/rooms"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore satisfies both the rooms and the game storage interfaces with
// canned data, enough to route requests end to end through the real wiring.
type stubStore struct{}

func (stubStore) CreateRoom(ctx context.Context, id, name, description string) error { return nil }

func (stubStore) GetRoomById(ctx context.Context, id string) (domain.Room, error) {
	return domain.Room{}, domain.ErrRoomNotFound
}

func (stubStore) ListOpenRooms(ctx context.Context) ([]domain.Room, error) {
	return []domain.Room{
		{Id: "Rfriday00", Name: "friday night", Description: "casuals only", Status: domain.RoomStatusOpen},
	}, nil
}

func (stubStore) CreateGame(ctx context.Context, data []byte) (int64, error) { return 7, nil }

func (stubStore) LinkRoomGame(ctx context.Context, roomId string, gameId int64) error { return nil }

func (stubStore) GetUsersByIds(ctx context.Context, ids []string) ([]domain.User, error) {
	return nil, nil
}

func (stubStore) LoadGameByRoomId(ctx context.Context, roomId string) (int64, []byte, error) {
	return 0, nil, domain.ErrGameNotFound
}

func (stubStore) SaveGame(ctx context.Context, gameId int64, data []byte) error { return nil }

// newTestApp assembles the engine the way main does, with stubbed storage.
func newTestApp(allowedOrigins []string) (*gin.Engine, *crypto.JWTManager) {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()
	store := stubStore{}

	tokenManager := crypto.NewJWTManager("test-signing-key", time.Hour)
	authHandler := auth.NewAuthHandler(auth.NewService(nil, nil, tokenManager), time.Hour)
	roomHandler := rooms.NewHandler(store, log)
	broker := game.NewBroker(store, tokenManager, log)
	gameHandler := game.NewHandler(broker, allowedOrigins, log)

	r := CreateServer(allowedOrigins)
	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
	}
	{
		roomGroup := r.Group("/rooms")
		roomGroup.Use(authHandler.RequireAuthMiddleware())
		roomGroup.GET("", roomHandler.ListRoomsHandler)
		roomGroup.POST("/create", roomHandler.CreateRoomHandler)
	}
	r.GET("/game/ws", gameHandler.GameWSHandler)

	return r, tokenManager
}

func TestOriginGate(t *testing.T) {
	t.Parallel()
	r, _ := newTestApp([]string{"http://localhost:3000", "https://boardgame.example.com"})

	tests := []struct {
		name           string
		method         string
		path           string
		origin         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "health check is public",
			method:         http.MethodGet,
			path:           "/health",
			origin:         "",
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name:           "allowed origin reaches the auth middleware",
			method:         http.MethodGet,
			path:           "/rooms",
			origin:         "https://boardgame.example.com",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   auth.ErrMissingTokenStr,
		},
		{
			name:           "disallowed origin is rejected before any handler",
			method:         http.MethodGet,
			path:           "/rooms",
			origin:         "http://evil.com",
			expectedStatus: http.StatusForbidden,
			expectedBody:   "forbidden origin",
		},
		{
			name:           "missing origin is rejected",
			method:         http.MethodGet,
			path:           "/rooms",
			origin:         "",
			expectedStatus: http.StatusForbidden,
			expectedBody:   "forbidden origin",
		},
		{
			name:           "auth routes sit behind the gate too",
			method:         http.MethodPost,
			path:           "/auth/signup",
			origin:         "http://evil.com",
			expectedStatus: http.StatusForbidden,
			expectedBody:   "forbidden origin",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			res := httptest.NewRecorder()

			r.ServeHTTP(res, req)

			assert.Equal(t, tc.expectedStatus, res.Code)
			assert.Equal(t, tc.expectedBody, res.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	r, _ := newTestApp([]string{"http://localhost:3000"})

	t.Run("allowed origin gets websocket handshake headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/rooms", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		allowHeaders := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
		for _, h := range []string{"upgrade", "connection", "sec-websocket-key", "sec-websocket-version"} {
			assert.Contains(t, allowHeaders, h)
		}
	})

	t.Run("forbidden origin gets no CORS grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/rooms", nil)
		req.Header.Set("Origin", "http://evil.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRoomRoutes(t *testing.T) {
	t.Parallel()
	origin := "http://localhost:3000"
	r, tokenManager := newTestApp([]string{origin})

	token, err := tokenManager.Generate("u-1", "alice", time.Now())
	require.NoError(t, err)

	t.Run("list with a valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Origin", origin)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"status": "success",
			"message": "rooms-listed",
			"data": [{"id":"Rfriday00","name":"friday night","description":"casuals only","status":"OPEN"}]
		}`, w.Body.String())
	})

	t.Run("create with a valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/rooms/create",
			strings.NewReader(`{"name":"rematch","description":"round two"}`))
		req.Header.Set("Origin", origin)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Status string      `json:"status"`
			Data   domain.Room `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.True(t, strings.HasPrefix(body.Data.Id, "R"))
		assert.Equal(t, domain.RoomStatusOpen, body.Data.Status)
	})

	t.Run("garbage session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Origin", origin)
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, auth.ErrInvalidCredentialsStr, w.Body.String())
	})

	t.Run("signup validation runs behind the gate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup",
			strings.NewReader(`{"username":"NOT VALID","password":"longenough"}`))
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, auth.ErrInvalidUsernameFormatStr, w.Body.String())
	})
}

func TestWebsocketEndpoint(t *testing.T) {
	t.Parallel()
	origin := "http://localhost:3000"
	r, tokenManager := newTestApp([]string{origin})

	srv := httptest.NewServer(r)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/ws"

	t.Run("upgrade without a token closes 4001", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {origin}})
		require.NoError(t, err)
		defer conn.Close()

		_, _, err = conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, game.CloseUnauthorized),
			"expected close %d, got %v", game.CloseUnauthorized, err)
	})

	t.Run("valid token but unknown room closes 4001", func(t *testing.T) {
		token, err := tokenManager.Generate("u-1", "alice", time.Now())
		require.NoError(t, err)

		conn, _, err := websocket.DefaultDialer.Dial(
			wsURL+"?token="+token+"&roomId=RNOPE", http.Header{"Origin": {origin}})
		require.NoError(t, err)
		defer conn.Close()

		_, _, err = conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, game.CloseUnauthorized),
			"expected close %d, got %v", game.CloseUnauthorized, err)
	})

	t.Run("handshake from forbidden origin is rejected", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": {"http://evil.com"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
