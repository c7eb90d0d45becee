package game

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	broker   *Broker
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewHandler(broker *Broker, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// GameWSHandler upgrades the connection and hands it to the broker. The
// bearer token and the room id travel as query parameters; the broker closes
// with 4001 when either fails to resolve.
func (h *Handler) GameWSHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("ws upgrade failed")
		return
	}

	token := ctx.Query("token")
	roomId := ctx.Query("roomId")

	// The connection outlives this request, so the broker gets its own
	// context.
	h.broker.Join(context.Background(), NewWebsocketConnection(conn), token, roomId)
}
