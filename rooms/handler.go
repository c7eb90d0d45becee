package rooms

import (
	"api/domain"
	"api/maze"
	"context"
	"errors"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidRequestFormatStr = "bad-request-format"
	ErrRoomIdExhaustedStr      = "room-id-exhausted"
	ErrUnknownStr              = "unknown-error"
)

const (
	roomIdAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	roomIdLength   = 8
	maxIdAttempts  = 5
)

// Every room is created with this board layout.
var defaultBoard = maze.GeneratorConfig{
	BlankCount:     5,
	ShopCount:      2,
	GoodWheelCount: 1,
	BadWheelCount:  1,
}

// Storage is what the room endpoints need from the persistence layer.
type Storage interface {
	CreateRoom(ctx context.Context, id, name, description string) error
	GetRoomById(ctx context.Context, id string) (domain.Room, error)
	ListOpenRooms(ctx context.Context) ([]domain.Room, error)
	CreateGame(ctx context.Context, data []byte) (int64, error)
	LinkRoomGame(ctx context.Context, roomId string, gameId int64) error
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type Handler struct {
	storage Storage
	logger  zerolog.Logger
}

func NewHandler(storage Storage, logger zerolog.Logger) *Handler {
	return &Handler{storage: storage, logger: logger}
}

// ListRoomsHandler returns every room still accepting players.
func (h *Handler) ListRoomsHandler(ctx *gin.Context) {
	rooms, err := h.storage.ListOpenRooms(ctx.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("room listing failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	ctx.JSON(http.StatusOK, response{Status: "success", Message: "rooms-listed", Data: rooms})
}

// CreateRoomHandler creates a room together with its initial board: the room
// row, a freshly generated board snapshot in the games table, and the link
// between the two. The room id is drawn at random and checked against
// existing rooms before use.
func (h *Handler) CreateRoomHandler(ctx *gin.Context) {
	var body struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, response{Status: "error", Message: ErrInvalidRequestFormatStr})
		return
	}

	reqCtx := ctx.Request.Context()

	roomId, err := h.uniqueRoomId(reqCtx)
	if err != nil {
		h.logger.Error().Err(err).Msg("room id generation failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrRoomIdExhaustedStr})
		return
	}

	if err := h.storage.CreateRoom(reqCtx, roomId, body.Name, body.Description); err != nil {
		h.logger.Error().Err(err).Str("room", roomId).Msg("room creation failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	stations, err := maze.Generate(defaultBoard)
	if err != nil {
		h.logger.Error().Err(err).Str("room", roomId).Msg("board generation failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	snap := maze.Snapshot{
		Stations: stations,
		Players:  []*maze.PlayerData{},
		Moves:    []maze.Move{},
	}
	data, err := snap.JSON()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	gameId, err := h.storage.CreateGame(reqCtx, data)
	if err != nil {
		h.logger.Error().Err(err).Str("room", roomId).Msg("game creation failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	if err := h.storage.LinkRoomGame(reqCtx, roomId, gameId); err != nil {
		h.logger.Error().Err(err).Str("room", roomId).Msg("room-game link failed")
		ctx.JSON(http.StatusInternalServerError, response{Status: "error", Message: ErrUnknownStr})
		return
	}

	room := domain.Room{
		Id:          roomId,
		Name:        body.Name,
		Description: body.Description,
		Status:      domain.RoomStatusOpen,
	}
	ctx.JSON(http.StatusCreated, response{Status: "success", Message: "room-created", Data: room})
}

// uniqueRoomId draws random ids until one misses the rooms table. The id
// space is large enough that more than one retry means something else is
// wrong, so attempts are bounded.
func (h *Handler) uniqueRoomId(ctx context.Context) (string, error) {
	for i := 0; i < maxIdAttempts; i++ {
		id := newRoomId()

		_, err := h.storage.GetRoomById(ctx, id)
		if errors.Is(err, domain.ErrRoomNotFound) {
			return id, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("no free room id found")
}

func newRoomId() string {
	suffix := make([]byte, roomIdLength)
	for i := range suffix {
		suffix[i] = roomIdAlphabet[rand.Intn(len(roomIdAlphabet))]
	}
	return "R" + string(suffix)
}
