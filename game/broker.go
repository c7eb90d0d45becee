package game

import (
	"api/domain"
	"api/maze"
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Storage is what the broker needs from the persistence layer: room
// resolution on join, identity resolution for rosters, and loading and
// saving the board of a room's game.
type Storage interface {
	GetRoomById(ctx context.Context, id string) (domain.Room, error)
	GetUsersByIds(ctx context.Context, ids []string) ([]domain.User, error)
	LoadGameByRoomId(ctx context.Context, roomId string) (int64, []byte, error)
	SaveGame(ctx context.Context, gameId int64, data []byte) error
}

// TokenVerifier resolves a bearer token to the identity it carries.
type TokenVerifier interface {
	Verify(token string) (domain.TokenPayload, error)
}

// Broker owns the process-wide room registry. It is empty at startup; an
// entry appears on the first successful join for a room id and disappears
// when the last participant leaves. The registry map is guarded by mu while
// everything inside a room is serialized by that room's own lock.
type Broker struct {
	mu    sync.RWMutex
	rooms map[string]*room

	storage Storage
	tokens  TokenVerifier
	logger  zerolog.Logger
}

func NewBroker(storage Storage, tokens TokenVerifier, logger zerolog.Logger) *Broker {
	return &Broker{
		rooms:   make(map[string]*room),
		storage: storage,
		tokens:  tokens,
		logger:  logger,
	}
}

// Join authenticates a new connection and attaches it to its room. The
// credential and the room must both resolve, otherwise the connection is
// closed with CloseUnauthorized and no state changes. The room's session is
// activated from storage on the first join; everyone in the room, the joiner
// included, then receives the refreshed roster.
func (b *Broker) Join(ctx context.Context, conn Conn, token, roomId string) {
	if token == "" || roomId == "" {
		conn.Close(CloseUnauthorized, "Unauthorized")
		return
	}

	payload, err := b.tokens.Verify(token)
	if err != nil {
		conn.Close(CloseUnauthorized, "Unauthorized")
		return
	}

	if _, err := b.storage.GetRoomById(ctx, roomId); err != nil {
		conn.Close(CloseUnauthorized, "Unauthorized")
		return
	}

	p := &participant{
		id:       uuid.NewString(),
		userId:   payload.Id,
		username: payload.Username,
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
		limiter:  rate.NewLimiter(5, 10),
	}

	// A room fetched from the registry may have been torn down by a
	// concurrent last leave before we lock it. removeRoomIfEmpty deletes the
	// entry and marks the room closed in one critical section, so a closed
	// room is guaranteed to be gone from the registry and the retry gets a
	// fresh one.
	var r *room
	for {
		r = b.getOrCreateRoom(roomId)
		r.mu.Lock()
		if !r.closed {
			break
		}
		r.mu.Unlock()
	}
	p.room = r

	if r.game == nil {
		if err := b.activateLocked(ctx, r); err != nil {
			r.mu.Unlock()
			b.removeRoomIfEmpty(r)
			b.logger.Warn().Str("room", roomId).Err(err).Msg("room activation failed")

			// Unlike a bad credential, this is worth telling the client
			// about before hanging up.
			if data, merr := marshalEvent(MsgError, errorData{Message: "game-unavailable"}); merr == nil {
				_ = conn.Write(data)
			}
			conn.Close(websocket.CloseInternalServerErr, "game unavailable")
			return
		}
	}
	r.participants = append(r.participants, p)
	r.mu.Unlock()

	go p.writePump()
	go p.readPump(b)

	b.logger.Debug().Str("room", roomId).Str("user", p.userId).Msg("participant joined")
	b.broadcastPlayers(ctx, r)
}

// activateLocked loads the room's persisted board and builds the session.
// Caller holds r.mu.
func (b *Broker) activateLocked(ctx context.Context, r *room) error {
	gameId, data, err := b.storage.LoadGameByRoomId(ctx, r.id)
	if err != nil {
		return err
	}

	snap, err := maze.SnapshotFromJSON(data)
	if err != nil {
		return err
	}

	r.game = maze.GameFromSnapshot(gameId, snap)
	return nil
}

func (b *Broker) getOrCreateRoom(roomId string) *room {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r, ok := b.rooms[roomId]; ok {
		return r
	}
	r := &room{id: roomId}
	b.rooms[roomId] = r
	return r
}

// removeRoomIfEmpty drops the registry entry once nobody is connected. The
// room is marked closed under both locks so a join racing the removal can
// detect the dead object and retry against the registry.
func (b *Broker) removeRoomIfEmpty(r *room) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.participants) == 0 && b.rooms[r.id] == r {
		delete(b.rooms, r.id)
		r.closed = true
	}
}

// dispatch routes one inbound frame. Only the fixed message types are
// handled; malformed frames and unknown types are dropped without a reply.
func (b *Broker) dispatch(p *participant, raw []byte) {
	var msg envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case MsgStartGame:
		b.handleStartGame(p)
	case MsgMove:
		b.handleMove(p, msg.Data)
	case MsgPlayers, MsgEnd:
		// Roster snapshots go out on join/leave on their own; end has no
		// server-side handling.
	default:
	}
}

// handleStartGame starts the room's game. Only the session leader, the
// first participant in join order, may trigger it, and at least two
// connected participants must resolve to stored identities.
func (b *Broker) handleStartGame(p *participant) {
	r := p.room

	r.mu.Lock()
	if !r.leaderLocked(p) || r.game == nil {
		r.mu.Unlock()
		return
	}
	_, userIds := r.snapshotLocked()
	r.mu.Unlock()

	users, err := b.storage.GetUsersByIds(context.Background(), userIds)
	if err != nil || len(users) < 2 {
		return
	}

	r.mu.Lock()
	game := r.game
	for _, u := range users {
		if err := game.AddPendingPlayer(u.Id, u.Username); err != nil {
			r.mu.Unlock()
			b.logger.Debug().Str("room", r.id).Err(err).Msg("startGame rejected")
			return
		}
	}
	err = game.Start()
	current := game.CurrentPlayer()
	r.mu.Unlock()

	if err != nil {
		b.logger.Debug().Str("room", r.id).Err(err).Msg("startGame rejected")
		return
	}

	b.broadcast(r, MsgStartGame, startGameData{CurrentPlayer: current})
}

// handleMove relays a move to everyone in the room, sender included. The
// payload travels verbatim; no server-side check against the current
// player's legal actions happens here, clients validate against their own
// board copy.
func (b *Broker) handleMove(p *participant, payload json.RawMessage) {
	r := p.room

	r.mu.Lock()
	sender := r.findByUserIdLocked(p.userId)
	r.mu.Unlock()
	if sender == nil {
		return
	}

	b.broadcast(r, MsgMove, moveData{Player: sender.info(), Move: payload})
}

// leave detaches a participant after its transport closed. Remaining
// participants get the refreshed roster; the last one out tears the room
// down.
func (b *Broker) leave(p *participant) {
	r := p.room

	r.mu.Lock()
	removed := r.removeLocked(p)
	empty := len(r.participants) == 0
	r.mu.Unlock()

	if !removed {
		return
	}

	close(p.done)
	p.conn.Close(websocket.CloseNormalClosure, "")
	b.logger.Debug().Str("room", r.id).Str("user", p.userId).Msg("participant left")

	if empty {
		b.persistGame(r)
		b.removeRoomIfEmpty(r)
		return
	}
	b.broadcastPlayers(context.Background(), r)
}

// persistGame writes the room's board back to storage so the next activation
// picks up where the last participant left off. A failed save only costs the
// unsaved progress, the room is torn down either way.
func (b *Broker) persistGame(r *room) {
	r.mu.Lock()
	game := r.game
	var snap *maze.Snapshot
	var gameId int64
	if game != nil {
		snap = game.Snapshot()
		gameId = game.GameID()
	}
	r.mu.Unlock()

	if snap == nil {
		return
	}

	data, err := snap.JSON()
	if err != nil {
		b.logger.Warn().Str("room", r.id).Err(err).Msg("board snapshot failed")
		return
	}
	if err := b.storage.SaveGame(context.Background(), gameId, data); err != nil {
		b.logger.Warn().Str("room", r.id).Err(err).Msg("board save failed")
	}
}

// broadcastPlayers sends the roster, resolved to display identities and in
// join order, to every participant of the room.
func (b *Broker) broadcastPlayers(ctx context.Context, r *room) {
	r.mu.Lock()
	targets, userIds := r.snapshotLocked()
	r.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	users, err := b.storage.GetUsersByIds(ctx, userIds)
	if err != nil {
		b.logger.Warn().Str("room", r.id).Err(err).Msg("roster resolution failed")
		return
	}

	byId := make(map[string]domain.User, len(users))
	for _, u := range users {
		byId[u.Id] = u
	}

	roster := make([]PlayerInfo, 0, len(userIds))
	seen := make(map[string]bool, len(userIds))
	for _, id := range userIds {
		u, ok := byId[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		roster = append(roster, PlayerInfo{Id: u.Id, Username: u.Username})
	}

	data, err := marshalEvent(MsgPlayers, roster)
	if err != nil {
		return
	}
	for _, t := range targets {
		t.enqueue(data)
	}
}

// broadcast fans an event out to every participant of the room. Delivery is
// best effort per participant.
func (b *Broker) broadcast(r *room, msgType string, payload any) {
	data, err := marshalEvent(msgType, payload)
	if err != nil {
		return
	}

	r.mu.Lock()
	targets, _ := r.snapshotLocked()
	r.mu.Unlock()

	for _, t := range targets {
		t.enqueue(data)
	}
}

// roomCount is used by tests to observe registry lifecycle.
func (b *Broker) roomCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms)
}
