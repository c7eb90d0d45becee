package maze

import "math/rand"

// State tracks where a session is in its lifecycle. There is no terminal
// state; end-of-game handling lives outside this package.
type State int

const (
	StateUninitialized State = iota
	StateGenerating
	StateReady
	StateInProgress
)

// Gold stake every player starts the game with.
const startingGold = 1000

type pendingPlayer struct {
	id       string
	username string
}

// Game is the session engine for one room: the board, the roster, the move
// log and the waiting list of players who joined but are not placed yet.
// Game is not safe for concurrent use; the room broker serializes access.
type Game struct {
	gameID  int64
	state   State
	m       *GameMap
	pending []pendingPlayer
}

// NewGame generates a fresh board from cfg.
func NewGame(gameID int64, cfg GeneratorConfig) (*Game, error) {
	g := &Game{gameID: gameID, state: StateGenerating}

	stations, err := Generate(cfg)
	if err != nil {
		return nil, err
	}

	g.m = &GameMap{Stations: stations, Players: []*PlayerData{}, Moves: []Move{}}
	g.state = StateReady
	return g, nil
}

// GameFromSnapshot rebuilds a session from a persisted board.
func GameFromSnapshot(gameID int64, snap *Snapshot) *Game {
	return &Game{
		gameID: gameID,
		state:  StateReady,
		m: &GameMap{
			Stations: snap.Stations,
			Players:  snap.Players,
			Moves:    snap.Moves,
		},
	}
}

func (g *Game) GameID() int64 { return g.gameID }

func (g *Game) State() State { return g.state }

// CurrentPlayer returns the turn pointer, nil before the game starts.
func (g *Game) CurrentPlayer() *PlayerData { return g.m.CurrentPlayer }

// AddPendingPlayer puts a player on the waiting list. New players are
// rejected once the game is running.
func (g *Game) AddPendingPlayer(id, username string) error {
	if g.state == StateInProgress {
		return ErrGameInProgress
	}
	g.pending = append(g.pending, pendingPlayer{id: id, username: username})
	return nil
}

// Start begins the game: a uniformly random station becomes the start
// location and one uniformly random pending player is placed there with the
// starting gold stake. The turn pointer is set to the first player of the
// resulting roster.
//
// Only a single pending player is placed; the rest stay on the waiting list.
// That mirrors the launch behavior clients were built against, so changing it
// needs a coordinated client release. Tests pin it.
func (g *Game) Start() error {
	if len(g.pending) < 2 {
		return ErrNotEnoughPlayers
	}

	station := g.m.Stations[rand.Intn(len(g.m.Stations))]
	i := rand.Intn(len(g.pending))
	chosen := g.pending[i]

	g.m.Players = append(g.m.Players, &PlayerData{
		ID:   chosen.id,
		Name: chosen.username,
		Gold: startingGold,
	})
	g.pending = append(g.pending[:i], g.pending[i+1:]...)

	if err := g.PlacePlayer(chosen.id, station.ID); err != nil {
		return err
	}

	g.m.CurrentPlayer = g.m.Players[0]
	g.state = StateInProgress
	return nil
}

// PlacePlayer puts a roster player onto a station. Together with
// RemovePlayer these are the only occupancy mutators, keeping the station
// occupant list and the player's own station reference consistent.
func (g *Game) PlacePlayer(playerID, stationID string) error {
	station := g.m.station(stationID)
	if station == nil {
		return ErrStationNotFound
	}
	player := g.m.player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}

	player.CurrentStation = stationID
	station.Players = append(station.Players, playerID)
	return nil
}

// RemovePlayer takes a roster player off a station. The player stays in the
// roster; only occupancy and the station reference are cleared.
func (g *Game) RemovePlayer(playerID, stationID string) error {
	station := g.m.station(stationID)
	if station == nil {
		return ErrStationNotFound
	}
	player := g.m.player(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}

	player.CurrentStation = ""
	occupants := station.Players[:0]
	for _, id := range station.Players {
		if id != playerID {
			occupants = append(occupants, id)
		}
	}
	station.Players = occupants
	return nil
}

// PlayerStation resolves the station a roster player currently stands on.
func (g *Game) PlayerStation(playerID string) (*Station, error) {
	player := g.m.player(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if player.CurrentStation == "" {
		return nil, ErrPlayerNotPlaced
	}
	station := g.m.station(player.CurrentStation)
	if station == nil {
		return nil, ErrStationNotFound
	}
	return station, nil
}

// AvailableActionsForCurrentPlayer returns the bound paths of the current
// player's station, the moves a player may traverse this turn.
func (g *Game) AvailableActionsForCurrentPlayer() (map[Direction]Path, error) {
	if g.m.CurrentPlayer == nil {
		return nil, ErrNoCurrentPlayer
	}

	station, err := g.PlayerStation(g.m.CurrentPlayer.ID)
	if err != nil {
		return nil, err
	}

	actions := make(map[Direction]Path, len(station.AvailablePaths))
	for dir, path := range station.AvailablePaths {
		actions[dir] = *path
	}
	return actions, nil
}

// RecordMove appends to the move log. Entries are never mutated or removed.
func (g *Game) RecordMove(playerID string, direction Path) {
	g.m.Moves = append(g.m.Moves, Move{PlayerID: playerID, Direction: direction})
}

// Map exposes the live game state for event payloads. Callers must not
// mutate it.
func (g *Game) Map() *GameMap { return g.m }
