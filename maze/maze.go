// Package maze holds the board graph and the per-room game state: typed
// stations connected by directed paths, the player roster, the move log and
// the turn pointer. Boards are produced by Generate and kept immutable
// afterwards; only station occupancy changes during play.
package maze

// Direction names the eight compass-like path slots of a station.
type Direction string

const (
	DirUp        Direction = "up"
	DirDown      Direction = "down"
	DirLeft      Direction = "left"
	DirRight     Direction = "right"
	DirUpRight   Direction = "upRight"
	DirUpLeft    Direction = "upLeft"
	DirDownRight Direction = "downRight"
	DirDownLeft  Direction = "downLeft"
)

// Directions lists every path slot a station has. Order matters only for
// deterministic iteration; the generator shuffles independently.
var Directions = [8]Direction{
	DirUp, DirDown, DirLeft, DirRight,
	DirUpRight, DirUpLeft, DirDownRight, DirDownLeft,
}

// Path is a directed edge bound to one direction slot of one station.
// A circular path targets its own station.
type Path struct {
	IsCircular      bool   `json:"isCircular"`
	TargetStationID string `json:"targetStationId"`
}

type StationType string

const (
	StationBlank StationType = "blank"
	StationShop  StationType = "shop"
	StationWheel StationType = "wheel"
)

type WheelType string

const (
	WheelGood WheelType = "good"
	WheelBad  WheelType = "bad"
)

type ShopItem struct {
	Image       string `json:"image"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Description string `json:"description"`
}

type Shop struct {
	Name  string     `json:"name"`
	Items []ShopItem `json:"items"`
}

type WheelPiece struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Station is a node of the board graph. Type discriminates the variant;
// Shop and wheel fields are only set for their respective types.
// AvailablePaths holds at most one bound path per direction; directions
// without an entry are unbound.
type Station struct {
	ID             string              `json:"id"`
	Type           StationType         `json:"stationType"`
	AvailablePaths map[Direction]*Path `json:"availablePaths"`
	Players        []string            `json:"players"`

	Shop      *Shop        `json:"shop,omitempty"`
	WheelType WheelType    `json:"wheelType,omitempty"`
	Pieces    []WheelPiece `json:"pieces,omitempty"`
}

// PlayerData is a placed player. CurrentStation is empty while the player is
// not standing on any station.
type PlayerData struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Photo          string `json:"photo"`
	CurrentStation string `json:"currentStation"`
	Gold           int    `json:"gold"`
}

// Move is an immutable entry of the move log.
type Move struct {
	PlayerID  string `json:"playerId"`
	Direction Path   `json:"direction"`
}

// GameMap is the full mutable game state of one room. CurrentPlayer is
// transient: it is nil before the game starts and never persisted.
type GameMap struct {
	Stations      []*Station    `json:"stations"`
	Players       []*PlayerData `json:"players"`
	Moves         []Move        `json:"moves"`
	CurrentPlayer *PlayerData   `json:"currentPlayer,omitempty"`
}

func (m *GameMap) station(id string) *Station {
	for _, s := range m.Stations {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *GameMap) player(id string) *PlayerData {
	for _, p := range m.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
