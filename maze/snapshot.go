package maze

import "encoding/json"

// Snapshot is the storage-ready copy of a board: stations, roster and move
// log. Transient state, the current-turn pointer and any live-connection
// bookkeeping, is stripped. The JSON form is what the games table stores.
type Snapshot struct {
	Stations []*Station    `json:"stations"`
	Players  []*PlayerData `json:"players"`
	Moves    []Move        `json:"moves"`
}

// Snapshot deep-copies the current game state for persistence. The returned
// value shares nothing with the live map, so it stays stable while the game
// keeps running.
func (g *Game) Snapshot() *Snapshot {
	snap := &Snapshot{
		Stations: make([]*Station, 0, len(g.m.Stations)),
		Players:  make([]*PlayerData, 0, len(g.m.Players)),
		Moves:    make([]Move, len(g.m.Moves)),
	}

	for _, s := range g.m.Stations {
		snap.Stations = append(snap.Stations, cloneStation(s))
	}
	for _, p := range g.m.Players {
		clone := *p
		snap.Players = append(snap.Players, &clone)
	}
	copy(snap.Moves, g.m.Moves)

	return snap
}

func cloneStation(s *Station) *Station {
	clone := &Station{
		ID:             s.ID,
		Type:           s.Type,
		AvailablePaths: make(map[Direction]*Path, len(s.AvailablePaths)),
		Players:        append([]string{}, s.Players...),
		WheelType:      s.WheelType,
	}
	for dir, path := range s.AvailablePaths {
		p := *path
		clone.AvailablePaths[dir] = &p
	}
	if s.Shop != nil {
		shop := Shop{Name: s.Shop.Name, Items: append([]ShopItem{}, s.Shop.Items...)}
		clone.Shop = &shop
	}
	if s.Pieces != nil {
		clone.Pieces = append([]WheelPiece{}, s.Pieces...)
	}
	return clone
}

// SnapshotFromJSON parses a stored board document.
func SnapshotFromJSON(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Players == nil {
		snap.Players = []*PlayerData{}
	}
	if snap.Moves == nil {
		snap.Moves = []Move{}
	}
	return &snap, nil
}

// JSON encodes the snapshot for the games table.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.Marshal(s)
}
