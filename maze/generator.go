package maze

import (
	"fmt"
	"math/rand"
)

// GeneratorConfig gives the number of stations of each type to place on the
// board.
type GeneratorConfig struct {
	BlankCount     int
	ShopCount      int
	GoodWheelCount int
	BadWheelCount  int
}

func (c GeneratorConfig) total() int {
	return c.BlankCount + c.ShopCount + c.GoodWheelCount + c.BadWheelCount
}

const (
	// Chance for a bound path to loop back onto its own station.
	circularChance = 0.2

	// A disconnected layout is discarded and regenerated. The retry budget
	// turns a pathological configuration into a hard error instead of an
	// endless loop.
	maxGenerateAttempts = 100
)

// Generate builds a station set with bound directional paths. Every returned
// board is fully reachable from its first station; layouts that fail the
// reachability check are discarded and regenerated up to maxGenerateAttempts
// times before giving up with ErrUnreachableLayout.
func Generate(cfg GeneratorConfig) ([]*Station, error) {
	if cfg.total() < 1 {
		return nil, ErrNoStations
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		stations := buildStations(cfg)
		bindAllStations(stations)
		if connected(stations) {
			return stations, nil
		}
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrUnreachableLayout, maxGenerateAttempts)
}

func shopCatalog() *Shop {
	return &Shop{
		Name: "Shop",
		Items: []ShopItem{
			{Image: "item1.png", Name: "Item 1", Price: 100, Description: "Item 1 description"},
			{Image: "item2.png", Name: "Item 2", Price: 200, Description: "Item 2 description"},
			{Image: "item3.png", Name: "Item 3", Price: 300, Description: "Item 3 description"},
		},
	}
}

func wheelPieces() []WheelPiece {
	return []WheelPiece{
		{ID: "piece1", Name: "Piece 1"},
		{ID: "piece2", Name: "Piece 2"},
		{ID: "piece3", Name: "Piece 3"},
	}
}

func newStation(id string, t StationType) *Station {
	return &Station{
		ID:             id,
		Type:           t,
		AvailablePaths: make(map[Direction]*Path),
		Players:        []string{},
	}
}

func buildStations(cfg GeneratorConfig) []*Station {
	stations := make([]*Station, 0, cfg.total())

	for i := 0; i < cfg.BlankCount; i++ {
		stations = append(stations, newStation(fmt.Sprintf("blank-%d", i), StationBlank))
	}
	for i := 0; i < cfg.ShopCount; i++ {
		s := newStation(fmt.Sprintf("shop-%d", i), StationShop)
		s.Shop = shopCatalog()
		stations = append(stations, s)
	}
	for i := 0; i < cfg.GoodWheelCount; i++ {
		s := newStation(fmt.Sprintf("goodWheel-%d", i), StationWheel)
		s.WheelType = WheelGood
		s.Pieces = wheelPieces()
		stations = append(stations, s)
	}
	for i := 0; i < cfg.BadWheelCount; i++ {
		s := newStation(fmt.Sprintf("badWheel-%d", i), StationWheel)
		s.WheelType = WheelBad
		s.Pieces = wheelPieces()
		stations = append(stations, s)
	}

	return stations
}

// bindAllStations walks every station and binds between 1 and U of its U
// unbound direction slots. Paths are directed; binding A->B never creates
// B->A. Slots whose candidate search comes up empty stay unbound.
func bindAllStations(stations []*Station) {
	for _, station := range stations {
		unbound := unboundDirections(station)
		if len(unbound) == 0 {
			continue
		}

		bindCount := rand.Intn(len(unbound)) + 1
		rand.Shuffle(len(unbound), func(i, j int) {
			unbound[i], unbound[j] = unbound[j], unbound[i]
		})

		// Targets already chosen for this station in this pass.
		memo := make(map[string]bool)

		for _, dir := range unbound[:bindCount] {
			if rand.Float64() < circularChance {
				station.AvailablePaths[dir] = &Path{IsCircular: true, TargetStationID: station.ID}
				continue
			}

			target := pickTarget(station, stations, memo)
			if target == nil {
				continue
			}
			memo[target.ID] = true
			station.AvailablePaths[dir] = &Path{TargetStationID: target.ID}
		}
	}
}

func unboundDirections(station *Station) []Direction {
	free := make([]Direction, 0, len(Directions))
	for _, dir := range Directions {
		if _, bound := station.AvailablePaths[dir]; !bound {
			free = append(free, dir)
		}
	}
	return free
}

// pickTarget scans the station set in random order and returns the first
// station that is not the source itself, not already targeted from the source
// in this pass, and has no path pointing back at the source. This is an edge
// diversity heuristic, not a cycle guarantee. Returns nil when every
// candidate is rejected.
func pickTarget(source *Station, stations []*Station, memo map[string]bool) *Station {
	for _, i := range rand.Perm(len(stations)) {
		candidate := stations[i]
		if candidate.ID == source.ID || memo[candidate.ID] {
			continue
		}
		if pointsAt(candidate, source.ID) {
			continue
		}
		return candidate
	}
	return nil
}

func pointsAt(station *Station, targetID string) bool {
	for _, path := range station.AvailablePaths {
		if path.TargetStationID == targetID {
			return true
		}
	}
	return false
}

// connected reports whether every station is reachable from the first one by
// following outgoing bound paths. Circular paths contribute nothing new.
func connected(stations []*Station) bool {
	if len(stations) == 0 {
		return false
	}

	byID := make(map[string]*Station, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}

	visited := make(map[string]bool, len(stations))
	queue := []string{stations[0].ID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		for _, path := range byID[id].AvailablePaths {
			if !visited[path.TargetStationID] {
				queue = append(queue, path.TargetStationID)
			}
		}
	}

	return len(visited) == len(stations)
}
