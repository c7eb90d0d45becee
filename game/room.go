package game

import (
	"api/maze"
	"sync"
)

// room binds the connected participants of one room id to its game session.
// Every mutation of participants or game happens under mu, which serializes
// join, dispatch and leave for this room. Different rooms share nothing and
// proceed in parallel.
type room struct {
	id string

	mu           sync.Mutex
	participants []*participant
	game         *maze.Game

	// closed is set when the room is dropped from the registry. A join that
	// picked this room up before the removal must not attach to it.
	closed bool
}

// leaderLocked reports whether p was the first successful join still
// connected. Join order is the leadership rule: only the leader may start
// the game.
func (r *room) leaderLocked(p *participant) bool {
	return len(r.participants) > 0 && r.participants[0] == p
}

func (r *room) findByUserIdLocked(userId string) *participant {
	for _, p := range r.participants {
		if p.userId == userId {
			return p
		}
	}
	return nil
}

func (r *room) removeLocked(target *participant) bool {
	for i, p := range r.participants {
		if p == target {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return true
		}
	}
	return false
}

// snapshotLocked copies out what broadcast needs so frames can be marshaled
// and enqueued without holding the room lock.
func (r *room) snapshotLocked() (targets []*participant, userIds []string) {
	targets = append(targets, r.participants...)
	for _, p := range r.participants {
		userIds = append(userIds, p.userId)
	}
	return targets, userIds
}
