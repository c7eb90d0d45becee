package game

import (
	"time"

	"golang.org/x/time/rate"
)

const (
	sendQueueSize = 64
	pingPeriod    = 30 * time.Second
)

// participant is one live connection inside a room. The same user may be
// connected more than once; id tells the connections apart while userId
// carries the authenticated identity.
type participant struct {
	id       string
	userId   string
	username string
	conn     Conn
	send     chan []byte
	done     chan struct{}
	limiter  *rate.Limiter
	room     *room
}

func (p *participant) info() PlayerInfo {
	return PlayerInfo{Id: p.userId, Username: p.username}
}

// enqueue hands a frame to the write pump. Broadcast is fire-and-forget: a
// participant whose queue is full just misses the frame, it never blocks the
// rest of the room.
func (p *participant) enqueue(data []byte) {
	select {
	case <-p.done:
	case p.send <- data:
	default:
	}
}

// readPump feeds inbound frames to the broker until the transport errors
// out, then runs the leave path. Frames over the rate limit are dropped.
func (p *participant) readPump(b *Broker) {
	for {
		data, err := p.conn.Read()
		if err != nil {
			break
		}
		if !p.limiter.Allow() {
			continue
		}
		b.dispatch(p, data)
	}

	b.leave(p)
}

// writePump drains the send queue onto the transport and keeps the
// connection alive with periodic pings. It exits when leave closes the send
// channel or the transport fails.
func (p *participant) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case data := <-p.send:
			if err := p.conn.Write(data); err != nil {
				return
			}
		case <-ticker.C:
			if err := p.conn.Ping(); err != nil {
				return
			}
		}
	}
}
