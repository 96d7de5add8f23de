package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shudao.quest/internal/protocol"
)

// LiveFeed pushes leaderboard updates to connected spectators. Push-only:
// client frames are read and discarded to service control messages.
type LiveFeed struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []protocol.LeaderboardEntry
}

type client struct {
	out chan []byte
}

func NewLiveFeed(logger *log.Logger) *LiveFeed {
	return &LiveFeed{
		log:     logger,
		clients: map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // API is CORS-open
		},
	}
}

// Broadcast queues the new standings for every connected client. Slow
// clients are dropped rather than allowed to stall the feed.
func (s *LiveFeed) Broadcast(entries []protocol.LeaderboardEntry) {
	b, err := json.Marshal(protocol.LiveUpdate{Type: "LEADERBOARD", Leaderboard: entries})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = entries
	for c := range s.clients {
		select {
		case c.out <- b:
		default:
			close(c.out)
			delete(s.clients, c)
		}
	}
}

func (s *LiveFeed) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{out: make(chan []byte, 16)}

		s.mu.Lock()
		s.clients[c] = struct{}{}
		snapshot := s.last
		s.mu.Unlock()

		// Send current standings right away.
		if snapshot != nil {
			if b, err := json.Marshal(protocol.LiveUpdate{Type: "LEADERBOARD", Leaderboard: snapshot}); err == nil {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				_ = conn.WriteMessage(websocket.TextMessage, b)
			}
		}

		done := make(chan struct{})

		// Reader: discard client frames, detect disconnect.
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				s.drop(c)
				return
			case b, ok := <-c.out:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					s.drop(c)
					return
				}
			}
		}
	}
}

func (s *LiveFeed) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}
