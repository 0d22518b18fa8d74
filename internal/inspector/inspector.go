// Package inspector streams game bus traffic to WebSocket clients for
// debugging.
package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/tilecore/internal/core/events/bus"
	"github.com/zeusync/tilecore/internal/core/models"
	"github.com/zeusync/tilecore/internal/core/observability/log"
)

const (
	clientBuffer = 64
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Frame is one published event as sent to clients.
type Frame struct {
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// EntityView is how entity payloads are rendered.
type EntityView struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Layer    models.Layer    `json:"layer"`
	Position models.Position `json:"position"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

var _ bus.EventBusObserver = (*Server)(nil)

type Server struct {
	addr   string
	logger log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	dropped atomic.Uint64
}

func New(addr string, logger log.Log) *Server {
	return &Server{
		addr:    addr,
		logger:  logger.With(log.String("component", "inspector")),
		clients: make(map[*client]struct{}),
	}
}

// Attach starts observing b.
func (s *Server) Attach(b bus.EventBus) {
	b.AddObserver(s)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", log.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	return err
}

// Clients is the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts frames skipped because a client was too slow.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

func (s *Server) OnPublish(eventType string, event bus.Event) {
	frame, err := json.Marshal(Frame{
		Type:      eventType,
		Source:    event.Source(),
		Timestamp: event.Timestamp(),
		Data:      view(event.Data()),
	})
	if err != nil {
		s.logger.Debug("event not encodable", log.String("type", eventType), log.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) OnDelivered(string, int, error, time.Duration) {}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer), done: make(chan struct{})}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("client connected", log.String("remote", conn.RemoteAddr().String()))

	go s.readLoop(c)
	s.writeLoop(c)
}

// readLoop only watches for the client going away.
func (s *Server) readLoop(c *client) {
	defer s.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	defer c.conn.Close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.remove(c)
				return
			}
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.done)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	list := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.mu.Unlock()
	for _, c := range list {
		s.remove(c)
	}
}

func view(data any) any {
	switch v := data.(type) {
	case *models.Entity:
		return EntityView{ID: uint64(v.ID()), Name: v.Name(), Layer: v.Layer(), Position: v.Position()}
	default:
		return v
	}
}
