package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"SketchBoard/internal/persist"
	"SketchBoard/internal/store"
)

// Path is where the drawing server accepts websocket connections.
const Path = "/draw"

// Request operations.
const (
	OpSave   = "save"
	OpLoad   = "load"
	OpDelete = "delete"
)

// Request is one client call. ID pairs it with its Response.
type Request struct {
	ID       uint64            `json:"id"`
	Op       string            `json:"op"`
	UserID   string            `json:"userId"`
	Snapshot *persist.Snapshot `json:"snapshot,omitempty"`
}

// Response status codes follow HTTP.
type Response struct {
	ID       uint64            `json:"id"`
	Status   int               `json:"status"`
	Error    string            `json:"error,omitempty"`
	Snapshot *persist.Snapshot `json:"snapshot,omitempty"`
}

// Peer is a connected client.
type Peer struct {
	Conn *websocket.Conn
}

// PeerManager tracks the server's open connections.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
}

func NewPeerManager() *PeerManager {
	return &PeerManager{
		peers: make(map[string]*Peer),
	}
}

func (pm *PeerManager) Add(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	pm.peers[addr] = peer
	log.Printf("[NET] Client connected from %s", addr)
}

func (pm *PeerManager) Remove(peer *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	addr := peer.Conn.RemoteAddr().String()
	delete(pm.peers, addr)
	log.Printf("[NET] Client %s disconnected", addr)
}

func (pm *PeerManager) Count() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// CloseAll drops every connection.
func (pm *PeerManager) CloseAll() {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, p := range pm.peers {
		p.Conn.Close()
	}
}

// Server exposes a DocumentStore over websocket connections.
type Server struct {
	store    store.DocumentStore
	peers    *PeerManager
	upgrader websocket.Upgrader
}

func NewServer(docs store.DocumentStore) *Server {
	return &Server{
		store: docs,
		peers: NewPeerManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// LAN tool: any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Peers() *PeerManager { return s.peers }

// ServeHTTP upgrades the connection and answers requests in order until
// the client goes away.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[NET] Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	peer := &Peer{Conn: conn}
	s.peers.Add(peer)
	defer func() {
		s.peers.Remove(peer)
		conn.Close()
	}()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[NET] Read from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		resp := s.handle(r.Context(), req)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("[NET] Write to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID, Status: http.StatusOK}
	fail := func(status int, err error) Response {
		resp.Status = status
		resp.Error = err.Error()
		return resp
	}
	if req.UserID == "" {
		return fail(http.StatusBadRequest, store.ErrNoUser)
	}

	switch req.Op {
	case OpSave:
		if req.Snapshot == nil {
			return fail(http.StatusBadRequest, errors.New("missing snapshot"))
		}
		created, err := s.store.Upsert(ctx, req.UserID, *req.Snapshot)
		if err != nil {
			log.Printf("[NET] Save for %s failed: %v", req.UserID, err)
			return fail(http.StatusInternalServerError, err)
		}
		if created {
			resp.Status = http.StatusCreated
		}
	case OpLoad:
		rec, err := s.store.Get(ctx, req.UserID)
		if errors.Is(err, persist.ErrNotFound) {
			return fail(http.StatusNotFound, err)
		}
		if err != nil {
			log.Printf("[NET] Load for %s failed: %v", req.UserID, err)
			return fail(http.StatusInternalServerError, err)
		}
		resp.Snapshot = &rec.Snapshot
	case OpDelete:
		if err := s.store.Delete(ctx, req.UserID); err != nil {
			return fail(http.StatusInternalServerError, err)
		}
	default:
		return fail(http.StatusBadRequest, fmt.Errorf("unknown op %q", req.Op))
	}
	return resp
}

// ListenAndServe serves on addr until ctx is cancelled. ready, if not nil,
// receives the bound address once the listener is up.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle(Path, s)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.peers.CloseAll()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[NET] Drawing server listening on %s", ln.Addr())
	if ready != nil {
		ready(ln.Addr())
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
