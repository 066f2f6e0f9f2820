package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/amoylab/mockmcp/pkg/mcp"

	"go.uber.org/zap"
)

// ErrSessionNotFound is returned when a session is not found
var ErrSessionNotFound = fmt.Errorf("session not found")

// MemoryStore implements Store using in-memory storage
type MemoryStore struct {
	logger    *zap.Logger
	queueSize int
	mu        sync.RWMutex
	conns     map[string]*MemoryConnection
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory session store. queueSize bounds each
// session's inbound queue; Push fails rather than blocks when it is full.
func NewMemoryStore(logger *zap.Logger, queueSize int) *MemoryStore {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &MemoryStore{
		logger:    logger.Named("session.store.memory"),
		queueSize: queueSize,
		conns:     make(map[string]*MemoryConnection),
	}
}

// Register implements Store.Register
func (s *MemoryStore) Register(_ context.Context, meta *Meta) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conns[meta.ID]; exists {
		return nil, fmt.Errorf("session already exists: %s", meta.ID)
	}

	conn := &MemoryConnection{
		meta:    meta,
		inbound: make(chan *mcp.JSONRPCRequest, s.queueSize),
	}
	s.conns[meta.ID] = conn

	return conn, nil
}

// Get implements Store.Get
func (s *MemoryStore) Get(_ context.Context, id string) (Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conn, nil
}

// Unregister implements Store.Unregister. Unregistering an unknown id is
// not an error so that cleanup paths stay idempotent.
func (s *MemoryStore) Unregister(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil
	}

	if err := conn.Close(context.Background()); err != nil {
		s.logger.Error("failed to close session",
			zap.String("id", id),
			zap.Error(err))
	}
	delete(s.conns, id)
	return nil
}

// List implements Store.List
func (s *MemoryStore) List(_ context.Context) ([]Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conns := make([]Connection, 0, len(s.conns))
	for _, conn := range s.conns {
		conns = append(conns, conn)
	}
	return conns, nil
}

// MemoryConnection implements Connection using an in-process channel
type MemoryConnection struct {
	meta    *Meta
	mu      sync.RWMutex
	closed  bool
	inbound chan *mcp.JSONRPCRequest
}

var _ Connection = (*MemoryConnection)(nil)

// Inbound implements Connection.Inbound
func (c *MemoryConnection) Inbound() <-chan *mcp.JSONRPCRequest {
	return c.inbound
}

// Push implements Connection.Push. It never waits for the consumer. Pushing
// onto a closed session fails instead of panicking; the lock keeps a
// lookup-then-push from racing a concurrent Close.
func (c *MemoryConnection) Push(_ context.Context, req *mcp.JSONRPCRequest) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrSessionNotFound
	}
	select {
	case c.inbound <- req:
		return nil
	default:
		return fmt.Errorf("inbound queue is full")
	}
}

// Close implements Connection.Close
func (c *MemoryConnection) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.inbound)
	}
	return nil
}

// Meta implements Connection.Meta
func (c *MemoryConnection) Meta() *Meta {
	return c.meta
}
