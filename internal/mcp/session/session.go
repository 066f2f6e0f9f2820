package session

import (
	"context"
	"time"

	"github.com/amoylab/mockmcp/pkg/mcp"
)

// Meta holds immutable metadata about a session.
type Meta struct {
	ID        string    `json:"id"`         // Unique session ID
	CreatedAt time.Time `json:"created_at"` // Timestamp of session creation
	Type      string    `json:"type"`       // Connection type, e.g., "sse"
}

// Connection represents an active session. The SSE stream handler owns the
// receive side of the inbound queue; the message POST endpoint feeds it.
type Connection interface {
	// Inbound returns the read side of the session's inbound message queue.
	Inbound() <-chan *mcp.JSONRPCRequest

	// Push enqueues an inbound message without waiting for it to be processed.
	Push(ctx context.Context, req *mcp.JSONRPCRequest) error

	// Close tears the session down. The inbound queue becomes unusable
	// afterwards.
	Close(ctx context.Context) error

	// Meta returns metadata associated with the session.
	Meta() *Meta
}

// Store manages the lifecycle and lookup of active sessions.
type Store interface {
	// Register creates and registers a new session.
	Register(ctx context.Context, meta *Meta) (Connection, error)

	// Get retrieves an active session by ID.
	Get(ctx context.Context, id string) (Connection, error)

	// Unregister removes and closes a session by ID.
	Unregister(ctx context.Context, id string) error

	// List returns all currently active sessions.
	List(ctx context.Context) ([]Connection, error)
}
