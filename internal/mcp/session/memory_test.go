package session

import (
	"context"
	"testing"

	"github.com/amoylab/mockmcp/pkg/mcp"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMemoryStore_RegisterGetListUnregister(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 4)
	meta := &Meta{ID: "sid"}

	// register
	conn, err := s.Register(context.Background(), meta)
	assert.NoError(t, err)
	assert.NotNil(t, conn)

	// duplicate register should fail
	_, err = s.Register(context.Background(), meta)
	assert.Error(t, err)

	// get
	got, err := s.Get(context.Background(), "sid")
	assert.NoError(t, err)
	assert.Equal(t, "sid", got.Meta().ID)

	// list
	list, err := s.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	// unregister
	assert.NoError(t, s.Unregister(context.Background(), "sid"))
	_, err = s.Get(context.Background(), "sid")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// unregistering an unknown id is idempotent
	assert.NoError(t, s.Unregister(context.Background(), "sid"))
}

func TestMemoryConnection_PushAndReceive(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 2)
	conn, err := s.Register(context.Background(), &Meta{ID: "x"})
	assert.NoError(t, err)

	req := &mcp.JSONRPCRequest{JSONRPC: mcp.JSONRPCVersion, Id: float64(1), Method: mcp.ToolsList}
	assert.NoError(t, conn.Push(context.Background(), req))

	got := <-conn.Inbound()
	assert.Equal(t, mcp.ToolsList, got.Method)
}

func TestMemoryConnection_PushQueueFull(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 2)
	conn, err := s.Register(context.Background(), &Meta{ID: "x"})
	assert.NoError(t, err)

	assert.NoError(t, conn.Push(context.Background(), &mcp.JSONRPCRequest{Method: "a"}))
	assert.NoError(t, conn.Push(context.Background(), &mcp.JSONRPCRequest{Method: "b"}))
	// now full
	assert.Error(t, conn.Push(context.Background(), &mcp.JSONRPCRequest{Method: "c"}))
}

func TestMemoryConnection_CloseTwice(t *testing.T) {
	s := NewMemoryStore(zap.NewNop(), 1)
	conn, err := s.Register(context.Background(), &Meta{ID: "x"})
	assert.NoError(t, err)

	assert.NoError(t, conn.Close(context.Background()))
	assert.NoError(t, conn.Close(context.Background()))
}
