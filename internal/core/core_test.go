package core

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/amoylab/mockmcp/internal/common/config"
	"github.com/amoylab/mockmcp/internal/mcp/session"
	"github.com/amoylab/mockmcp/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, mutate ...func(*config.MockServerConfig)) (*Server, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	// instant search steps keep tests fast
	cfg.Tools.SearchStepDelay = time.Nanosecond
	for _, fn := range mutate {
		fn(cfg)
	}

	logger := zap.NewNop()
	store := session.NewMemoryStore(logger, cfg.Session.QueueSize)
	registry := tools.NewRegistry(logger, cfg.Tools)
	return NewServer(logger, cfg, store, registry, nil), store
}

// sseEvent is one parsed frame of a text/event-stream body.
type sseEvent struct {
	event   string
	data    string
	comment string
}

// readSSEEvent reads the next frame, including bare comment frames.
func readSSEEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			if ev.event != "" || ev.data != "" || ev.comment != "" {
				return ev
			}
		case strings.HasPrefix(line, ":"):
			ev.comment = strings.TrimSpace(strings.TrimPrefix(line, ":"))
		case strings.HasPrefix(line, "event: "):
			ev.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// parseSSEBody splits a complete (already terminated) stream body into frames.
func parseSSEBody(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var ev sseEvent
	flush := func() {
		if ev.event != "" || ev.data != "" || ev.comment != "" {
			events = append(events, ev)
			ev = sseEvent{}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			ev.comment = strings.TrimSpace(strings.TrimPrefix(line, ":"))
		case strings.HasPrefix(line, "event: "):
			ev.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
	flush()
	return events
}

func decodeJSON(t *testing.T, data string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &m))
	return m
}

func jsonDecode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
