package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amoylab/mockmcp/internal/mcp/session"
	"github.com/amoylab/mockmcp/pkg/mcp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleSSE handles long-lived SSE session connections. Each connection gets
// its own session id and inbound queue; messages arrive through the POST
// side-channel and are processed one at a time, so an invocation's whole
// event sequence finishes before the next inbound message starts.
func (s *Server) handleSSE(c *gin.Context) {
	// Auth-related headers are observed but never enforced.
	s.logRequestHeaders(c, "sse connection request")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	sessionID := uuid.New().String()
	meta := &session.Meta{
		ID:        sessionID,
		CreatedAt: time.Now(),
		Type:      "sse",
	}

	conn, err := s.sessions.Register(c.Request.Context(), meta)
	if err != nil {
		s.logger.Error("failed to register session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create session"})
		return
	}
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("session started", zap.String("session_id", sessionID))

	defer func() {
		// Cleanup runs on every exit path and tolerates the session being
		// gone already.
		_ = s.sessions.Unregister(context.Background(), sessionID)
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
		s.logger.Info("session closed", zap.String("session_id", sessionID))
	}()

	// The endpoint event hands the client the bare message path for this
	// session; clients resolve it against the connection origin themselves.
	if _, err := fmt.Fprintf(c.Writer, "event: endpoint\ndata: /message/%s\n\n", sessionID); err != nil {
		return
	}
	c.Writer.Flush()

	writeFrame := func(data []byte) error {
		if _, err := fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", data); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	for {
		keepAlive := time.NewTimer(s.cfg.SSE.KeepAliveInterval)

		select {
		case req, ok := <-conn.Inbound():
			keepAlive.Stop()
			if !ok {
				return
			}
			s.logger.Debug("processing session message",
				zap.String("session_id", sessionID),
				zap.String("method", req.Method))
			if err := s.composeStream(c.Request.Context(), req, writeFrame); err != nil {
				s.logger.Debug("session stream ended",
					zap.String("session_id", sessionID),
					zap.Error(err))
				return
			}

		case <-keepAlive.C:
			// Idle sessions stay open; comments keep intermediaries from
			// timing the stream out.
			if _, err := fmt.Fprint(c.Writer, ": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			keepAlive.Stop()
			return

		case <-s.shutdownCh:
			keepAlive.Stop()
			return
		}
	}
}

// handleMessage receives a JSON-RPC message for an existing session and
// enqueues it. It replies as soon as the message is queued; the response
// itself travels over the session's SSE stream.
func (s *Server) handleMessage(c *gin.Context) {
	sessionID := c.Param("sessionId")

	conn, err := s.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		s.logger.Debug("message for unknown session", zap.String("session_id", sessionID))
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	req, ok := s.readJSONRPC(c)
	if !ok {
		return
	}

	if err := conn.Push(c.Request.Context(), req); err != nil {
		s.logger.Warn("failed to enqueue message",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Session unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// readJSONRPC parses the request body as a single JSON-RPC message. On
// malformed input it answers 400 itself and reports !ok.
func (s *Server) readJSONRPC(c *gin.Context) (*mcp.JSONRPCRequest, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Failed to read body: %v", err)})
		return nil, false
	}

	var req mcp.JSONRPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.logger.Debug("invalid JSON-RPC body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Invalid JSON: %v", err)})
		return nil, false
	}
	return &req, true
}
