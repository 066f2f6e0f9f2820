package core

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleMCP implements the stateless streamable transport: one POST carries
// one JSON-RPC message and the response is an SSE-formatted stream scoped to
// this request. No session id is involved and the stream closes as soon as
// the invocation finishes.
func (s *Server) handleMCP(c *gin.Context) {
	s.logRequestHeaders(c, "streamable request")

	req, ok := s.readJSONRPC(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	writeFrame := func(data []byte) error {
		if _, err := fmt.Fprintf(c.Writer, "event: message\ndata: %s\n\n", data); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if err := s.composeStream(c.Request.Context(), req, writeFrame); err != nil {
		s.logger.Debug("streamable request ended early",
			zap.String("method", req.Method),
			zap.Error(err))
	}
}
