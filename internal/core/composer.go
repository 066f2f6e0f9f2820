package core

import (
	"context"
	"encoding/json"

	"github.com/amoylab/mockmcp/pkg/mcp"

	"go.uber.org/zap"
)

// progressBufferSize bounds the per-invocation progress queue. The composer
// drains concurrently, so the buffer only has to absorb short bursts.
const progressBufferSize = 64

// frameWriter emits one SSE message frame on the outbound stream.
type frameWriter func(data []byte) error

// composeStream runs one JSON-RPC message to completion, interleaving the
// progress notifications the handler produces with its final response on the
// outbound stream.
//
// The dispatch runs as a background goroutine holding the send side of the
// progress channel; this loop holds the receive side. Every progress send
// happens before the handler returns, and the handler returns before the
// result is observed here, so once the result arrives the remaining progress
// events are all buffered already: draining the channel before writing the
// final response preserves the progress-before-result order.
//
// When the client disconnects mid-invocation the stream stops, but the
// dispatch keeps running detached and its output is discarded.
func (s *Server) composeStream(ctx context.Context, req *mcp.JSONRPCRequest, write frameWriter) error {
	progressCh := make(chan *mcp.ProgressNotification, progressBufferSize)
	resultCh := make(chan any, 1)

	notify := func(params mcp.ProgressParams) {
		select {
		case progressCh <- mcp.NewProgressNotification(params):
		case <-ctx.Done():
			// stream is gone, drop the event
		}
	}

	go func() {
		resultCh <- s.dispatch(context.WithoutCancel(ctx), req, notify)
	}()

	for {
		select {
		case n := <-progressCh:
			if err := s.writeJSON(write, n); err != nil {
				return err
			}
		case res := <-resultCh:
			// flush the progress events still queued, then the response
			for {
				select {
				case n := <-progressCh:
					if err := s.writeJSON(write, n); err != nil {
						return err
					}
				default:
					if res == nil {
						// notification: nothing to answer
						return nil
					}
					return s.writeJSON(write, res)
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Server) writeJSON(write frameWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal stream event", zap.Error(err))
		return err
	}
	return write(data)
}
