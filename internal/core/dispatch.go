package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amoylab/mockmcp/internal/tools"
	"github.com/amoylab/mockmcp/pkg/mcp"
	"github.com/amoylab/mockmcp/pkg/version"

	"go.uber.org/zap"
)

// dispatch routes one inbound JSON-RPC message to its handler and returns the
// response to stream, or nil when the message is a notification and must not
// be answered. Handler failures never propagate: they come back as JSON-RPC
// error responses.
func (s *Server) dispatch(ctx context.Context, req *mcp.JSONRPCRequest, notify func(mcp.ProgressParams)) any {
	s.logger.Debug("dispatching request",
		zap.String("method", req.Method),
		zap.Any("id", req.Id))
	if s.metrics != nil {
		s.metrics.McpReqDone(req.Method)
	}

	if req.Method == mcp.NotificationInitialized || req.IsNotification() {
		return nil
	}

	switch req.Method {
	case mcp.Initialize:
		return mcp.NewResponse(req.Id, mcp.InitializedResult{
			ProtocolVersion: mcp.LatestProtocolVersion,
			Capabilities: mcp.ServerCapabilitiesSchema{
				Tools: mcp.ToolsCapabilitySchema{},
			},
			ServerInfo: mcp.ImplementationSchema{
				Name:    "mockmcp",
				Version: version.Get(),
			},
		})

	case mcp.ToolsList:
		return mcp.NewResponse(req.Id, mcp.ListToolsResult{
			Tools: s.tools.Descriptors(),
		})

	case mcp.ToolsCall:
		return s.dispatchToolCall(ctx, req, notify)

	default:
		return mcp.NewError(req.Id, mcp.ErrorCodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) dispatchToolCall(ctx context.Context, req *mcp.JSONRPCRequest, notify func(mcp.ProgressParams)) any {
	var params mcp.CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return mcp.NewError(req.Id, mcp.ErrorCodeInvalidParams, "Invalid tool call parameters")
		}
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	// The token is attached only when the caller supplied one; otherwise
	// progress events go out without a progressToken field at all.
	token := params.Meta.ProgressToken
	progress := func(p, total float64, message string) {
		pp := mcp.ProgressParams{Progress: p, Total: total, Message: message}
		if token != nil {
			pp.ProgressToken = token
		}
		notify(pp)
	}

	start := time.Now()
	result, err := s.tools.Call(ctx, params.Name, args, progress)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ToolExecDone(params.Name, "error", start)
		}
		if errors.Is(err, tools.ErrUnknownTool) {
			return mcp.NewError(req.Id, mcp.ErrorCodeMethodNotFound,
				fmt.Sprintf("Unknown tool: %s", params.Name))
		}
		s.logger.Warn("tool execution failed",
			zap.String("tool", params.Name),
			zap.Error(err))
		return mcp.NewError(req.Id, mcp.ErrorCodeInternalError,
			fmt.Sprintf("Tool execution error: %s", err))
	}

	if s.metrics != nil {
		s.metrics.ToolExecDone(params.Name, "success", start)
	}
	return mcp.NewResponse(req.Id, result)
}
