package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amoylab/mockmcp/internal/common/config"
	"github.com/amoylab/mockmcp/pkg/mcp"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrUnknownTool is returned when a tool name is not registered
var ErrUnknownTool = errors.New("unknown tool")

// ProgressFunc reports one progress step of a running tool. Handlers may call
// it zero or more times with a monotonically increasing progress value and a
// fixed total, always before returning.
type ProgressFunc func(progress, total float64, message string)

// Handler executes one tool call. args is the parsed arguments object;
// missing optional properties fall back to their declared defaults inside the
// handler. progress is never nil.
type Handler func(ctx context.Context, args gjson.Result, progress ProgressFunc) (*mcp.CallToolResult, error)

type tool struct {
	schema  mcp.ToolSchema
	handler Handler
}

// Registry maps tool names to handlers. The tool set is fixed at startup.
type Registry struct {
	logger    *zap.Logger
	stepDelay time.Duration
	order     []string
	tools     map[string]tool
}

// NewRegistry creates a registry pre-populated with the reference tools.
func NewRegistry(logger *zap.Logger, cfg config.ToolsConfig) *Registry {
	r := &Registry{
		logger:    logger.Named("tools"),
		stepDelay: cfg.SearchStepDelay,
		tools:     make(map[string]tool),
	}
	r.registerBuiltins()
	return r
}

// Register adds a tool to the registry, replacing any previous registration
// under the same name.
func (r *Registry) Register(schema mcp.ToolSchema, h Handler) {
	if _, exists := r.tools[schema.Name]; !exists {
		r.order = append(r.order, schema.Name)
	}
	r.tools[schema.Name] = tool{schema: schema, handler: h}
}

// Descriptors returns the static tool list in registration order.
func (r *Registry) Descriptors() []mcp.ToolSchema {
	out := make([]mcp.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].schema)
	}
	return out
}

// Call runs the named tool. A nil progress func is replaced with a no-op so
// handlers always run to completion, simply producing no progress events.
// Handler panics surface as ordinary errors.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage, progress ProgressFunc) (result *mcp.CallToolResult, err error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if progress == nil {
		progress = func(float64, float64, string) {}
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked",
				zap.String("tool", name),
				zap.Any("panic", rec))
			result = nil
			err = fmt.Errorf("%v", rec)
		}
	}()

	return t.handler(ctx, gjson.ParseBytes(args), progress)
}
