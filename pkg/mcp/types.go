package mcp

import "encoding/json"

type (
	// JSONRPCBaseResult is the common envelope shared by responses and errors.
	JSONRPCBaseResult struct {
		JSONRPC string `json:"jsonrpc"`
		// ID echoes the request id verbatim, preserving its JSON type.
		ID any `json:"id"`
	}

	// JSONRPCRequest represents an inbound JSON-RPC message. A nil Id marks
	// a notification that must never be answered.
	JSONRPCRequest struct {
		JSONRPC string          `json:"jsonrpc"`
		Id      any             `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params"`
	}

	// JSONRPCResponse represents a successful JSON-RPC response
	JSONRPCResponse struct {
		JSONRPCBaseResult
		Result any `json:"result"`
	}

	// JSONRPCError represents the error member of an error response
	JSONRPCError struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	// JSONRPCErrorSchema represents a JSON-RPC error response
	JSONRPCErrorSchema struct {
		JSONRPCBaseResult
		Error JSONRPCError `json:"error"`
	}

	// ProgressParams carries the payload of a notifications/progress message.
	// ProgressToken is present on the wire only when the originating call
	// supplied one.
	ProgressParams struct {
		Progress      float64 `json:"progress"`
		Total         float64 `json:"total"`
		Message       string  `json:"message"`
		ProgressToken any     `json:"progressToken,omitempty"`
	}

	// ProgressNotification represents a notifications/progress message.
	// It carries no id and is never answered.
	ProgressNotification struct {
		JSONRPC string         `json:"jsonrpc"`
		Method  string         `json:"method"`
		Params  ProgressParams `json:"params"`
	}

	// RequestMeta represents the _meta information for a request
	RequestMeta struct {
		// Progress token for tracking request progress, string or number
		ProgressToken any `json:"progressToken"`
	}

	// BaseRequestParams represents the base parameters for all requests
	BaseRequestParams struct {
		Meta RequestMeta `json:"_meta"`
	}

	// CallToolParams represents parameters for a tools/call request
	CallToolParams struct {
		BaseRequestParams
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	// ToolSchema represents a tool definition
	ToolSchema struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}

	// ListToolsResult represents the result of a tools/list request
	ListToolsResult struct {
		Tools []ToolSchema `json:"tools"`
	}

	// TextContent represents a text content item
	TextContent struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	// CallToolResult represents the result of a tools/call request
	CallToolResult struct {
		Content []TextContent `json:"content"`
	}

	// ImplementationSchema describes the name and version of an MCP implementation
	ImplementationSchema struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}

	// ToolsCapabilitySchema represents tools-related capabilities
	ToolsCapabilitySchema struct {
		ListChanged bool `json:"listChanged,omitempty"`
	}

	// ServerCapabilitiesSchema represents capabilities the server supports
	ServerCapabilitiesSchema struct {
		Tools ToolsCapabilitySchema `json:"tools"`
	}

	// InitializedResult represents the result of an initialize request
	InitializedResult struct {
		ProtocolVersion string                   `json:"protocolVersion"`
		Capabilities    ServerCapabilitiesSchema `json:"capabilities"`
		ServerInfo      ImplementationSchema     `json:"serverInfo"`
	}
)

// NewTextResult wraps a single text payload into a CallToolResult.
func NewTextResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []TextContent{
			{
				Type: "text",
				Text: text,
			},
		},
	}
}

// NewResponse builds a successful response echoing the request id.
func NewResponse(id any, result any) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPCBaseResult: JSONRPCBaseResult{
			JSONRPC: JSONRPCVersion,
			ID:      id,
		},
		Result: result,
	}
}

// NewError builds an error response echoing the request id.
func NewError(id any, code int, message string) *JSONRPCErrorSchema {
	return &JSONRPCErrorSchema{
		JSONRPCBaseResult: JSONRPCBaseResult{
			JSONRPC: JSONRPCVersion,
			ID:      id,
		},
		Error: JSONRPCError{
			Code:    code,
			Message: message,
		},
	}
}

// NewProgressNotification builds a notifications/progress message.
func NewProgressNotification(params ProgressParams) *ProgressNotification {
	return &ProgressNotification{
		JSONRPC: JSONRPCVersion,
		Method:  NotificationProgress,
		Params:  params,
	}
}

// IsNotification reports whether the request carries no id and therefore
// must not produce a response.
func (r *JSONRPCRequest) IsNotification() bool {
	return r.Id == nil
}
