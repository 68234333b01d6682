package protocol

import (
	"encoding/json"
	"fmt"
)

// MethodType names the JSON-RPC methods the server understands
type MethodType string

const (
	MethodInitialize    MethodType = "initialize"
	MethodInitialized   MethodType = "notifications/initialized"
	MethodPing          MethodType = "ping"
	MethodToolsList     MethodType = "tools/list"
	MethodToolsCall     MethodType = "tools/call"
	MethodResourcesList MethodType = "resources/list"
	MethodResourcesRead MethodType = "resources/read"
	MethodPromptsList   MethodType = "prompts/list"
	MethodPromptsGet    MethodType = "prompts/get"
	MethodShutdown      MethodType = "shutdown"
)

const JsonRpcVersion = "2.0"

// JsonRpcRequest is a JSON-RPC 2.0 request. A request without an ID is a notification.
type JsonRpcRequest struct {
	JsonRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// JsonRpcResponse carries exactly one of Result or Error. ID echoes the
// request and is null when the request could not be read.
type JsonRpcResponse struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JsonRpcError   `json:"error,omitempty"`
	ID      any             `json:"id"`
}

type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error codes. The first five are fixed by JSON-RPC 2.0, the rest come from
// the implementation-defined -32000 to -32099 range.
const (
	ErrParse          = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603

	// unknown session, strategy, prompt or resource
	ErrNotFound = -32001
)

func (e *JsonRpcError) Error() string {
	return fmt.Sprintf("jsonrpc error: code=%d message=%s", e.Code, e.Message)
}

// NewJsonRpcResponse marshals result into a success response
func NewJsonRpcResponse(result any, id any) (*JsonRpcResponse, error) {
	resp := &JsonRpcResponse{JsonRPC: JsonRpcVersion, ID: id}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
		resp.Result = raw
	}
	return resp, nil
}

func NewJsonRpcErrorResponse(code int, message string, data any, id any) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRPC: JsonRpcVersion,
		Error:   &JsonRpcError{Code: code, Message: message, Data: data},
		ID:      id,
	}
}

// ParseJsonRpcRequest decodes a request and checks its version
func ParseJsonRpcRequest(data []byte) (*JsonRpcRequest, error) {
	var req JsonRpcRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %q", req.JsonRPC)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("request has no method")
	}
	return &req, nil
}

// ParseJsonRpcResponse decodes a response and checks its version
func ParseJsonRpcResponse(data []byte) (*JsonRpcResponse, error) {
	var resp JsonRpcResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if resp.JsonRPC != JsonRpcVersion {
		return nil, fmt.Errorf("invalid JSON-RPC version: %q", resp.JsonRPC)
	}
	return &resp, nil
}

// IsNotification reports whether the request expects no response
func (r *JsonRpcRequest) IsNotification() bool {
	return r.ID == nil
}

func (r *JsonRpcRequest) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("Error marshaling request: %v", err)
	}
	return string(b)
}

func (r *JsonRpcResponse) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf("Error marshaling response: %v", err)
	}
	return string(b)
}
