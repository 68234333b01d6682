package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/htft/internal/logger"
	"github.com/richard-senior/htft/pkg/insight"
	"github.com/richard-senior/htft/pkg/prompts"
	"github.com/richard-senior/htft/pkg/protocol"
	"github.com/richard-senior/htft/pkg/resources"
	"github.com/richard-senior/htft/pkg/tools"
)

// toolPrefix is stripped from tool names sent by clients that namespace them
const toolPrefix = "mcp___"

// Transport carries JSON-RPC messages between the server and one client
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}

// HandlerFunc handles one JSON-RPC method. A nil result is answered with
// an empty object.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Options configures a Server
type Options struct {
	Name    string
	Version string
	Toolbox *tools.Toolbox
	// Language is the default for the strategy-insights prompt
	Language string
}

// Server represents an MCP server
type Server struct {
	transport Transport
	info      protocol.ServerInfo
	handlers  map[string]HandlerFunc

	mu        sync.RWMutex
	tools     []protocol.Tool
	toolFns   map[string]tools.Handler
	prompts   *prompts.Registry
	resources *resources.Registry
}

// New builds a server on t with the strategy tools, prompts and resources registered
func New(t Transport, o Options) *Server {
	if o.Name == "" {
		o.Name = "htft"
	}
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	if o.Toolbox == nil {
		o.Toolbox = tools.NewToolbox(tools.Options{})
	}
	if o.Language == "" {
		o.Language = insight.LanguagePortuguese
	}

	s := &Server{
		transport: t,
		info:      protocol.ServerInfo{Name: o.Name, Version: o.Version},
		handlers:  make(map[string]HandlerFunc),
		toolFns:   make(map[string]tools.Handler),
		prompts:   prompts.NewRegistry(),
		resources: resources.NewRegistry(),
	}

	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	s.handlers[string(protocol.MethodResourcesList)] = s.handleResourcesList
	s.handlers[string(protocol.MethodResourcesRead)] = s.handleResourcesRead
	s.handlers[string(protocol.MethodPromptsList)] = s.handlePromptsList
	s.handlers[string(protocol.MethodPromptsGet)] = s.handlePromptsGet

	s.RegisterDefaultTools(o.Toolbox)
	s.RegisterDefaultResources(o.Toolbox)
	s.RegisterDefaultPrompts(o.Toolbox, o.Language)
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler tools.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.toolFns[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// GetTools returns the list of registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]protocol.Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

func (s *Server) RegisterDefaultTools(tb *tools.Toolbox) {
	logger.Info("Registering default tools...")
	for _, t := range tb.Tools() {
		s.RegisterTool(t.Definition, t.Handle)
	}
}

func (s *Server) RegisterDefaultResources(tb *tools.Toolbox) {
	logger.Info("Registering default resources...")
	s.resources.Register(resources.StrategyCatalogue(tb.Engine().Catalogue()))
	s.resources.Register(resources.CSVFormat())
}

func (s *Server) RegisterDefaultPrompts(tb *tools.Toolbox, language string) {
	logger.Info("Registering default prompts...")
	if err := s.prompts.Register(prompts.StrategyInsights(tb.Ranked, language)); err != nil {
		logger.Error("Failed to register prompt", err)
	}
	if err := s.prompts.Register(prompts.ExplainStrategy(), nil); err != nil {
		logger.Error("Failed to register prompt", err)
	}
}

// Start processes requests until the client disconnects, ctx is cancelled
// or the process receives SIGINT or SIGTERM
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting MCP server", s.info.Name, s.info.Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessRequests reads and answers requests until EOF or shutdown. A
// request that is valid JSON but not valid JSON-RPC is answered with an
// error and skipped; unreadable JSON ends the loop.
func (s *Server) ProcessRequests(ctx context.Context) error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var rpcErr *protocol.JsonRpcError
			if !errors.As(err, &rpcErr) {
				return err
			}
			logger.Warn("Rejected request:", rpcErr.Message)
			if werr := s.transport.WriteResponse(protocol.NewJsonRpcErrorResponse(rpcErr.Code, rpcErr.Message, nil, nil)); werr != nil {
				return werr
			}
			if rpcErr.Code == protocol.ErrParse {
				return fmt.Errorf("unreadable request stream: %w", err)
			}
			continue
		}

		resp := s.handleRequest(ctx, req)
		if resp != nil {
			if err := s.transport.WriteResponse(resp); err != nil {
				return err
			}
		}

		if req.Method == string(protocol.MethodShutdown) {
			logger.Info("Shutdown requested")
			return nil
		}
	}
}

// handleRequest returns nil for notifications
func (s *Server) handleRequest(ctx context.Context, req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)
	logger.Debug("Full request:", req.String())

	notification := req.IsNotification() || strings.HasPrefix(req.Method, "notifications/")

	if req.Method == string(protocol.MethodShutdown) {
		if notification {
			return nil
		}
		resp, _ := protocol.NewJsonRpcResponse(map[string]any{}, req.ID)
		return resp
	}

	handler := s.handlers[req.Method]
	if handler == nil {
		if notification {
			logger.Info("Ignoring notification:", req.Method)
			return nil
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	result, err := handler(ctx, req.Params)
	if notification {
		if err != nil {
			logger.Warn("Notification handler failed:", req.Method, err)
		}
		return nil
	}
	if err != nil {
		var rpcErr *protocol.JsonRpcError
		if errors.As(err, &rpcErr) {
			return protocol.NewJsonRpcErrorResponse(rpcErr.Code, rpcErr.Message, rpcErr.Data, req.ID)
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, err.Error(), nil, req.ID)
	}
	if result == nil {
		result = map[string]any{}
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, err.Error(), nil, req.ID)
	}
	logger.Debug("Full response:", resp.String())
	return resp
}

func invalidParams(format string, args ...any) error {
	return &protocol.JsonRpcError{Code: protocol.ErrInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v", err)
	}
	return nil
}

func (s *Server) handleInitialize(_ context.Context, params json.RawMessage) (any, error) {
	var p struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	version := protocol.ProtocolVersion
	if p.ProtocolVersion != "" {
		version = p.ProtocolVersion
	}
	logger.Info("Protocol version to use:", version)

	s.mu.RLock()
	defer s.mu.RUnlock()

	capabilities := map[string]any{}
	if len(s.tools) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	if len(s.prompts.List()) > 0 {
		capabilities["prompts"] = map[string]any{"listChanged": false}
	}
	if len(s.resources.List()) > 0 {
		capabilities["resources"] = map[string]any{"listChanged": false, "subscribe": false}
	}

	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    capabilities,
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) handleInitialized(context.Context, json.RawMessage) (any, error) {
	logger.Info("Client initialised")
	return nil, nil
}

func (s *Server) handlePing(context.Context, json.RawMessage) (any, error) {
	return map[string]any{}, nil
}

func (s *Server) handleToolsList(context.Context, json.RawMessage) (any, error) {
	return struct {
		Tools []protocol.Tool `json:"tools"`
	}{Tools: s.GetTools()}, nil
}

// handleToolsCall reports tool failures inside the result so the client
// model can read them; only an unknown tool is a protocol error
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.ToolCallParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	name := strings.TrimPrefix(p.Name, toolPrefix)
	s.mu.RLock()
	handler := s.toolFns[name]
	s.mu.RUnlock()
	if handler == nil {
		return nil, invalidParams("tool not found: %s", p.Name)
	}

	logger.Info("Tool call requested for:", name)
	result, err := handler(ctx, p.Arguments)
	if err != nil {
		logger.Warn("Tool failed:", name, err)
		return protocol.ErrorResult(err.Error()), nil
	}
	return result, nil
}

func (s *Server) handleResourcesList(context.Context, json.RawMessage) (any, error) {
	return struct {
		Resources []protocol.Resource `json:"resources"`
	}{Resources: s.resources.List()}, nil
}

func (s *Server) handleResourcesRead(_ context.Context, params json.RawMessage) (any, error) {
	var p protocol.ResourceReadParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	res, err := s.resources.Read(p.URI)
	if errors.Is(err, resources.ErrResourceNotFound) {
		return nil, &protocol.JsonRpcError{Code: protocol.ErrNotFound, Message: err.Error()}
	}
	return res, err
}

func (s *Server) handlePromptsList(context.Context, json.RawMessage) (any, error) {
	return struct {
		Prompts []protocol.Prompt `json:"prompts"`
	}{Prompts: s.prompts.List()}, nil
}

func (s *Server) handlePromptsGet(ctx context.Context, params json.RawMessage) (any, error) {
	var p protocol.PromptGetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	logger.Info("Prompt get requested for:", p.Name)

	res, err := s.prompts.Get(ctx, p.Name, p.Arguments)
	switch {
	case errors.Is(err, prompts.ErrPromptNotFound), errors.Is(err, prompts.ErrMissingArgument):
		return nil, invalidParams("%v", err)
	case err != nil:
		return nil, err
	}
	return res, nil
}
