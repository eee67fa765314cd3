package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/capability"
	"github.com/ironsheep/doc-tools-mcp/internal/config"
	"github.com/ironsheep/doc-tools-mcp/internal/document"
	"github.com/ironsheep/doc-tools-mcp/internal/editor"
	"github.com/ironsheep/doc-tools-mcp/internal/export"
	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// maxRequestBytes bounds one request line. Base64 images make lines large.
const maxRequestBytes = 64 * 1024 * 1024

// Server handles MCP protocol communication
type Server struct {
	cache    *imaging.SourceCache
	pipeline *imaging.Pipeline
	editors  *editor.Store
	docs     *document.Service
	exporter *export.Exporter
	log      *zap.Logger
	version  string
}

// Options wires the server's collaborators. A nil Capability disables the
// document tools.
type Options struct {
	Version    string
	Capability capability.Capability
	Editor     config.EditorConfig
	Export     config.ExportConfig
	Logger     *zap.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	pipeline := imaging.NewPipeline(opts.Editor.JPEGQuality)
	s := &Server{
		cache:    imaging.NewSourceCache(),
		pipeline: pipeline,
		editors:  editor.NewStore(opts.Editor.MaxSessions, pipeline, log.Named("editor")),
		exporter: export.New(opts.Export, log.Named("export")),
		log:      log.Named("server"),
		version:  version,
	}
	if opts.Capability != nil {
		s.docs = document.NewService(opts.Capability, log.Named("document"))
	}
	return s
}

// Run serves requests from stdin to stdout until stdin closes or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w. Requests are handled in order. Serve returns when r is exhausted or
// ctx is done, even while a read is pending.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	defer s.editors.CloseAll()

	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(r, done)

	s.log.Info("MCP server started", zap.String("version", s.version))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var line []byte
		select {
		case <-ctx.Done():
			s.log.Info("MCP server stopped", zap.Error(ctx.Err()))
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				s.log.Info("MCP server stopped")
				return nil
			}
			line = l
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", zap.Error(err))
			resp = errorResponse(nil, codeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(ctx, &req)
		}

		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", zap.Error(err))
			}
		}
	}
}

// readLines scans r in its own goroutine and sends each non-empty line.
// The lines channel closes when r is exhausted, after which readErr yields
// the scanner error. The goroutine stops sending once done is closed.
func readLines(r io.Reader, done <-chan struct{}) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)
		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()
	return lines, readErr
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "doc-tools-mcp",
				"version": s.version,
			},
		},
	}
}

// handleToolsList returns every tool definition.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
