package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/doc-tools-mcp/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{
		Version:    "test",
		Capability: &fakeCapability{},
		Editor:     config.EditorConfig{JPEGQuality: 90, MaxSessions: 4},
		Export:     config.ExportConfig{OutputDir: t.TempDir(), PDFFontSize: 11},
	})
}

func TestNew(t *testing.T) {
	s := New(Options{})
	require.NotNil(t, s)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.editors)
	assert.NotNil(t, s.exporter)
	assert.Nil(t, s.docs)
	assert.Equal(t, "dev", s.version)

	s = newTestServer(t)
	assert.NotNil(t, s.docs)
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, "2.0", req.JSONRPC)
		})
	}
}

func TestMCPResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(MCPResponse{JSONRPC: "2.0", ID: 1, Result: map[string]interface{}{"status": "ok"}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"error"`)

	data, err = json.Marshal(errorResponse(1, codeMethodNotFound, "Method not found", nil))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"result"`)
	assert.NotContains(t, string(data), `"data"`)
	assert.Contains(t, string(data), `"code":-32601`)
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result := resp.Result.(map[string]interface{})
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	info := result["serverInfo"].(map[string]interface{})
	assert.Equal(t, "doc-tools-mcp", info["name"])
	assert.Equal(t, "test", info["version"])
	assert.Contains(t, result["capabilities"], "tools")
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "p", Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "p", resp.ID)
	assert.Equal(t, map[string]interface{}{}, resp.Result)
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	tools := resp.Result.(map[string]interface{})["tools"].([]Tool)
	assert.Len(t, tools, len(GetToolDefinitions()))
}

func TestHandleRequest_Notifications(t *testing.T) {
	s := newTestServer(t)
	for _, m := range []string{"notifications/initialized", "notifications/cancelled"} {
		assert.Nil(t, s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: m}), m)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "resources/list")
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, s.Serve(context.Background(), strings.NewReader(in), &out))

	dec := json.NewDecoder(&out)
	var responses []MCPResponse
	for dec.More() {
		var r MCPResponse
		require.NoError(t, dec.Decode(&r))
		responses = append(responses, r)
	}
	require.Len(t, responses, 3)

	assert.Equal(t, float64(1), responses[0].ID)
	assert.Nil(t, responses[0].Error)

	require.NotNil(t, responses[1].Error)
	assert.Equal(t, codeParseError, responses[1].Error.Code)
	assert.Nil(t, responses[1].ID)

	assert.Equal(t, float64(2), responses[2].ID)
	assert.Nil(t, responses[2].Error)
}

func TestServe_ClosesSessions(t *testing.T) {
	s := newTestServer(t)
	_, err := s.executeTool(context.Background(), "editor_open", mustJSON(t, map[string]interface{}{
		"image_base64": testImageBase64(t, 20, 20),
	}))
	require.NoError(t, err)
	require.Equal(t, 1, s.editors.Len())

	require.NoError(t, s.Serve(context.Background(), strings.NewReader(""), &bytes.Buffer{}))
	assert.Equal(t, 0, s.editors.Len())
}

func TestServe_CancelledContext(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, out.Len())
}

func TestServe_ReturnsWhileReadPending(t *testing.T) {
	s := newTestServer(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	_, err := s.executeTool(context.Background(), "editor_open", mustJSON(t, map[string]interface{}{
		"image_base64": testImageBase64(t, 10, 10),
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(ctx, pr, io.Discard)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the context was cancelled")
	}
	assert.Equal(t, 0, s.editors.Len())
}

func TestServe_ScannerError(t *testing.T) {
	s := newTestServer(t)
	pr, pw := io.Pipe()
	require.NoError(t, pw.CloseWithError(errors.New("stdin broken")))

	err := s.Serve(context.Background(), pr, io.Discard)
	assert.ErrorContains(t, err, "stdin broken")
}
