package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shirokuma-dev/shirokuma/internal/toolsurface"
)

func testDispatcher() *toolsurface.Dispatcher {
	d := toolsurface.NewDispatcher()
	d.Register(toolsurface.Tool{
		Name:        "echo",
		Description: "echoes its value argument",
		Schema:      toolsurface.Schema{"value": {Type: toolsurface.TypeString, Required: true}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return map[string]any{"value": args["value"]}, nil
		},
	})
	return d
}

func runLines(t *testing.T, srv *Server, lines ...string) []jsonRPCResponse {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	require.NoError(t, srv.Serve(context.Background(), in, &out))

	var responses []jsonRPCResponse
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp jsonRPCResponse
		require.NoError(t, dec.Decode(&resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServeInitializeReturnsProtocolInfo(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	require.Len(t, responses, 1)
	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result["protocolVersion"])
}

func TestServeNotificationGetsNoResponse(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Empty(t, responses)
}

func TestServeToolsListIncludesRegisteredTool(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	require.Len(t, responses, 1)
	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	tools, ok := result["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	first := tools[0].(map[string]any)
	assert.Equal(t, "echo", first["name"])
}

func TestServeToolsCallRoundTripsSuccess(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"echo","arguments":{"value":"hi"}}}`)

	require.Len(t, responses, 1)
	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Nil(t, result["isError"])
	content := result["content"].([]any)[0].(map[string]any)
	assert.Contains(t, content["text"], "hi")
}

func TestServeToolsCallUnknownToolIsErrorContent(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)

	require.Len(t, responses, 1)
	result, ok := responses[0].Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["isError"])
}

func TestServeUnknownMethodReturnsRPCError(t *testing.T) {
	srv := New(testDispatcher(), nil)
	responses := runLines(t, srv, `{"jsonrpc":"2.0","id":5,"method":"bogus"}`)

	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, -32601, responses[0].Error.Code)
}
