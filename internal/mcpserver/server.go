// Package mcpserver is the JSON-RPC-over-stdio transport that fronts
// the tool surface (internal/toolsurface) for `shirokuma serve`. The
// wire protocol is deliberately thin: it decodes a line of JSON-RPC,
// hands the arguments to the dispatcher, and encodes whatever comes
// back. Every validation and business rule lives in toolsurface and
// the services it wires, not here.
package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shirokuma-dev/shirokuma/internal/toolsurface"
	"github.com/shirokuma-dev/shirokuma/internal/types"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "shirokuma"
)

// Version is reported in the initialize response. It defaults to "dev";
// nothing in this module assigns it.
var Version = "dev"

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type capabilities struct {
	Tools map[string]any `json:"tools,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type toolsListResult struct {
	Tools []toolDescriptor `json:"tools"`
}

type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Server holds the dispatcher and serves requests off a single reader
// and writer: one process, one stdio pair, no concurrent sessions
//.
type Server struct {
	dispatcher *toolsurface.Dispatcher
	log        *slog.Logger
}

func New(dispatcher *toolsurface.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{dispatcher: dispatcher, log: logger}
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted or ctx is canceled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WarnContext(ctx, "invalid JSON-RPC request", "error", err)
			continue
		}

		resp := s.handle(ctx, req)
		if resp.ID == nil && resp.Result == nil && resp.Error == nil {
			continue // notifications get no response
		}

		encoded, err := json.Marshal(resp)
		if err != nil {
			s.log.ErrorContext(ctx, "encoding response failed", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", encoded); err != nil {
			return fmt.Errorf("mcpserver: writing response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req jsonRPCRequest) jsonRPCResponse {
	switch req.Method {
	case "initialize":
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    capabilities{Tools: map[string]any{"listChanged": false}},
			ServerInfo:      serverInfo{Name: serverName, Version: Version},
		}}

	case "notifications/initialized":
		return jsonRPCResponse{}

	case "tools/list":
		var descriptors []toolDescriptor
		for _, t := range s.dispatcher.List() {
			descriptors = append(descriptors, toolDescriptor{
				Name: t.Name, Description: t.Description, InputSchema: t.Schema.JSONSchema(),
			})
		}
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: toolsListResult{Tools: descriptors}}

	case "tools/call":
		var params toolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, -32602, "Invalid params", err)
		}
		result, err := s.dispatcher.Call(ctx, params.Name, params.Arguments)
		if err != nil {
			return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: toolCallResult{
				Content: []content{{Type: "text", Text: errorText(err)}}, IsError: true,
			}}
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return errorResponse(req.ID, -32603, "Internal error", err)
		}
		return jsonRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: toolCallResult{
			Content: []content{{Type: "text", Text: string(encoded)}},
		}}

	default:
		return errorResponse(req.ID, -32601, "Method not found", fmt.Errorf("%s", req.Method))
	}
}

func errorResponse(id any, code int, message string, err error) jsonRPCResponse {
	return jsonRPCResponse{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message, Data: err.Error()}}
}

// errorText renders err's Kind alongside its message so a client can
// pattern-match on the taxonomy even from the plain-text content block
//.
func errorText(err error) string {
	if se, ok := err.(*types.Error); ok {
		return fmt.Sprintf("%s: %s", se.Kind, se.Message)
	}
	return err.Error()
}
