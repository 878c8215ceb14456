// Package mcp implements a minimal Model Context Protocol stdio server:
// line-delimited JSON-RPC 2.0 handling initialize, tools/list and
// tools/call. Tool semantics live in the hn, firecrawl and search packages;
// this layer only marshals inputs and outputs.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/alexfazio/hn-firecrawl-mcp/hn"
	"github.com/alexfazio/hn-firecrawl-mcp/search"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "hn-firecrawl-service"
	serverVersion   = "1.0.0"

	// JSON-RPC error codes.
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32000

	maxLineBytes = 10 << 20
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toolDesc describes one exposed tool for tools/list.
type toolDesc struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Options are the dispatcher-level knobs. Zero fields take defaults.
type Options struct {
	// MaxDepth bounds comment-tree resolution for get_hnews_item.
	MaxDepth int
	// TopN is the listing size for get_hnews_popular_discussions.
	TopN int
	// SearchLimit is the default result cap for search_hnews.
	SearchLimit int
	// MaxContentChars truncates firecrawl_scrape_url output.
	MaxContentChars int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 5
	}
	if o.TopN <= 0 {
		o.TopN = 30
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 10
	}
	if o.MaxContentChars <= 0 {
		o.MaxContentChars = 8000
	}
	return o
}

// Server dispatches the four tools over stdio.
type Server struct {
	hn       *hn.Client
	scraper  search.Scraper
	searcher *search.Orchestrator
	opts     Options
	log      *slog.Logger
	tools    []toolDesc
}

func NewServer(hnClient *hn.Client, scraper search.Scraper, searcher *search.Orchestrator, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		hn:       hnClient,
		scraper:  scraper,
		searcher: searcher,
		opts:     opts.withDefaults(),
		log:      log,
	}
	s.tools = []toolDesc{
		{
			Name:        "get_hnews_item",
			Description: "Retrieve a Hacker News item by ID with its comment tree resolved to a bounded depth.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"item_id": map[string]any{"type": "integer", "description": "Numeric Hacker News item ID"},
				},
				"required": []string{"item_id"},
			},
		},
		{
			Name:        "get_hnews_popular_discussions",
			Description: fmt.Sprintf("Retrieve the current top %d Hacker News discussions with scores, authors and URLs.", s.opts.TopN),
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "search_hnews",
			Description: "Search Hacker News discussions matching a free-text query.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string", "description": "Search terms"},
					"limit": map[string]any{"type": "integer", "description": "Maximum number of results"},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "firecrawl_scrape_url",
			Description: "Extract clean, readable content from any web page as markdown.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string", "description": "Complete web address to scrape"},
				},
				"required": []string{"url"},
			},
		},
	}
	return s
}

// Run processes requests from r until EOF or context cancellation.
// Responses are written to w one JSON object per line; logs go elsewhere so
// the protocol stream stays clean.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxLineBytes)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req rpcRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Error("unparseable request", "error", err)
			if err := enc.Encode(rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}}); err != nil {
				return err
			}
			continue
		}

		// Notifications get no response.
		if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
			continue
		}

		resp := s.handle(ctx, &req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handle(ctx context.Context, req *rpcRequest) rpcResponse {
	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
		}
	case "ping":
		resp.Result = map[string]any{}
	case "tools/list":
		resp.Result = map[string]any{"tools": s.tools}
	case "tools/call":
		var params struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: "invalid tools/call params"}
			return resp
		}
		resp.Result = s.callTool(ctx, params.Name, params.Arguments)
		if resp.Result == nil {
			resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown tool %q", params.Name)}
		}
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}
	return resp
}

// callTool dispatches one tool invocation. It returns nil for unknown tool
// names; every known tool returns a tool result, with failures flagged via
// isError rather than protocol errors.
func (s *Server) callTool(ctx context.Context, name string, args map[string]any) any {
	callID := uuid.NewString()
	log := s.log.With("call_id", callID, "tool", name)
	log.Info("tool call")

	var payload any
	var err error
	switch name {
	case "get_hnews_item":
		payload, err = s.getItem(ctx, args)
	case "get_hnews_popular_discussions":
		payload, err = s.popularDiscussions(ctx)
	case "search_hnews":
		payload, err = s.searchDiscussions(ctx, args)
	case "firecrawl_scrape_url":
		payload, err = s.scrapeURL(ctx, args)
	default:
		return nil
	}

	if err != nil {
		kind := errorKind(err)
		log.Error("tool call failed", "kind", kind, "error", err)
		return toolError(kind, err)
	}
	log.Info("tool call complete")
	return toolResult(payload)
}

func toolResult(payload any) map[string]any {
	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return toolError("internal", err)
	}
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(text)}},
	}
}

func toolError(kind string, err error) map[string]any {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{"kind": kind, "message": err.Error()},
	})
	return map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(body)}},
		"isError": true,
	}
}
