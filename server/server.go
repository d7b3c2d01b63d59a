/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PivotLLM/clickup-mcp/bulk"
	"github.com/PivotLLM/clickup-mcp/clickup"
	"github.com/PivotLLM/clickup-mcp/config"
	"github.com/PivotLLM/clickup-mcp/docimport"
	"github.com/PivotLLM/clickup-mcp/global"
	"github.com/PivotLLM/clickup-mcp/logging"
	"github.com/PivotLLM/clickup-mcp/reporting"
	"github.com/PivotLLM/clickup-mcp/resolver"
	"github.com/PivotLLM/clickup-mcp/templates"
)

// Server wraps the MCP server with our services
type Server struct {
	config             *config.Config
	logger             *logging.Logger
	client             *clickup.Client
	resolver           *resolver.Resolver
	dispatcher         *bulk.Dispatcher
	validator          *templates.Validator
	reporter           *reporting.Reporter
	importer           *docimport.Importer
	mcpServer          *server.MCPServer
	tools              map[string]registeredTool
	toolOrder          []string
	markNonDestructive bool
	httpAddr           string
	startedAt          time.Time
	now                func() time.Time

	teamMu sync.Mutex
	teamID string
}

type registeredTool struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// Option configures a Server
type Option func(*Server)

// WithClient replaces the ClickUp client built from the configuration
func WithClient(c *clickup.Client) Option {
	return func(s *Server) {
		s.client = c
	}
}

// WithReporter replaces the default reporter
func WithReporter(r *reporting.Reporter) Option {
	return func(s *Server) {
		s.reporter = r
	}
}

// WithClock replaces time.Now for time windows and uptime
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHTTPAddr serves streamable HTTP on addr instead of stdio
func WithHTTPAddr(addr string) Option {
	return func(s *Server) {
		s.httpAddr = addr
	}
}

// New creates a new server instance
func New(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	srv := &Server{
		config:             cfg,
		logger:             logger,
		validator:          templates.New(logger),
		markNonDestructive: cfg.MarkNonDestructive(),
		tools:              make(map[string]registeredTool),
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.startedAt = srv.now()

	if srv.client == nil {
		srv.client = clickup.New(cfg.APIKey(),
			clickup.WithTimeout(cfg.RequestTimeout()),
			clickup.WithLogger(logger),
			clickup.WithUserAgent(global.ProgramName+"/"+global.Version),
		)
	}
	if srv.reporter == nil {
		srv.reporter = reporting.New(logger, reporting.WithClock(srv.now))
	}
	srv.resolver = resolver.New(srv.client, resolver.WithPatterns(cfg.IDPatterns()))
	srv.dispatcher = bulk.New(srv.resolver,
		bulk.WithMaxConcurrency(cfg.BulkConcurrency()),
		bulk.WithLogger(logger),
	)
	srv.importer = docimport.New(cfg.ImportDir(), docimport.WithLogger(logger))

	// Create MCP server
	srv.mcpServer = server.NewMCPServer(
		global.ProgramName,
		global.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	// Register tools
	if err := srv.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return srv, nil
}

// MCPServer exposes the underlying MCP server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// readOnlyTool creates a tool with read-only annotations
// ReadOnly: true, Destructive: false, OpenWorld: true
func (s *Server) readOnlyTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// defaultTool creates a tool with default annotations (non-destructive)
// ReadOnly: false, Destructive: false, OpenWorld: true
func (s *Server) defaultTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// destructiveTool creates a tool with destructive annotations
// ReadOnly: false, Destructive: true (unless markNonDestructive config is set), OpenWorld: true
func (s *Server) destructiveTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	destructive := true
	if s.markNonDestructive {
		destructive = false
	}
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(destructive),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// buildTool applies the annotations selected by the descriptor's kind
func (s *Server) buildTool(d toolDescriptor) mcp.Tool {
	switch d.kind {
	case kindReadOnly:
		return s.readOnlyTool(d.name, d.options...)
	case kindDestructive:
		return s.destructiveTool(d.name, d.options...)
	default:
		return s.defaultTool(d.name, d.options...)
	}
}

// registerTools registers every descriptor with the MCP server
func (s *Server) registerTools() error {
	for _, d := range s.toolDescriptors() {
		if _, dup := s.tools[d.name]; dup {
			return fmt.Errorf("duplicate tool name %s", d.name)
		}
		tool := s.buildTool(d)
		handler := s.validated(tool, d.handler)
		s.tools[d.name] = registeredTool{tool: tool, handler: handler}
		s.toolOrder = append(s.toolOrder, d.name)
		s.mcpServer.AddTool(tool, handler)
	}
	s.logger.Debugf("Registered %d tools", len(s.tools))
	return nil
}

// validated checks arguments against the tool's input schema before calling h
func (s *Server) validated(tool mcp.Tool, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.validator.ValidateArguments(tool.Name, tool.InputSchema, request.GetArguments())
		if err != nil {
			s.logger.Errorf("Schema validation for %s failed to run: %v", tool.Name, err)
			return s.errorResult(newCorrelationID(), err), nil
		}
		if !result.Valid {
			cid := newCorrelationID()
			s.logger.Warnf("Tool %s rejected [%s]: %s", tool.Name, cid, result.Error())
			return s.paramError(cid, "invalid arguments: "+result.Error()), nil
		}
		return h(ctx, request)
	}
}

// CallTool invokes a registered tool by name, with validation
func (s *Server) CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rt, ok := s.tools[request.Params.Name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %s", request.Params.Name)
	}
	return rt.handler(ctx, request)
}

// ToolNames returns the registered tool names in registration order
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.toolOrder...)
}

// Run starts the MCP server with graceful shutdown
func (s *Server) Run() error {
	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if s.httpAddr != "" {
			errChan <- s.serveHTTP(ctx, s.httpAddr)
			return
		}
		// ServeStdio returns when stdin is closed (EOF) or on error
		errChan <- server.ServeStdio(s.mcpServer)
	}()

	s.logger.Infof("MCP server started successfully")

	// Wait for shutdown signal, stdin close, or error
	select {
	case <-sigChan:
		s.logger.Info("Shutdown signal received")
		cancel()
		if s.httpAddr != "" {
			<-errChan
		}
		s.logger.Info("Server stopped")
		// Flush logs before exiting
		if err := s.logger.Sync(); err != nil {
			s.logger.Warnf("Failed to flush logs on shutdown: %v", err)
		}
		return nil

	case err := <-errChan:
		if err != nil {
			s.logger.Errorf("Server error: %v", err)
			return fmt.Errorf("server error: %w", err)
		}
		// nil error means stdin was closed (EOF) - normal exit
		s.logger.Info("Connection closed")
		s.logger.Info("Server exiting")
		return nil
	}
}
