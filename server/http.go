/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/PivotLLM/clickup-mcp/global"
)

const shutdownTimeout = 10 * time.Second

// HTTPHandler returns the HTTP surface: streamable MCP on /mcp and a
// liveness probe on /healthz
func (s *Server) HTTPHandler() http.Handler {
	stream := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(global.DefaultHTTPEndpointPath),
		server.WithStateLess(true),
	)

	r := chi.NewRouter()
	r.Handle(global.DefaultHTTPEndpointPath, stream)
	r.Get("/healthz", s.serveHealthz)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: true,
	}).Handler(r)
}

func (s *Server) serveHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": global.Version,
		"tools":   len(s.toolOrder),
	})
}

// serveHTTP listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(s.HTTPHandler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Infof("Serving MCP over HTTP on %s%s", addr, global.DefaultHTTPEndpointPath)
		errChan <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnf("HTTP shutdown: %v", err)
			return err
		}
		return nil
	}
}
