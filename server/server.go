// Copyright 2015 Matthew Holt and The Caddy Authors
// Copyright 2026 The httpd Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server implements the thin, event-driven HTTP listener that
// hands each request to a fileserver.Handler (spec §1: the underlying
// HTTP listener and TLS/port binding are external collaborators; this
// package is the minimal real listener that plays that role).
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/riverpath/httpd/firewall"
)

// Config carries everything needed to start listening.
type Config struct {
	Addr string
	Port int

	// OpenFirewallPort, when true, has the server ask firewall to admit
	// traffic to Port for as long as the server runs.
	OpenFirewallPort bool
}

// Server wraps a net/http.Server and the optional firewall rule that
// admits traffic to it.
type Server struct {
	cfg    Config
	http   *http.Server
	opener *firewall.PortOpener
	log    *zap.Logger
}

// New builds a Server that dispatches to handler.
func New(cfg Config, handler http.Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Serve opens the firewall port (if configured) and blocks serving
// HTTP until the listener fails or Shutdown is called.
func (s *Server) Serve() error {
	if s.cfg.OpenFirewallPort {
		opener, err := firewall.NewPortOpener(s.cfg.Port)
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		if err := opener.Open(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		s.opener = opener
	}

	s.log.Info("starting server", zap.String("addr", s.cfg.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener and closes the firewall
// port opened by Serve, if any.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	if s.opener != nil {
		if err := s.opener.Close(); err != nil {
			s.log.Warn("failed to close firewall port", zap.Error(err))
		}
	}
	return nil
}
