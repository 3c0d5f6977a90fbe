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

// Command webd runs the rewrite-driven file server, or validates a
// rule file without starting one.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riverpath/httpd/fileserver"
	"github.com/riverpath/httpd/geoip"
	"github.com/riverpath/httpd/rewrite"
	"github.com/riverpath/httpd/server"
)

var (
	ruleFile   string
	docRoot    string
	addr       string
	geoDBPath  string
	openFwPort bool
)

func main() {
	root := &cobra.Command{
		Use:   "webd",
		Short: "A mod_rewrite-style HTTP file server",
		Long: `webd serves static files from a document root, applying an
Apache mod_rewrite-style rule file to every request before it is
served.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&ruleFile, "rules", "", "path to the rewrite rule file")
	root.PersistentFlags().StringVar(&docRoot, "root", ".", "document root to serve files from")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the server in the foreground",
		RunE:  runServer,
	}
	runCmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	runCmd.Flags().StringVar(&geoDBPath, "geoip-db", "", "path to a MaxMind country database")
	runCmd.Flags().BoolVar(&openFwPort, "open-firewall-port", false, "manage an iptables rule admitting the listen port")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse the rule file and report errors",
		RunE:  runValidate,
	}

	root.AddCommand(runCmd, validateCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func runValidate(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ruleFile == "" {
		return fmt.Errorf("validate: --rules is required")
	}
	source, err := os.ReadFile(ruleFile)
	if err != nil {
		return err
	}

	doc, err := rewrite.Parse(string(source), nil, rewrite.ParseOptions{EngineOn: true})
	if err != nil {
		if perrs, ok := err.(rewrite.ParseErrors); ok {
			for _, e := range perrs {
				log.Error("parse error", zap.Error(e))
			}
			return fmt.Errorf("validate: %d error(s) found", len(perrs))
		}
		return err
	}

	log.Info("rule file is valid", zap.Int("rules", len(doc.Entries)), zap.String("file", ruleFile))
	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := rewrite.NewEngine(rewrite.EngineConfig{
		RuleFile:     ruleFile,
		EngineOn:     true,
		DocumentRoot: docRoot,
	})
	if err != nil {
		return fmt.Errorf("run: loading rules: %w", err)
	}

	handler := &fileserver.Handler{
		Root:   http.Dir(docRoot),
		Engine: engine,
		Log:    log,
		Gzip:   true,
	}

	if geoDBPath != "" {
		lookup, err := geoip.Open(geoDBPath)
		if err != nil {
			return fmt.Errorf("run: opening geoip database: %w", err)
		}
		defer lookup.Close()
		handler.Engine = &geoAwareEngine{engine: engine, lookup: lookup}
	}

	port, err := portFromAddr(addr)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	srv := server.New(server.Config{
		Addr:             addr,
		Port:             port,
		OpenFirewallPort: openFwPort,
	}, handler, log)

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	return srv.Serve()
}

// geoAwareEngine wraps a rewrite.Engine, resolving GeoIPCountry on the
// request context before evaluating, keeping the geoip lookup entirely
// outside the pure evaluator (spec §5's non-blocking guidance).
type geoAwareEngine struct {
	engine *rewrite.Engine
	lookup *geoip.Lookup
}

func (g *geoAwareEngine) Evaluate(ctx *rewrite.RequestContext) *rewrite.Result {
	ctx.GeoIPCountry = g.lookup.Country(ctx.RemoteAddr)
	return g.engine.Evaluate(ctx)
}

func portFromAddr(addr string) (int, error) {
	i := len(addr) - 1
	for i >= 0 && addr[i] != ':' {
		i--
	}
	if i < 0 {
		return 0, fmt.Errorf("address %q has no port", addr)
	}
	var port int
	if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err != nil {
		return 0, fmt.Errorf("address %q has an invalid port: %w", addr, err)
	}
	return port, nil
}
