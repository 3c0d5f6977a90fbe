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

package rewrite

import (
	"os"
	"sync/atomic"
)

// EngineConfig names the configuration knobs spec §6 requires the
// engine to recognise: the rule-source file, programmatic extra rules
// prepended to it, the initial engine-on/off boolean, and the server
// identity/document-root reference threaded through every
// RequestContext.
type EngineConfig struct {
	RuleFile     string  `json:"rule_file,omitempty"`
	ExtraRules   []*Rule `json:"-"`
	EngineOn     bool    `json:"engine_on"`
	ServerIdent  string  `json:"server_identity,omitempty"`
	DocumentRoot string  `json:"document_root,omitempty"`
}

// Engine owns one compiled Document and applies it to requests. It is
// safe for concurrent use: Reload atomically swaps in a new Document,
// and readers never observe a torn set (spec §5).
type Engine struct {
	cfg  EngineConfig
	doc  atomic.Pointer[Document]
}

// NewEngine parses cfg's rule file (if set) plus its extra rules into
// an initial Document. It returns ParseErrors, collected rather than
// stopped-at-first, if the source is malformed.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	e := &Engine{cfg: cfg}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload re-reads the configured rule file (if any) and atomically
// publishes a new Document for subsequent Evaluate calls. In-flight
// evaluations keep using the Document they started with.
func (e *Engine) Reload() error {
	source := ""
	if e.cfg.RuleFile != "" {
		b, err := os.ReadFile(e.cfg.RuleFile)
		if err != nil {
			return err
		}
		source = string(b)
	}

	doc, err := Parse(source, e.cfg.ExtraRules, ParseOptions{EngineOn: e.cfg.EngineOn})
	if err != nil {
		return err
	}
	e.doc.Store(doc)
	return nil
}

// Document returns the currently-published rule set.
func (e *Engine) Document() *Document { return e.doc.Load() }

// Evaluate rewrites req against the currently-published Document. An
// empty DocumentRoot or ServerSoftware on req is filled from the
// engine's configuration; req itself is not modified.
func (e *Engine) Evaluate(req *RequestContext) *Result {
	c := *req
	if c.DocumentRoot == "" {
		c.DocumentRoot = e.cfg.DocumentRoot
	}
	if c.ServerSoftware == "" {
		c.ServerSoftware = e.cfg.ServerIdent
	}
	return Evaluate(e.doc.Load(), &c)
}
