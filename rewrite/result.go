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

import "time"

// CookieDirective is one cookie the server should set on the response,
// with an already-frozen expiry (spec §4.6: expiration = request_time +
// ttl, computed once by the engine so the server never has to know the
// original ttl).
type CookieDirective struct {
	Value      string
	Expiration time.Time
}

// Result is the Evaluator's output for one request (spec §3, §4.6). The
// server applies it to the request before dispatching to the rest of
// the pipeline; see fileserver.Handler for a Sink implementation.
type Result struct {
	// URI is the final rewritten URI. Equal to OriginalURI if nothing
	// matched, or if every match happened to reproduce the input.
	URI string
	// OriginalURI echoes the request's URI before any rewriting, so
	// callers can cheaply detect a no-op result.
	OriginalURI string

	Cookies map[string]CookieDirective
	EnvVars map[string]string

	ServerStringOverride *string
	MimeTypeOverride     *string
	StatusOverride       *int
}

// IsNoop reports whether applying r would have no observable effect on
// the request or response, per the "no-op" contract in spec §6.
func (r *Result) IsNoop() bool {
	return r.URI == r.OriginalURI &&
		len(r.Cookies) == 0 &&
		len(r.EnvVars) == 0 &&
		r.ServerStringOverride == nil &&
		r.MimeTypeOverride == nil &&
		r.StatusOverride == nil
}

func newResult(originalURI string) *Result {
	return &Result{
		URI:         originalURI,
		OriginalURI: originalURI,
		Cookies:     make(map[string]CookieDirective),
		EnvVars:     make(map[string]string),
	}
}
