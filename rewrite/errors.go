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

import "fmt"

// ParseErrorKind classifies why a line of a rule document was rejected.
type ParseErrorKind string

// Parse error kinds named in spec §7.
const (
	ErrUnknownDirective  ParseErrorKind = "unknown directive"
	ErrUnknownFlag       ParseErrorKind = "unknown flag"
	ErrBadFlagArg        ParseErrorKind = "bad flag argument"
	ErrBadRegex          ParseErrorKind = "bad regex"
	ErrBadEngineToggle   ParseErrorKind = "bad engine toggle"
	ErrUnterminatedQuote ParseErrorKind = "unterminated quote"
	ErrMissingArgument   ParseErrorKind = "missing argument"
)

// ParseError carries the offending line and line number alongside the
// classification, so a configuration loader can report every bad rule
// in one pass instead of stopping at the first (spec §7).
type ParseError struct {
	Kind ParseErrorKind
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v: %q", e.Line, e.Kind, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(kind ParseErrorKind, line int, text string, err error) *ParseError {
	return &ParseError{Kind: kind, Line: line, Text: text, Err: err}
}

// ParseErrors collects every ParseError found while parsing a document,
// per the loader policy in spec §7: a single bad rule must not silently
// drop the remainder of the file.
type ParseErrors []*ParseError

func (p ParseErrors) Error() string {
	if len(p) == 1 {
		return p[0].Error()
	}
	return fmt.Sprintf("%d rule errors, first: %v", len(p), p[0])
}
