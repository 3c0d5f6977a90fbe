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
	"fmt"

	"github.com/dlclark/regexp2"
)

// Rule is an immutable match-and-rewrite (or, when conditionInput is
// non-empty, match-only) entry. Construct with NewRule or NewCondition;
// there is no exported way to mutate one afterward, matching the
// immutability spec §3 requires.
type Rule struct {
	pattern        string // original pattern text, kept for equality and messages
	matchRegex     *regexp2.Regexp
	outputExpr     string // replacement template; empty string for conditions
	conditionInput string // raw (unexpanded) condition input; empty for plain rules
	flags          []Flag
}

// IsCondition reports whether r is a RewriteCond entry (a predicate
// gating the rules that follow) rather than a RewriteRule entry.
func (r *Rule) IsCondition() bool { return r.conditionInput != "" }

// Flags returns the rule's deduplicated, order-preserved flag set.
func (r *Rule) Flags() []Flag { return r.flags }

// HasFlag reports whether kind is present among r's flags.
func (r *Rule) HasFlag(kind FlagKind) bool {
	for _, f := range r.flags {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// Flag returns the first flag of the given kind and true, or the zero
// Flag and false if none is present.
func (r *Rule) Flag(kind FlagKind) (Flag, bool) {
	for _, f := range r.flags {
		if f.Kind == kind {
			return f, true
		}
	}
	return Flag{}, false
}

// NewRule builds a RewriteRule entry. pattern and replacement default to
// "^$" and "$0" respectively when empty, per spec §3. The regex is
// compiled eagerly (case-insensitively if flags contains NoCase) so a
// bad pattern is rejected at construction time, never at evaluation
// time.
func NewRule(pattern, replacement string, flags []*Flag) (*Rule, error) {
	return newRule("", pattern, replacement, flags)
}

// NewCondition builds a RewriteCond entry. conditionInput is the raw,
// unexpanded %{...}-bearing source text; it is expanded fresh against
// each request's context at evaluation time (spec §4.4).
func NewCondition(conditionInput, pattern string, flags []*Flag) (*Rule, error) {
	if conditionInput == "" {
		return nil, fmt.Errorf("rewrite: condition input must not be empty")
	}
	return newRule(conditionInput, pattern, "", flags)
}

func newRule(conditionInput, pattern, replacement string, rawFlags []*Flag) (*Rule, error) {
	if pattern == "" {
		pattern = "^$"
	}
	if replacement == "" && conditionInput == "" {
		replacement = "$0"
	}

	flags := make([]Flag, 0, len(rawFlags))
	for _, f := range rawFlags {
		if f == nil {
			return nil, fmt.Errorf("rewrite: nil flag in flag set")
		}
		flags = append(flags, *f)
	}
	flags = dedupeFlags(flags)

	opts := regexp2.None
	for _, f := range flags {
		if f.Kind == FlagNoCase {
			opts = regexp2.IgnoreCase
		}
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("rewrite: bad regex %q: %w", pattern, err)
	}

	return &Rule{
		pattern:        pattern,
		matchRegex:     re,
		outputExpr:     replacement,
		conditionInput: conditionInput,
		flags:          flags,
	}, nil
}

// equalKey is a structural identity used by document-level
// deduplication (spec §4.3): two parsed entries with the same key are
// the same rule.
func (r *Rule) equalKey() string {
	kind := "rule"
	if r.IsCondition() {
		kind = "cond"
	}
	key := fmt.Sprintf("%s|%s|%s|%s|", kind, r.conditionInput, r.pattern, r.outputExpr)
	for _, f := range r.flags {
		key += fmt.Sprintf("%d:%s:%s:%d:%d;", f.Kind, f.Name, f.Value, f.TTL, f.Count)
	}
	return key
}
