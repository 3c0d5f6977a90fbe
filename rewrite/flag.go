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
	"strings"
	"time"
)

// FlagKind tags which variant a Flag carries. Rather than one interface
// implementation per flag (the teacher's style for its handler types),
// a rewrite flag is modelled as a single struct with a kind tag and the
// union of payload fields each variant needs — matching the "single
// tagged variant" design called for by a compiled rule's flag set,
// which must be structurally comparable and cheap to dedupe.
type FlagKind int

// Flag variants. F and G are folded directly into Status at parse time
// (spec calls them "shorthand for Status(403)/Status(410)"), so they do
// not get their own kind.
const (
	FlagChained FlagKind = iota
	FlagCookie
	FlagEnvVar
	FlagLast
	FlagNext
	FlagNoCase
	FlagNoEscape
	FlagNoQuery
	FlagQueryAppend
	FlagStatus
	FlagSkip
	FlagServerString
	FlagMimeType
	FlagNoPlus
)

// DefaultNextCap is the restart budget applied to a bare N flag.
const DefaultNextCap = 32000

// DefaultCookieTTL is applied to a CO flag with no explicit ttl segment.
const DefaultCookieTTL = 24 * time.Hour

// Flag is one rewrite flag attached to a Rule. Equality is structural:
// two Flags are == iff their Kind and payload fields match, which is
// what rule deduplication (spec §4.2) relies on.
type Flag struct {
	Kind FlagKind

	// Name is the Cookie or EnvVar name.
	Name string
	// Value is the Cookie value, EnvVar value, ServerString override,
	// or MimeType override, depending on Kind.
	Value string
	// TTL is the Cookie lifetime, valid only when Kind == FlagCookie.
	TTL time.Duration
	// Count is Next's restart cap, Skip's rule count, or Status's code,
	// depending on Kind.
	Count int
}

// NewChained returns the C flag: this rule belongs to a chain with the
// previous one and is skipped if the previous rule did not match.
func NewChained() Flag { return Flag{Kind: FlagChained} }

// NewCookie returns a CO flag: emit a cookie with the given name, value
// and time-to-live, computed against the request time at apply time.
func NewCookie(name, value string, ttl time.Duration) Flag {
	return Flag{Kind: FlagCookie, Name: name, Value: value, TTL: ttl}
}

// NewEnvVar returns an E flag: set a request-scoped environment
// variable.
func NewEnvVar(name, value string) Flag {
	return Flag{Kind: FlagEnvVar, Name: name, Value: value}
}

// NewLast returns an L (or END) flag: stop evaluation after this rule
// succeeds.
func NewLast() Flag { return Flag{Kind: FlagLast} }

// NewNext returns an N flag: restart evaluation from the first rule
// with the current URI. The largest cap among a document's N flags, at
// most DefaultNextCap, limits the whole evaluation to cap rule
// evaluations per entry (see Evaluate); restarts are not counted on
// their own.
func NewNext(cap int) Flag { return Flag{Kind: FlagNext, Count: cap} }

// NewNoCase returns an NC flag: case-insensitive match for this rule
// only.
func NewNoCase() Flag { return Flag{Kind: FlagNoCase} }

// NewNoEscape returns an NE flag: do not percent-encode the
// substitution result.
func NewNoEscape() Flag { return Flag{Kind: FlagNoEscape} }

// NewNoQuery returns an NQ (or QSD) flag: drop the original query
// string from the rewritten URI instead of carrying it forward.
func NewNoQuery() Flag { return Flag{Kind: FlagNoQuery} }

// NewQueryAppend returns a QSA flag: append the original query string
// to the substitution result.
func NewQueryAppend() Flag { return Flag{Kind: FlagQueryAppend} }

// NewStatus returns an F, G, or R flag collapsed to its HTTP status
// code.
func NewStatus(code int) Flag { return Flag{Kind: FlagStatus, Count: code} }

// NewSkip returns an S flag: on success, skip the next n rules.
func NewSkip(n int) Flag { return Flag{Kind: FlagSkip, Count: n} }

// NewServerString returns an SS flag: override the server identity
// string.
func NewServerString(s string) Flag { return Flag{Kind: FlagServerString, Value: s} }

// NewMimeType returns a T flag: override the response content type,
// lower-cased, defaulting to text/plain when empty.
func NewMimeType(t string) Flag {
	if t == "" {
		t = "text/plain"
	}
	return Flag{Kind: FlagMimeType, Value: strings.ToLower(t)}
}

// NewNoPlus returns a BNP flag: do not substitute spaces with '+' in
// the rewritten URI. Distinct from Chained despite the teacher's bug
// of constructing the same value for both (spec §9).
func NewNoPlus() Flag { return Flag{Kind: FlagNoPlus} }

// dedupeFlags removes structurally-equal duplicate flags, keeping the
// first occurrence and its position (spec §4.2).
func dedupeFlags(flags []Flag) []Flag {
	if len(flags) < 2 {
		return flags
	}
	out := make([]Flag, 0, len(flags))
	seen := make(map[Flag]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
