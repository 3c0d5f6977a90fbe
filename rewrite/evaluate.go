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
	"net/url"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// evalState is the Evaluator's local, per-request working set (spec
// §4.5). It is never shared between calls to Evaluate; there is no
// mutable state anywhere else in the package, which is what makes
// concurrent evaluation across requests safe (spec §5).
type evalState struct {
	scheme, authority, path, query, fragment string

	chained       bool
	previousOK    bool
	skip          int
	restartBudget int
}

func newEvalState(ctx *RequestContext, entries []*Rule) *evalState {
	authority := ctx.Authority
	if authority == "" {
		authority = ctx.ServerName
	}
	return &evalState{
		scheme:        ctx.Scheme,
		authority:     authority,
		path:          ctx.Path,
		query:         ctx.Query,
		fragment:      ctx.Fragment,
		restartBudget: initialRestartBudget(entries),
	}
}

// initialRestartBudget scans every Next flag once up front and returns
// the largest cap seen, hard-capped at DefaultNextCap regardless of
// what an individual rule requested (spec §5: "The default budget
// (32000) must be enforced as a hard upper bound against pathological
// rule sets"). Unlike a running "restart_budget = max(restart_budget,
// cap)" updated as each Next flag fires mid-evaluation, this also
// counts the caps of Next flags on rules that never match.
func initialRestartBudget(entries []*Rule) int {
	budget := 0
	for _, r := range entries {
		for _, f := range r.flags {
			if f.Kind == FlagNext && f.Count > budget {
				budget = f.Count
			}
		}
	}
	if budget == 0 {
		return 0
	}
	if budget > DefaultNextCap {
		budget = DefaultNextCap
	}
	return budget
}

func (st *evalState) uriString() string {
	u := st.path
	if st.query != "" {
		u += "?" + st.query
	}
	if st.fragment != "" {
		u += "#" + st.fragment
	}
	if st.scheme != "" {
		u = st.scheme + "://" + st.authority + u
	}
	return u
}

// Evaluate runs doc against ctx and returns the Rewrite Result (spec
// §4.5). It never blocks and never panics through its public boundary
// (spec §7): every runtime failure — a malformed substitution, an
// unparseable intermediate URI — is coerced to "this rule did not
// match" and evaluation continues.
func Evaluate(doc *Document, ctx *RequestContext) *Result {
	original := ctx.RequestURI()
	result := newResult(original)
	entries := doc.Entries

	st := newEvalState(ctx, entries)
	maxSteps := len(entries)
	if st.restartBudget > 0 {
		maxSteps = len(entries) * st.restartBudget
	}

	steps := 0
	i := 0
	for i < len(entries) {
		if steps >= maxSteps {
			break
		}
		steps++

		r := entries[i]

		if st.skip > 0 {
			st.skip--
			i++
			continue
		}

		var matched bool
		switch {
		case st.chained && !st.previousOK:
			// Remainder of the chain is skipped; previousOK stays false.
		case r.IsCondition():
			matched = st.evalCondition(r, ctx)
		default:
			matched = st.evalRule(r)
		}
		st.previousOK = matched
		// A Condition always gates the entry immediately following it,
		// whether or not that entry carries an explicit Chained flag —
		// that is the only way a RewriteCond can gate its RewriteRule,
		// since spec's own pseudocode only consults the *current*
		// entry's flags. Gating a Rule onto another Rule still
		// requires an explicit Chained flag; it does not cascade past
		// one hop, matching the "subsequent non-chained rules still
		// evaluate normally" note in spec §9.
		st.chained = r.HasFlag(FlagChained) || r.IsCondition()

		if matched {
			restart, last := st.applyEffects(r, ctx, result)
			if restart {
				i = 0
				st.skip = 0
				st.chained = false
				st.previousOK = false
				continue
			}
			if last {
				break
			}
		}

		i++
	}

	result.URI = st.uriString()
	return result
}

// evalCondition expands r's condition input against the request's
// static context (never the evolving working URI — R is a fixed input
// to the Evaluator per spec §4.5) and reports whether it matches.
func (st *evalState) evalCondition(r *Rule, ctx *RequestContext) bool {
	input := expandVariables(r.conditionInput, ctx)
	m, err := r.matchRegex.FindStringMatch(input)
	if err != nil {
		return false
	}
	return m != nil
}

// evalRule matches r's pattern against the current working URI and, on
// a match, rewrites st's URI components in place (spec §4.5 step 2).
func (st *evalState) evalRule(r *Rule) bool {
	candidate := percentDecode(st.path)
	candidate = strings.TrimPrefix(candidate, "/")

	m, err := r.matchRegex.FindStringMatch(candidate)
	if err != nil || m == nil {
		return false
	}

	substituted := substitute(r.outputExpr, candidate, m)
	st.rewrite(r, substituted)
	return true
}

// substitute expands $0..$9 backreferences in expr against m. An expr
// of exactly "-" leaves the matched input unchanged (spec §4.5).
func substitute(expr, input string, m *regexp2.Match) string {
	if expr == "-" {
		return input
	}
	if !strings.ContainsRune(expr, '$') {
		return expr
	}

	var sb strings.Builder
	for i := 0; i < len(expr); i++ {
		if expr[i] == '$' && i+1 < len(expr) && expr[i+1] >= '0' && expr[i+1] <= '9' {
			n, _ := strconv.Atoi(string(expr[i+1]))
			sb.WriteString(groupText(m, n))
			i++
			continue
		}
		sb.WriteByte(expr[i])
	}
	return sb.String()
}

func groupText(m *regexp2.Match, n int) string {
	if n == 0 {
		return m.String()
	}
	g := m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// rewrite applies the URL composition rules of spec §4.5 to substituted
// and updates st's working URI components in place.
func (st *evalState) rewrite(r *Rule, substituted string) {
	u, err := url.Parse(substituted)
	if err != nil {
		// Invalid substitution: treated as a benign no-op (spec §7),
		// leaving the current URI untouched.
		return
	}

	if u.Scheme == "" {
		path := u.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		u.Scheme = st.scheme
		u.Host = st.authority
		u.Path = path
	}

	switch {
	case r.HasFlag(FlagQueryAppend):
		u.RawQuery = mergeQuery(u.RawQuery, st.query)
	case u.RawQuery == "" && !r.HasFlag(FlagNoQuery):
		// No query string of its own was produced by the substitution:
		// carry the original request's query forward, unless NoQuery
		// asked for it to be dropped (spec §4.5).
		u.RawQuery = st.query
	}

	if u.Fragment == "" {
		u.Fragment = st.fragment
	}

	out := composeURI(u, r.HasFlag(FlagNoEscape))
	if !r.HasFlag(FlagNoPlus) {
		out = strings.ReplaceAll(out, " ", "+")
	}

	final, err := url.Parse(out)
	if err != nil {
		return
	}
	st.scheme = final.Scheme
	st.authority = final.Host
	st.path = final.Path
	st.query = final.RawQuery
	st.fragment = final.Fragment
}

// mergeQuery appends original onto substituted, per QSA semantics: '&'
// when substituted already has a query, '?' (i.e. it becomes the whole
// query) otherwise.
func mergeQuery(substituted, original string) string {
	if original == "" {
		return substituted
	}
	if substituted == "" {
		return original
	}
	return substituted + "&" + original
}

// composeURI renders u as a string, honoring NoEscape by writing the
// decoded path and fragment and the raw query verbatim instead of going through
// url.URL.String()'s automatic percent-encoding.
func composeURI(u *url.URL, noEscape bool) string {
	if !noEscape {
		return u.String()
	}
	var sb strings.Builder
	if u.Scheme != "" {
		sb.WriteString(u.Scheme)
		sb.WriteString("://")
		sb.WriteString(u.Host)
	}
	sb.WriteString(u.Path)
	if u.RawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		sb.WriteByte('#')
		sb.WriteString(u.Fragment)
	}
	return sb.String()
}

// percentDecode decodes %XX escapes, treating a failed decode as a
// no-op rather than an error (spec §7 coerces evaluation errors to
// benign defaults).
func percentDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// applyEffects applies r's side-effecting flags, in order of
// appearance, to st and result (spec §4.5 step 4). It returns whether
// evaluation should restart from the top or halt because a Last flag
// fired. A restart request that would exceed the restart budget is not
// special-cased here: Evaluate's own step cap (derived from the same
// budget) is what actually stops the loop: once the step cap is
// reached, evaluation stops before the next entry, even mid-pass, and
// returns the URI and accumulators it has so far (spec §7).
func (st *evalState) applyEffects(r *Rule, ctx *RequestContext, result *Result) (restart, last bool) {
	for _, f := range r.flags {
		switch f.Kind {
		case FlagCookie:
			result.Cookies[f.Name] = CookieDirective{
				Value:      f.Value,
				Expiration: ctx.RequestTime.Add(f.TTL),
			}
		case FlagEnvVar:
			result.EnvVars[f.Name] = f.Value
		case FlagServerString:
			v := f.Value
			result.ServerStringOverride = &v
		case FlagMimeType:
			v := f.Value
			result.MimeTypeOverride = &v
		case FlagStatus:
			v := f.Count
			result.StatusOverride = &v
		case FlagSkip:
			st.skip = f.Count
		case FlagNext:
			restart = true
		case FlagLast:
			last = true
		}
	}
	return restart, last
}
