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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleDefaultsEmptyPatternAndReplacement(t *testing.T) {
	r, err := NewRule("", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "^$", r.pattern)
	assert.Equal(t, "$0", r.outputExpr)
	assert.False(t, r.IsCondition())
}

func TestNewConditionRejectsEmptyInput(t *testing.T) {
	_, err := NewCondition("", "MSIE", nil)
	assert.Error(t, err)
}

func TestNewConditionKeepsEmptyReplacement(t *testing.T) {
	c, err := NewCondition("%{HTTP_USER_AGENT}", "MSIE", nil)
	require.NoError(t, err)
	assert.True(t, c.IsCondition())
	assert.Empty(t, c.outputExpr)
}

func TestNewRuleRejectsNilFlag(t *testing.T) {
	_, err := NewRule("^a$", "b", []*Flag{nil})
	assert.Error(t, err)
}

func TestNewRuleRejectsBadRegex(t *testing.T) {
	_, err := NewRule("(unclosed", "b", nil)
	assert.Error(t, err)
}

func TestNoCaseFlagCompilesCaseInsensitiveRegex(t *testing.T) {
	nc := NewNoCase()
	r, err := NewRule("^MATCH$", "-", []*Flag{&nc})
	require.NoError(t, err)

	m, err := r.matchRegex.FindStringMatch("match")
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestHasFlagAndFlag(t *testing.T) {
	last := NewLast()
	r, err := NewRule("^a$", "b", []*Flag{&last})
	require.NoError(t, err)

	assert.True(t, r.HasFlag(FlagLast))
	assert.False(t, r.HasFlag(FlagChained))

	f, ok := r.Flag(FlagLast)
	require.True(t, ok)
	assert.Equal(t, FlagLast, f.Kind)

	_, ok = r.Flag(FlagCookie)
	assert.False(t, ok)
}

func TestRuleFlagsAreDeduped(t *testing.T) {
	last1 := NewLast()
	last2 := NewLast()
	r, err := NewRule("^a$", "b", []*Flag{&last1, &last2})
	require.NoError(t, err)
	assert.Len(t, r.Flags(), 1)
}

func TestEqualKeyDistinguishesRulesAndConditions(t *testing.T) {
	rule, err := NewRule("^a$", "b", nil)
	require.NoError(t, err)
	cond, err := NewCondition("^a$", "b", nil)
	require.NoError(t, err)

	assert.NotEqual(t, rule.equalKey(), cond.equalKey())
}
