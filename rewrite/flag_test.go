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
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlagEquality(t *testing.T) {
	a := NewCookie("sid", "abc", time.Hour)
	b := NewCookie("sid", "abc", time.Hour)
	c := NewCookie("sid", "xyz", time.Hour)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNoPlusIsNotChained(t *testing.T) {
	// The teacher's own BNP flag construction collapsed to the same value
	// as Chained; spec §9 calls this out as a bug to not repeat.
	bnp := NewNoPlus()
	chained := NewChained()
	assert.NotEqual(t, bnp, chained)
	assert.Equal(t, FlagNoPlus, bnp.Kind)
	assert.Equal(t, FlagChained, chained.Kind)
}

func TestMimeTypeDefaultsWhenEmpty(t *testing.T) {
	f := NewMimeType("")
	assert.Equal(t, "text/plain", f.Value)
}

func TestDedupeFlagsPreservesFirstOccurrenceOrder(t *testing.T) {
	last := NewLast()
	nc := NewNoCase()
	flags := []Flag{last, nc, last}

	deduped := dedupeFlags(flags)

	assert.Equal(t, []Flag{last, nc}, deduped)
}

func TestDedupeFlagsShortCircuitsUnderTwo(t *testing.T) {
	assert.Nil(t, dedupeFlags(nil))
	one := []Flag{NewLast()}
	assert.Equal(t, one, dedupeFlags(one))
}
