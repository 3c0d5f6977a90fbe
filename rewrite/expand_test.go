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

func testContext() *RequestContext {
	return &RequestContext{
		Scheme:         "http",
		Authority:      "h",
		Path:           "/foo",
		Query:          "a=b",
		UserAgent:      "curl/8.0",
		RemoteAddr:     "10.0.0.1",
		RemotePort:     "5555",
		Method:         "GET",
		DocumentRoot:   "/srv",
		ServerName:     "h",
		ServerAddr:     "10.0.0.2",
		ServerPort:     "80",
		ServerSoftware: "httpd/1.0",
		RequestTime:    time.Date(2026, 3, 5, 12, 30, 45, 0, time.UTC),
	}
}

func TestExpandVariablesKnownNames(t *testing.T) {
	c := testContext()
	assert.Equal(t, "curl/8.0", expandVariables("%{HTTP_USER_AGENT}", c))
	assert.Equal(t, "h", expandVariables("%{HTTP_HOST}", c))
	assert.Equal(t, "10.0.0.1", expandVariables("%{REMOTE_ADDR}", c))
	assert.Equal(t, "10.0.0.1:5555", expandVariables("%{REMOTE_IDENT}", c))
	assert.Equal(t, "a=b", expandVariables("%{QUERY_STRING}", c))
	assert.Equal(t, "2026", expandVariables("%{TIME_YEAR}", c))
	assert.Equal(t, "03", expandVariables("%{TIME_MON}", c))
	assert.Equal(t, "1.0", expandVariables("%{API_VERSION}", c))
}

func TestExpandVariablesIsCaseInsensitiveOnName(t *testing.T) {
	c := testContext()
	assert.Equal(t, "curl/8.0", expandVariables("%{http_user_agent}", c))
}

func TestExpandVariablesLeavesUnknownNameIntact(t *testing.T) {
	c := testContext()
	assert.Equal(t, "%{NOT_A_THING}", expandVariables("%{NOT_A_THING}", c))
}

func TestExpandVariablesDoesNotRecurse(t *testing.T) {
	c := testContext()
	c.UserAgent = "%{QUERY_STRING}"
	// If expansion were recursive, this would resolve to "a=b" instead.
	assert.Equal(t, "%{QUERY_STRING}", expandVariables("%{HTTP_USER_AGENT}", c))
}

func TestExpandVariablesHandlesUnterminatedToken(t *testing.T) {
	c := testContext()
	assert.Equal(t, "prefix %{HTTP_HOST", expandVariables("prefix %{HTTP_HOST", c))
}

func TestExpandVariablesMultipleTokens(t *testing.T) {
	c := testContext()
	got := expandVariables("%{REQUEST_METHOD} %{HTTP_HOST}%{SCRIPT_FILENAME}", c)
	assert.Equal(t, "GET h/foo", got)
}

func TestExpandVariablesAPIVersionOverride(t *testing.T) {
	c := testContext()
	c.APIVersion = "2.0"
	assert.Equal(t, "2.0", expandVariables("%{API_VERSION}", c))
}

func TestExpandVariablesGeoIPCountry(t *testing.T) {
	c := testContext()
	c.GeoIPCountry = "US"
	assert.Equal(t, "US", expandVariables("%{GEOIP_COUNTRY}", c))
}

func TestExpandVariablesGeoIPCountryEmptyWhenUnset(t *testing.T) {
	c := testContext()
	assert.Equal(t, "", expandVariables("%{GEOIP_COUNTRY}", c))
}
