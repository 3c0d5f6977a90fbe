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

// RequestContext is everything the Evaluator reads about a single
// request. It is consumed, never mutated, by the engine (spec §3). The
// server builds one per request; DNS-dependent fields (RemoteHost,
// ServerName, ServerAddr) are expected to already be resolved by the
// time the context reaches the Evaluator, per the non-blocking guidance
// in spec §5 — see dnscache.Resolver for a cache-backed resolver a
// server can use to fill them in, and geoip.Lookup for GeoIPCountry.
type RequestContext struct {
	// URI components, already parsed.
	Scheme    string
	Authority string
	Path      string
	Query     string
	Fragment  string

	Method      string
	UserAgent   string
	Cookie      string
	RemoteAddr  string // sender address
	RemotePort  string
	RemoteHost  string // reverse-DNS of RemoteAddr; "" if unresolved
	RemoteUser  string
	RequestTime time.Time // UTC

	DocumentRoot   string
	ServerPort     string
	ServerName     string // forward-resolved server name; "" if unresolved
	ServerAddr     string // forward-resolved server address; "" if unresolved
	ServerSoftware string // server identity string (also SERVER_PROTOCOL)

	// APIVersion is reported as the API_VERSION variable (spec §4.4),
	// an implementation constant rather than something per-request.
	APIVersion string

	// GeoIPCountry is the ISO country code of RemoteAddr, populated by
	// the server via geoip.Lookup before invoking the Evaluator. Left
	// empty when no GeoIP database is configured or the address could
	// not be resolved; exposed to rule authors as %{GEOIP_COUNTRY}.
	GeoIPCountry string
}

// RequestURI reconstructs the full original URI string for the
// REQUEST_URI variable and the Result's echo field.
func (c *RequestContext) RequestURI() string {
	u := c.Path
	if c.Query != "" {
		u += "?" + c.Query
	}
	if c.Fragment != "" {
		u += "#" + c.Fragment
	}
	if c.Scheme != "" {
		authority := c.Authority
		if authority == "" {
			authority = c.ServerName
		}
		u = c.Scheme + "://" + authority + u
	}
	return u
}
