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
	"strconv"
	"strings"
)

// APIVersion is reported as %{API_VERSION} when RequestContext.APIVersion
// is left unset.
const APIVersion = "1.0"

// variableTable builds the %{NAME} -> value map for one request. Names
// are matched case-insensitively, so the table is keyed in upper case;
// unknown names are left textually intact by expandVariables (spec
// §4.4), never inserted here.
func variableTable(c *RequestContext) map[string]string {
	t := c.RequestTime.UTC()
	apiVersion := c.APIVersion
	if apiVersion == "" {
		apiVersion = APIVersion
	}

	return map[string]string{
		"HTTP_USER_AGENT":  c.UserAgent,
		"HTTP_COOKIE":      c.Cookie,
		"HTTP_HOST":        c.Authority,
		"REMOTE_ADDR":      c.RemoteAddr,
		"REMOTE_HOST":      c.RemoteHost,
		"REMOTE_USER":      c.RemoteUser,
		"REMOTE_IDENT":     c.RemoteAddr + ":" + c.RemotePort,
		"REQUEST_METHOD":   c.Method,
		"SCRIPT_FILENAME":  c.Path,
		"QUERY_STRING":     c.Query,
		"DOCUMENT_ROOT":    c.DocumentRoot,
		"SERVER_NAME":      c.ServerName,
		"SERVER_ADDR":      c.ServerAddr,
		"SERVER_PORT":      c.ServerPort,
		"SERVER_PROTOCOL":  c.ServerSoftware,
		"SERVER_SOFTWARE":  c.ServerSoftware,
		"TIME_YEAR":        strconv.Itoa(t.Year()),
		"TIME_MON":         fmt.Sprintf("%02d", int(t.Month())),
		"TIME_DAY":         fmt.Sprintf("%02d", t.Day()),
		"TIME_HOUR":        fmt.Sprintf("%02d", t.Hour()),
		"TIME_MIN":         fmt.Sprintf("%02d", t.Minute()),
		"TIME_SEC":         fmt.Sprintf("%02d", t.Second()),
		"TIME_WDAY":        strconv.Itoa(int(t.Weekday())),
		"TIME":             t.Format("2006-01-02 15:04:05.000"),
		"API_VERSION":      apiVersion,
		"REQUEST_URI":      c.RequestURI(),
		"REQUEST_FILENAME": c.Path,
		"GEOIP_COUNTRY":    c.GeoIPCountry,
	}
}

// expandVariables substitutes %{NAME} tokens in input using the values
// derived from c. Matching on NAME is case-insensitive; unknown names
// are left textually intact. Expansion is single-pass: the substituted
// text is never itself re-scanned for further %{...} tokens (spec
// §4.4).
func expandVariables(input string, c *RequestContext) string {
	if !strings.Contains(input, "%{") {
		return input
	}
	table := variableTable(c)

	var sb strings.Builder
	sb.Grow(len(input))

	i := 0
	for i < len(input) {
		start := strings.Index(input[i:], "%{")
		if start < 0 {
			sb.WriteString(input[i:])
			break
		}
		start += i
		sb.WriteString(input[i:start])

		end := strings.IndexByte(input[start+2:], '}')
		if end < 0 {
			// Unterminated token: emit the rest verbatim.
			sb.WriteString(input[start:])
			break
		}
		end += start + 2

		name := input[start+2 : end]
		if v, ok := table[strings.ToUpper(name)]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString(input[start : end+1])
		}
		i = end + 1
	}

	return sb.String()
}
