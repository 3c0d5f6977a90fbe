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

// Package geoip resolves a remote address to an ISO country code from a
// MaxMind-format database, so the server can populate
// rewrite.RequestContext.GeoIPCountry before invoking the Evaluator
// (spec §1: "IP-geolocation fetching" is an external collaborator with
// a minimal contract, not something the engine does itself).
package geoip

import (
	"net"

	"github.com/oschwald/maxminddb-golang"
)

// countryRecord mirrors the subset of a GeoLite2-Country record this
// package cares about.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Lookup wraps an open MaxMind database reader. The zero value is not
// usable; construct one with Open.
type Lookup struct {
	reader *maxminddb.Reader
}

// Open reads the MaxMind database at path into memory and returns a
// Lookup backed by it. Callers should Close it on shutdown.
func Open(path string) (*Lookup, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Lookup{reader: reader}, nil
}

// Close releases the underlying database's memory-mapped file.
func (l *Lookup) Close() error {
	return l.reader.Close()
}

// Country returns the ISO country code for addr, or "" if addr is
// unparsable, absent from the database, or has no country assigned.
func (l *Lookup) Country(addr string) string {
	ip := net.ParseIP(addr)
	if ip == nil {
		return ""
	}
	var rec countryRecord
	if err := l.reader.Lookup(ip, &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}
