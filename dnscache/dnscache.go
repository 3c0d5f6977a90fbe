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

// Package dnscache resolves the forward and reverse DNS lookups a
// rewrite.RequestContext builder needs (REMOTE_HOST, SERVER_NAME,
// SERVER_ADDR) without putting a lookup on every request's hot path
// (spec §5, §9: "prefer resolving ... in the Request Context builder,
// not lazily inside the engine").
package dnscache

import (
	"context"
	"net"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// DefaultCacheSize and DefaultTTL apply when New is given a
// non-positive size or ttl. DefaultTTL matches the ten-minute expiry of
// UA3F's address cache; DefaultCacheSize is larger than its 300 entries.
const (
	DefaultCacheSize = 1024
	DefaultTTL       = 10 * time.Minute
)

// Resolver wraps a net.Resolver with an expirable LRU cache for both
// forward (name -> address) and reverse (address -> name) lookups.
// Failures are cached as empty strings too, so a persistently
// unresolvable address does not repeat the lookup on every request
// (spec §5: "SHOULD treat failures as empty strings").
type Resolver struct {
	resolver *net.Resolver
	forward  *expirable.LRU[string, string]
	reverse  *expirable.LRU[string, string]
	log      *zap.Logger
}

// New builds a Resolver backed by the standard library's net.Resolver,
// caching up to size entries per direction for ttl.
func New(size int, ttl time.Duration, log *zap.Logger) *Resolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		resolver: net.DefaultResolver,
		forward:  expirable.NewLRU[string, string](size, nil, ttl),
		reverse:  expirable.NewLRU[string, string](size, nil, ttl),
		log:      log,
	}
}

// ReverseLookup resolves addr to a hostname for REMOTE_HOST, returning
// "" (cached) on failure.
func (r *Resolver) ReverseLookup(ctx context.Context, addr string) string {
	if v, ok := r.reverse.Get(addr); ok {
		return v
	}
	names, err := r.resolver.LookupAddr(ctx, addr)
	name := ""
	if err != nil {
		r.log.Debug("reverse dns lookup failed", zap.String("addr", addr), zap.Error(err))
	} else if len(names) > 0 {
		name = names[0]
	}
	r.reverse.Add(addr, name)
	return name
}

// ForwardLookup resolves host to an address for SERVER_ADDR, returning
// "" (cached) on failure.
func (r *Resolver) ForwardLookup(ctx context.Context, host string) string {
	if v, ok := r.forward.Get(host); ok {
		return v
	}
	addrs, err := r.resolver.LookupHost(ctx, host)
	addr := ""
	if err != nil {
		r.log.Debug("forward dns lookup failed", zap.String("host", host), zap.Error(err))
	} else if len(addrs) > 0 {
		addr = addrs[0]
	}
	r.forward.Add(host, addr)
	return addr
}
