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

// Package fileserver serves static files from a document root, acting
// as the Sink a rewrite.Result is applied to before the response is
// written (spec §1: "file I/O" and "directory listing HTML" are
// external collaborators with minimal contracts, adapted here into a
// small real handler rather than left unimplemented).
package fileserver

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/riverpath/httpd/rewrite"
)

// IndexPages lists the file names tried, in order, when a request
// resolves to a directory.
var IndexPages = []string{"index.html", "index.htm"}

// RequestIDHeader is the header a client-supplied request ID (if any)
// arrives on, and the header the chosen ID is echoed back on.
const RequestIDHeader = "X-Request-Id"

// Handler serves files out of Root, applying the rewrite.Engine's
// Result to each request before dispatching to the filesystem: the
// rewritten path is what gets served, cookies and the Content-Type and
// Server overrides from the Result are set on the response, and a
// status override short-circuits straight to a redirect. The Result's
// environment variables are not applied to the response.
type Handler struct {
	Root   http.FileSystem
	Engine Engine
	Log    *zap.Logger

	// Gzip enables gzip-encoding responses for clients that accept it.
	// Level is passed to klauspost/compress/gzip.NewWriterLevel.
	Gzip      bool
	GzipLevel int
}

// Engine is the subset of rewrite.Engine's behavior the file server
// depends on, kept as an interface so tests can supply a fake.
type Engine interface {
	Evaluate(*rewrite.RequestContext) *rewrite.Result
}

func (h *Handler) buildContext(r *http.Request) *rewrite.RequestContext {
	host, port, _ := splitHostPort(r.RemoteAddr)
	return &rewrite.RequestContext{
		Scheme:      schemeOf(r),
		Authority:   r.Host,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Fragment:    r.URL.Fragment,
		Method:      r.Method,
		UserAgent:   r.UserAgent(),
		Cookie:      r.Header.Get("Cookie"),
		RemoteAddr:  host,
		RemotePort:  port,
		RequestTime: time.Now().UTC(),
	}
}

func schemeOf(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func splitHostPort(addr string) (host, port string, ok bool) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, "", false
	}
	return addr[:i], addr[i+1:], true
}

// ServeHTTP evaluates the rewrite engine against the request, applies
// the resulting cookies/overrides, and serves the (possibly rewritten)
// path from Root.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	w.Header().Set(RequestIDHeader, reqID)

	var res *rewrite.Result
	if h.Engine != nil {
		ctx := h.buildContext(r)
		res = h.Engine.Evaluate(ctx)
		if _, ok := res.EnvVars["REQUEST_ID"]; !ok {
			res.EnvVars["REQUEST_ID"] = reqID
		}
		applyResult(w, r, res)
	}

	if res != nil && res.StatusOverride != nil {
		http.Redirect(w, r, res.URI, *res.StatusOverride)
		h.logAccess(r, reqID, *res.StatusOverride)
		return
	}

	upath := r.URL.Path
	if res != nil {
		if u, err := parseRequestPath(res.URI); err == nil {
			upath = u
		}
	}
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}

	h.serveFile(w, r, path.Clean(upath))
	h.logAccess(r, reqID, http.StatusOK)
}

func applyResult(w http.ResponseWriter, r *http.Request, res *rewrite.Result) {
	for name, cookie := range res.Cookies {
		http.SetCookie(w, &http.Cookie{
			Name:    name,
			Value:   cookie.Value,
			Expires: cookie.Expiration,
			Path:    "/",
		})
	}
	if res.MimeTypeOverride != nil {
		w.Header().Set("Content-Type", *res.MimeTypeOverride)
	}
	if res.ServerStringOverride != nil {
		w.Header().Set("Server", *res.ServerStringOverride)
	}
}

func requestID(r *http.Request) string {
	if v := r.Header.Get(RequestIDHeader); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id.String()
		}
	}
	return uuid.New().String()
}

func (h *Handler) logAccess(r *http.Request, reqID string, status int) {
	if h.Log == nil {
		return
	}
	h.Log.Info("request",
		zap.String("request_id", reqID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := h.Root.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	d, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if d.IsDir() {
		for _, index := range IndexPages {
			indexName := strings.TrimSuffix(name, "/") + "/" + index
			ff, err := h.Root.Open(indexName)
			if err != nil {
				continue
			}
			dd, err := ff.Stat()
			if err != nil {
				ff.Close()
				continue
			}
			defer ff.Close()
			name, d, f = indexName, dd, ff
			break
		}
	}

	if d.IsDir() {
		http.NotFound(w, r)
		return
	}

	if h.Gzip && acceptsGzip(r) {
		h.serveGzipped(w, r, name, d.ModTime())
		return
	}

	http.ServeContent(w, r, d.Name(), d.ModTime(), f)
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

func (h *Handler) serveGzipped(w http.ResponseWriter, r *http.Request, name string, modTime time.Time) {
	f, err := h.Root.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	level := h.GzipLevel
	if level == 0 {
		level = gzip.DefaultCompression
	}
	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer gz.Close()

	w.Header().Set("Content-Encoding", "gzip")
	w.Header().Del("Content-Length")
	http.ServeContent(&gzipResponseWriter{ResponseWriter: w, gz: gz}, r, path.Base(name), modTime, f)
}

// gzipResponseWriter routes body writes through the gzip.Writer while
// leaving header/status writes on the underlying ResponseWriter.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	return g.gz.Write(b)
}

func parseRequestPath(uri string) (string, error) {
	i := strings.Index(uri, "://")
	rest := uri
	if i >= 0 {
		rest = uri[i+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			rest = rest[slash:]
		} else {
			rest = "/"
		}
	}
	if q := strings.IndexAny(rest, "?#"); q >= 0 {
		rest = rest[:q]
	}
	return rest, nil
}
