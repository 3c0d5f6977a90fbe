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

package fileserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverpath/httpd/rewrite"
)

type fakeEngine struct {
	result *rewrite.Result
}

func (f *fakeEngine) Evaluate(*rewrite.RequestContext) *rewrite.Result {
	return f.result
}

func newResult(uri string) *rewrite.Result {
	return &rewrite.Result{
		URI:         uri,
		OriginalURI: uri,
		Cookies:     map[string]rewrite.CookieDirective{},
		EnvVars:     map[string]string{},
	}
}

func TestServeHTTPServesPlainFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644))

	h := &Handler{
		Root:   http.Dir(dir),
		Engine: &fakeEngine{result: newResult("http://h/hello.txt")},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/hello.txt", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestServeHTTPAppliesRewrittenPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("new"), 0o644))

	h := &Handler{
		Root:   http.Dir(dir),
		Engine: &fakeEngine{result: newResult("http://h/new.txt")},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/old.txt", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, "new", rec.Body.String())
}

func TestServeHTTPHonorsStatusOverride(t *testing.T) {
	dir := t.TempDir()
	res := newResult("http://h/elsewhere")
	status := http.StatusFound
	res.StatusOverride = &status

	h := &Handler{
		Root:   http.Dir(dir),
		Engine: &fakeEngine{result: res},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://h/elsewhere", rec.Header().Get("Location"))
}

func TestServeHTTPSetsCookiesFromResult(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("f"), 0o644))

	res := newResult("http://h/f.txt")
	res.Cookies["sid"] = rewrite.CookieDirective{Value: "abc"}

	h := &Handler{
		Root:   http.Dir(dir),
		Engine: &fakeEngine{result: res},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/f.txt", nil)
	h.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, "abc", cookies[0].Value)
}

func TestServeHTTPMissingFileIsNotFound(t *testing.T) {
	dir := t.TempDir()

	h := &Handler{
		Root:   http.Dir(dir),
		Engine: &fakeEngine{result: newResult("http://h/missing.txt")},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing.txt", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseRequestPathStripsSchemeAuthorityAndQuery(t *testing.T) {
	got, err := parseRequestPath("http://h/new/path?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "/new/path", got)
}
