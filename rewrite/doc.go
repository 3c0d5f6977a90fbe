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

// Package rewrite compiles and evaluates a mod_rewrite-style rule set
// against a single HTTP request, producing a Result the caller applies
// to the request before it reaches the rest of the serving pipeline.
//
// A Document is parsed once per rule-source revision (Parse) and then
// evaluated (Evaluate) once per request; the Engine type pairs the two
// so an http server only has to keep one value alive per site.
package rewrite
