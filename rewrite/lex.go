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
	"errors"
	"fmt"
	"time"
)

// tokenize splits a rule-file line into whitespace-separated tokens,
// honoring double-quoted segments in which internal whitespace is
// preserved and the surrounding quotes are stripped (spec §4.3).
func tokenize(line string) ([]string, error) {
	var tokens []string
	i, n := 0, len(line)

	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}

		if line[i] == '"' {
			j := i + 1
			for j < n && line[j] != '"' {
				j++
			}
			if j >= n {
				return nil, errors.New("unterminated quoted token")
			}
			tokens = append(tokens, line[i+1:j])
			i = j + 1
			continue
		}

		j := i
		for j < n && !isSpace(line[j]) {
			j++
		}
		tokens = append(tokens, line[i:j])
		i = j
	}

	return tokens, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' }

// argError is a classified parse error raised while interpreting a
// directive's arguments or flags; wrapParseError attaches the line
// number and offending text once the caller knows which line failed.
type argError struct {
	kind ParseErrorKind
	err  error
}

func (e *argError) Error() string { return e.err.Error() }
func (e *argError) Unwrap() error { return e.err }

func errMissingArg(format string, args ...any) error {
	return &argError{kind: ErrMissingArgument, err: fmt.Errorf(format, args...)}
}

func errBadArg(format string, args ...any) error {
	return &argError{kind: ErrBadFlagArg, err: fmt.Errorf(format, args...)}
}

func errUnknownFlag(name string) error {
	return &argError{kind: ErrUnknownFlag, err: fmt.Errorf("unknown flag %q", name)}
}

// wrapParseError turns an error from rule/condition construction into a
// ParseError carrying the offending line, classifying it from an
// *argError when possible and falling back to ErrBadRegex for anything
// else (NewRule/NewCondition only otherwise fail on regex compilation).
func wrapParseError(err error, line int, text string) *ParseError {
	var ae *argError
	if errors.As(err, &ae) {
		return newParseError(ae.kind, line, text, ae.err)
	}
	return newParseError(ErrBadRegex, line, text, err)
}

func secondsToDuration(secs int) time.Duration {
	return time.Duration(secs) * time.Second
}
