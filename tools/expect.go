/* Copyright 2026 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"

	"gopkg.in/yaml.v2"
)

// Case is an input tape and what's expected after running the machine
// on it.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Tape is the input in lang.ParseTape syntax.
	Tape string `json:"tape" yaml:"tape"`

	// Start is the display name of the state to start in.  The
	// default is the machine's entry.
	Start string `json:"start,omitempty" yaml:"start,omitempty"`

	// MaxSteps overrides Session.MaxSteps.
	MaxSteps int `json:"maxSteps,omitempty" yaml:"maxSteps,omitempty"`

	// Status is the expected status ("accepted", "rejected",
	// "failed", or "running" when the steps ran out).  Empty
	// means don't care.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// TapeAfter is the expected tape (as core.Tape renders it).
	TapeAfter *string `json:"tapeAfter,omitempty" yaml:"tapeAfter,omitempty"`

	// Head is the expected final head position.
	Head *int `json:"head,omitempty" yaml:"head,omitempty"`

	// Error, if not empty, must be a substring of the error.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Session is a sequence of Cases for one machine.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Spec is the name of the template file.  Only used by
	// commands that load the templates themselves.
	Spec string `json:"spec,omitempty" yaml:"spec,omitempty"`

	// Entry is the entry template used by Compile.
	Entry string `json:"entry,omitempty" yaml:"entry,omitempty"`

	// Limits are used by Compile.
	Limits *core.Limits `json:"limits,omitempty" yaml:"limits,omitempty"`

	// MaxSteps is the default step limit for each Case.  Zero
	// means no limit, which is dangerous.
	MaxSteps int `json:"maxSteps,omitempty" yaml:"maxSteps,omitempty"`

	Cases []Case `json:"cases" yaml:"cases"`
}

// Result reports what happened for one Case.
type Result struct {
	Case   int         `json:"case"`
	Doc    string      `json:"doc,omitempty"`
	Status core.Status `json:"status"`
	Tape   string      `json:"tape"`
	Head   int         `json:"head"`
	Steps  int         `json:"steps"`
	Err    string      `json:"error,omitempty"`

	// Problems are the ways the result differs from what was
	// expected.
	Problems []string `json:"problems,omitempty"`
}

// OK reports whether the result was as expected.
func (r *Result) OK() bool {
	return len(r.Problems) == 0
}

// SessionFailed is returned by Session.Run when some Case didn't go
// as expected.
type SessionFailed struct {
	Failed int
	Total  int
}

func (e *SessionFailed) Error() string {
	return strconv.Itoa(e.Failed) + " of " + strconv.Itoa(e.Total) + " cases failed"
}

// ParseSession parses YAML (or JSON).
func ParseSession(bs []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReadSession reads and parses a session file.
func ReadSession(filename string) (*Session, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSession(bs)
}

// Compile compiles the templates using the Session's Entry and
// Limits.
func (s *Session) Compile(ctx context.Context, spec *core.Spec) (*core.Machine, error) {
	return spec.Compile(ctx, s.Entry, nil, s.Limits)
}

// Run runs every Case.  All Cases run even after one fails.
//
// The error is a *SessionFailed if any Case didn't go as expected.
// The context's error is returned right away.
func (s *Session) Run(ctx context.Context, m *core.Machine) ([]*Result, error) {
	results := make([]*Result, 0, len(s.Cases))
	failed := 0
	for i, c := range s.Cases {
		r, err := s.runCase(ctx, m, i, c)
		if err != nil {
			return results, err
		}
		if !r.OK() {
			failed++
		}
		results = append(results, r)
	}
	if 0 < failed {
		return results, &SessionFailed{Failed: failed, Total: len(s.Cases)}
	}
	return results, nil
}

func (s *Session) runCase(ctx context.Context, m *core.Machine, i int, c Case) (*Result, error) {
	r := &Result{
		Case: i,
		Doc:  c.Doc,
	}
	problem := func(msg string) {
		r.Problems = append(r.Problems, msg)
	}

	tape, err := lang.ParseTape(c.Tape)
	if err != nil {
		problem("bad tape: " + err.Error())
		return r, nil
	}

	start := m.Entry
	if c.Start != "" {
		var have bool
		if start, have = m.Lookup(c.Start); !have {
			problem(`no state "` + c.Start + `"`)
			return r, nil
		}
	}

	limit := s.MaxSteps
	if 0 < c.MaxSteps {
		limit = c.MaxSteps
	}

	cfg := core.NewConfig(start, tape)
	_, err = m.Walk(ctx, cfg, &core.Control{Limit: limit})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		r.Err = err.Error()
	}
	r.Status = cfg.Status
	r.Tape = cfg.Tape.String()
	r.Head = cfg.Head
	r.Steps = cfg.Steps

	if c.Status != "" && c.Status != r.Status.String() {
		problem("status " + r.Status.String() + " instead of " + c.Status)
	}
	if c.TapeAfter != nil && *c.TapeAfter != r.Tape {
		problem("tape " + strconv.Quote(r.Tape) + " instead of " + strconv.Quote(*c.TapeAfter))
	}
	if c.Head != nil && *c.Head != r.Head {
		problem("head " + strconv.Itoa(r.Head) + " instead of " + strconv.Itoa(*c.Head))
	}
	switch {
	case c.Error == "" && r.Err != "":
		problem("unexpected error: " + r.Err)
	case c.Error != "" && !strings.Contains(r.Err, c.Error):
		problem("error " + strconv.Quote(r.Err) + " doesn't contain " + strconv.Quote(c.Error))
	}

	return r, nil
}
