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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"
	"github.com/Comcast/tmachine/storage/bolt"
)

const templates = "../../tools/testdata/seek.tm"

func invoke(t *testing.T, name string, args ...string) (string, error) {
	mod, have := Mods[name]
	if !have {
		t.Fatal(name)
	}
	fs := mod.Flags()
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	err := mod.F(context.Background(), out, fs.Args())
	return out.String(), err
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		description string
		name        string
		args        []string
		want        string
	}{
		{
			description: "run",
			name:        "run",
			args:        []string{"-t", "aab", templates},
			want:        "accepted aaX 2 4\n",
		},
		{
			description: "run with trace",
			name:        "run",
			args:        []string{"-t", "b", "-trace", templates},
			want:        "0@0 'b' -> goto 1\n1@0 'b' -> accept\naccepted X 0 2\n",
		},
		{
			description: "run with limit",
			name:        "run",
			args:        []string{"-t", "aaa", "-l", "10", templates},
			want:        "running aaa 9 10\n",
		},
		{
			description: "dot",
			name:        "dot",
			args:        []string{templates},
			want:        "digraph",
		},
		{
			description: "mermaid",
			name:        "mermaid",
			args:        []string{templates},
			want:        "graph TB\n",
		},
		{
			description: "html",
			name:        "html",
			args:        []string{"-json", templates},
			want:        "thisMachine",
		},
		{
			description: "expect",
			name:        "expect",
			args:        []string{"-session", "../../tools/testdata/seek.test.yaml", templates},
			want:        "ok 2 never found\n",
		},
		{
			description: "fmt",
			name:        "fmt",
			args:        []string{templates},
			want:        "main = seek('b') {='X' accept};",
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := invoke(t, tc.name, tc.args...)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(got, tc.want) {
				t.Fatalf("wanted %q in\n%s", tc.want, got)
			}
		})
	}
}

func TestCompileJSON(t *testing.T) {
	got, err := invoke(t, "compile", "-json", templates)
	if err != nil {
		t.Fatal(err)
	}
	var m core.Machine
	if err = json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatal(err)
	}
	if len(m.States) != 2 {
		t.Fatal(len(m.States))
	}
}

func TestFmtParses(t *testing.T) {
	got, err := invoke(t, "fmt", templates)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = lang.Parse("seek", got); err != nil {
		t.Fatal(err)
	}
}

func TestRunFails(t *testing.T) {
	if _, err := invoke(t, "run", "-t", "", "-s", "nope", templates); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := invoke(t, "run"); err != NoTemplates {
		t.Fatal(err)
	}
	if _, err := invoke(t, "compile", "-max-states", "1", templates); err == nil {
		t.Fatal("expected an explosion")
	}
}

func TestRunWithDB(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tmc.db")
	for _, tape := range []string{"b", "ab"} {
		if _, err := invoke(t, "run", "-db", db, "-t", tape, templates); err != nil {
			t.Fatal(err)
		}
	}

	ctx := context.Background()
	s, err := bolt.NewStorage(db)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	r, err := s.GetMachine(ctx, "seek")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Machine.States) != 2 || r.Source == "" {
		t.Fatal(r)
	}
	runs, err := s.GetRuns(ctx, "seek")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[1].Tape != "aX" {
		t.Fatal(runs)
	}
}

func TestRunStdin(t *testing.T) {
	defer func(in io.Reader) { stdin = in }(stdin)
	stdin = strings.NewReader(`
seek(c, k) {
  [c] k
  [*] > seek(c, k)
}
%inline("../../tools/testdata/main.tm")
`)
	got, err := invoke(t, "run", "-t", "aab", "-")
	if err != nil {
		t.Fatal(err)
	}
	if got != "accepted aaX 2 4\n" {
		t.Fatalf("got %q", got)
	}
}
