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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/tmachine/util/logs"

	"github.com/jsccast/yaml"
)

func TestScript(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "session.yaml")

	script := `
# A comment
load ../../tools/testdata/seek.tm
compile
tape aab
break seek('b', {='X' accept})
run
unbreak seek('b', {='X' accept})
run
print
save ` + saved + `
bogus
`

	var (
		opts = &Opts{limit: 100}
		out  = &bytes.Buffer{}
	)
	if err := opts.run(context.Background(), logs.Discard(), strings.NewReader(script), out); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"loaded 2 templates",
		"compiled 2 states (entry 0)",
		"stopped  breakpoint at seek('b', {='X' accept})",
		"running at 1 seek('b', {='X' accept}) head 0 steps 1 tape aab",
		"accepted at 1 seek('b', {='X' accept}) head 2 steps 4 tape aaX",
		"error: unsupported command: bogus",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in\n%s", want, got)
		}
	}

	bs, err := os.ReadFile(saved)
	if err != nil {
		t.Fatal(err)
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		t.Fatal(err)
	}
	if s.Status != "accepted" || s.Tape != "aaX" || s.Input != "aab" {
		t.Fatal(s.Status, s.Tape, s.Input)
	}
}

func TestDebuggerErrors(t *testing.T) {
	d := NewDebugger(nil, 10)
	for _, err := range []error{
		d.Compile(context.Background(), ""),
		d.Reset(),
		d.Break("main"),
		d.SetState("main"),
		d.Load("nope.tm"),
	} {
		if err == nil {
			t.Fatal("expected an error")
		}
	}

	if err := d.Load("../../tools/testdata/seek.tm"); err != nil {
		t.Fatal(err)
	}
	if err := d.Compile(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error")
	}
	if err := d.Compile(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTape("'x"); err == nil {
		t.Fatal("expected an error")
	}
	if err := d.Break("nope"); err == nil {
		t.Fatal("expected an error")
	}
}
