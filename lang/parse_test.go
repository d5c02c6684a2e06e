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

package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Comcast/tmachine/core"
	. "github.com/Comcast/tmachine/util/testutil"
)

const seekSrc = `
seek(c, k) {
  [c] k
  [*] > seek(c, k)
}

main = seek('b') { ='X' accept };
`

const incrementSrc = `
// The carry propagates left.
scan {
  ['1'] ='0' < carry
  [*] > scan
}

carry {
  ['1'] ='0' < carry
  [*] ='1' accept
}
`

func TestParseMatchesBuiltSpecs(t *testing.T) {
	tests := []struct {
		description string
		name        string
		src         string
		want        *core.Spec
	}{
		{
			description: "seek",
			name:        "seek",
			src:         seekSrc,
			want:        core.SeekSpec(),
		},
		{
			description: "increment",
			name:        "increment",
			src:         incrementSrc,
			want:        core.IncrementSpec(),
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			spec, err := Parse(tc.name, tc.src)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := JS(spec), JS(tc.want); got != want {
				t.Fatalf("got\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestParseAndRun(t *testing.T) {
	spec, err := Parse("seek", seekSrc)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m, err := spec.Compile(ctx, "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tape, err := ParseTape("xyzb")
	if err != nil {
		t.Fatal(err)
	}
	status, out, _, err := m.Run(ctx, m.Entry, tape)
	if err != nil {
		t.Fatal(err)
	}
	if status != core.Accepted || out.String() != "xyzX" {
		t.Fatal(status, out)
	}
}

func TestDocs(t *testing.T) {
	src := `# Some templates.
#
# More about them.

# Stops.
halt = accept;

# Not attached because of the blank line.

loop {
  [] > loop
}
`
	spec, err := Parse("docs", src)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Doc != "Some templates.\n\nMore about them." {
		t.Fatalf("%q", spec.Doc)
	}
	if spec.States[0].Doc != "Stops." {
		t.Fatalf("%q", spec.States[0].Doc)
	}
	if spec.States[1].Doc != "" {
		t.Fatalf("%q", spec.States[1].Doc)
	}
	if spec.Entry != "" {
		t.Fatal(spec.Entry)
	}
}

func TestSelectors(t *testing.T) {
	tests := []struct {
		sel string
		in  string
		out string
	}{
		{sel: "", in: "a\x00\xff"},
		{sel: "*", in: "a\x00\xff"},
		{sel: "'a'", in: "a", out: "b"},
		{sel: "'a' 'b' 'c'", in: "abc", out: "d"},
		{sel: "'a'..'z' & !'q'", in: "az", out: "qA"},
		{sel: "'a' | 'b' & 'c'", in: "a", out: "bc"},
		{sel: "('a' | 'b') & 'b'", in: "b", out: "a"},
		{sel: "!('0'..'9')", in: "a\x00", out: "05"},
		{sel: "'x00'", in: "\x00", out: "0"},
		{sel: "'''", in: "'", out: "a"},
	}
	for _, tc := range tests {
		t.Run(tc.sel, func(t *testing.T) {
			spec, err := Parse("sel", "t { ["+tc.sel+"] accept }")
			if err != nil {
				t.Fatal(err)
			}
			sel, err := spec.States[0].Branches[0].Selector.Resolve(nil)
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < len(tc.in); i++ {
				if !sel.Contains(core.Symbol(tc.in[i])) {
					t.Fatalf("%s doesn't contain %q", sel, tc.in[i])
				}
			}
			for i := 0; i < len(tc.out); i++ {
				if sel.Contains(core.Symbol(tc.out[i])) {
					t.Fatalf("%s contains %q", sel, tc.out[i])
				}
			}
		})
	}
}

func TestCallArgs(t *testing.T) {
	spec, err := Parse("args", `main = f('a', [*], {> accept}, k, g('z') {<}) { reject };`)
	if err != nil {
		t.Fatal(err)
	}
	call := spec.States[0].Body.Parts[0]
	kinds := make([]string, len(call.Args))
	for i, a := range call.Args {
		kinds[i] = string(a.Kind)
	}
	if got := strings.Join(kinds, " "); got != "sym sel chain id chain chain" {
		t.Fatal(got)
	}
	if got := call.Args[4].Chain.String(); got != "g('z', {<})" {
		t.Fatal(got)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		description string
		src         string
		want        string
	}{
		{
			description: "after accept",
			src:         "main = accept >;",
			want:        "test:1:15: nothing can follow accept",
		},
		{
			description: "after a call",
			src:         "main {\n  [*] f <\n}",
			want:        `test:2:9: nothing can follow a call to "f"`,
		},
		{
			description: "bad symbol",
			src:         "main = ='ab';",
			want:        "test:1:9: ",
		},
		{
			description: "duplicate parameter",
			src:         "f(a, a) = accept;",
			want:        `test:1:6: duplicate parameter "a"`,
		},
		{
			description: "duplicate template",
			src:         "main = accept; main = reject;",
			want:        `test:1:16: duplicate template "main"`,
		},
		{
			description: "unexpected character",
			src:         "main = $;",
			want:        "test:1:8: unexpected character",
		},
		{
			description: "missing semicolon",
			src:         "main = accept",
			want:        "test:1:14: expected \";\" but found end of input",
		},
		{
			description: "keyword as name",
			src:         "accept = reject;",
			want:        "test:1:1:",
		},
		{
			description: "unclosed selector",
			src:         "main { ['a' accept }",
			want:        "test:1:13:",
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			_, err := Parse("test", tc.src)
			if err == nil {
				t.Fatal("expected an error")
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("%T %v", err, err)
			}
			if !strings.HasPrefix(err.Error(), tc.want) {
				t.Fatalf("%q doesn't start with %q", err.Error(), tc.want)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	src := `# Doc for the file.

# Seek.
seek(c, k) {
  [c] k
  [!c & !'x00'] > seek(c, k)
  [*] reject
}

# Entry.
main = ='a' seek('b', {='X' accept});
`
	spec, err := Parse("rt", src)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err = Format(&b, spec); err != nil {
		t.Fatal(err)
	}
	again, err := Parse("rt", b.String())
	if err != nil {
		t.Fatalf("%s\n%s", err, b.String())
	}
	if JS(spec) != JS(again) {
		t.Fatalf("%s\n%s\n%s", b.String(), JS(spec), JS(again))
	}
}

func TestParseTape(t *testing.T) {
	for _, s := range []string{"", "1011", "@-1:10011", "a'x00'b", "@3:'x27'", "a'@'b", "a@1000000000:b", "@-900:x@7:yz"} {
		tape, err := ParseTape(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := tape.String(); got != s {
			t.Fatalf("%q != %q", got, s)
		}
	}

	syms, err := ParseSymbols("'''a'x41'")
	if err != nil {
		t.Fatal(err)
	}
	if string(symsBytes(syms)) != "'aA" {
		t.Fatal(syms)
	}

	for _, bad := range []string{"ab'x", "'zzzz'", "@x:ab", "@1ab", "a@b"} {
		if _, err := ParseTape(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func symsBytes(syms []core.Symbol) []byte {
	acc := make([]byte, len(syms))
	for i, s := range syms {
		acc[i] = byte(s)
	}
	return acc
}
