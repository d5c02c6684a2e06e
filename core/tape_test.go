package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	. "github.com/Comcast/tmachine/util/testutil"
)

func TestTape(t *testing.T) {
	tape := NewTape("ab")
	if tape.Get(-5) != Blank || tape.Get(100) != Blank {
		t.Fatal("expected blanks")
	}
	tape.Set(-2, 'z')
	if lo, hi, ok := tape.Bounds(); !ok || lo != -2 || hi != 1 {
		t.Fatal(lo, hi, ok)
	}
	if got := tape.String(); got != "@-2:z'x00'ab" {
		t.Fatal(got)
	}
	if got := string(tape.Slice(-1, 2)); got != "\x00ab\x00" {
		t.Fatalf("%q", got)
	}

	c := tape.Copy()
	c.Set(0, 'A')
	if tape.Get(0) != 'a' {
		t.Fatal("copy isn't deep")
	}
	if tape.Equal(c) {
		t.Fatal("different tapes are equal")
	}

	// A written blank is the same as an unwritten cell.
	d := NewTape("ab")
	d.Set(7, Blank)
	if !d.Equal(NewTape("ab")) {
		t.Fatal("written blank")
	}

	var empty *Tape
	if empty.Get(3) != Blank || empty.Len() != 0 {
		t.Fatal("nil tape")
	}
	if NewTape("").String() != "" {
		t.Fatal("empty tape")
	}
}

func TestTapeSegments(t *testing.T) {
	tests := []struct {
		description string
		cells       map[int]Symbol
		want        string
	}{
		{
			description: "short gap filled",
			cells:       map[int]Symbol{0: 'a', 3: 'b'},
			want:        "a'x00''x00'b",
		},
		{
			description: "far apart",
			cells:       map[int]Symbol{0: 'a', 1000000000: 'b'},
			want:        "a@1000000000:b",
		},
		{
			description: "longest filled gap",
			cells:       map[int]Symbol{-1: 'a', MaxTapeGap: 'b'},
			want:        "@-1:a" + strings.Repeat("'x00'", MaxTapeGap) + "b",
		},
		{
			description: "one more than that",
			cells:       map[int]Symbol{-1: 'a', MaxTapeGap + 1: 'b'},
			want:        "@-1:a@" + strconv.Itoa(MaxTapeGap+1) + ":b",
		},
		{
			description: "at sign",
			cells:       map[int]Symbol{0: '@'},
			want:        "'@'",
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			tape := NewTape("")
			for p, s := range tc.cells {
				tape.Set(p, s)
			}
			if got := tape.String(); got != tc.want {
				t.Fatalf("%q != %q", got, tc.want)
			}
			n := 0
			for _, seg := range tape.Segments() {
				n += len(seg.Bytes)
			}
			if MaxTapeGap*len(tc.cells) < n {
				t.Fatal(n)
			}
		})
	}
}

func TestTapeJSON(t *testing.T) {
	tape := NewTape("ab")
	tape.Set(-1, 'x')

	js := JS(tape)
	if js != `[{"pos":-1,"sym":120},{"pos":0,"sym":97},{"pos":1,"sym":98}]` {
		t.Fatal(js)
	}

	var back Tape
	if err := json.Unmarshal([]byte(js), &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(tape) {
		t.Fatal(back.String())
	}
}
