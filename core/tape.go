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

package core

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Tape is a conceptually infinite tape.  Only written cells are
// stored.  Reading any other cell yields Blank.
type Tape struct {
	cells map[int]Symbol
}

// NewTape makes a tape with the given bytes written starting at
// position 0.
func NewTape(init string) *Tape {
	t := &Tape{
		cells: make(map[int]Symbol, len(init)),
	}
	for i := 0; i < len(init); i++ {
		t.cells[i] = Symbol(init[i])
	}
	return t
}

// Get reads the symbol at the given position.
func (t *Tape) Get(pos int) Symbol {
	if t == nil {
		return Blank
	}
	return t.cells[pos]
}

// Set writes the symbol at the given position.  Cells are never
// removed, even when Blank is written.
func (t *Tape) Set(pos int, s Symbol) {
	if t.cells == nil {
		t.cells = make(map[int]Symbol)
	}
	t.cells[pos] = s
}

// Len is the number of written cells.
func (t *Tape) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cells)
}

// Bounds returns the lowest and highest written positions.  If
// nothing has been written, ok is false.
func (t *Tape) Bounds() (lo, hi int, ok bool) {
	if t.Len() == 0 {
		return 0, 0, false
	}
	first := true
	for p := range t.cells {
		if first || p < lo {
			lo = p
		}
		if first || hi < p {
			hi = p
		}
		first = false
	}
	return lo, hi, true
}

// Copy makes a deep copy.
func (t *Tape) Copy() *Tape {
	acc := &Tape{
		cells: make(map[int]Symbol, t.Len()),
	}
	if t != nil {
		for p, s := range t.cells {
			acc.cells[p] = s
		}
	}
	return acc
}

// Equal reports whether the two tapes read the same everywhere.
// Written blanks are the same as unwritten cells.
func (t *Tape) Equal(u *Tape) bool {
	for p, s := range t.cellsOrNil() {
		if u.Get(p) != s {
			return false
		}
	}
	for p, s := range u.cellsOrNil() {
		if t.Get(p) != s {
			return false
		}
	}
	return true
}

func (t *Tape) cellsOrNil() map[int]Symbol {
	if t == nil {
		return nil
	}
	return t.cells
}

// MaxTapeGap is the longest run of unwritten cells inside a Segment.
const MaxTapeGap = 64

// Segment is a stretch of the tape starting at Pos.
type Segment struct {
	Pos   int
	Bytes []byte
}

// Segments returns the written part of the tape in order.  A gap of
// more than MaxTapeGap unwritten cells starts a new Segment, and
// shorter gaps are filled with Blank.
func (t *Tape) Segments() []Segment {
	var acc []Segment
	next := 0
	for _, c := range t.Cells() {
		if n := len(acc); n == 0 || MaxTapeGap < c.Pos-next {
			acc = append(acc, Segment{Pos: c.Pos})
		} else {
			for ; next < c.Pos; next++ {
				acc[n-1].Bytes = append(acc[n-1].Bytes, byte(Blank))
			}
		}
		last := &acc[len(acc)-1]
		last.Bytes = append(last.Bytes, byte(c.Sym))
		next = c.Pos + 1
	}
	return acc
}

// Slice returns the cells in [from,to].
func (t *Tape) Slice(from, to int) []byte {
	if to < from {
		return nil
	}
	acc := make([]byte, 0, to-from+1)
	for p := from; p <= to; p++ {
		acc = append(acc, byte(t.Get(p)))
	}
	return acc
}

// String renders the tape's Segments.  Each one is prefixed with
// "@POS:" unless it's the first and starts at zero.  Non-printing
// symbols, quotes, and '@' are rendered as symbol literals.
func (t *Tape) String() string {
	var b strings.Builder
	for i, seg := range t.Segments() {
		if i != 0 || seg.Pos != 0 {
			b.WriteString("@" + strconv.Itoa(seg.Pos) + ":")
		}
		for _, c := range seg.Bytes {
			if ' ' <= c && c < 0x7f && c != '\'' && c != '@' {
				b.WriteByte(c)
			} else {
				b.WriteString(Symbol(c).String())
			}
		}
	}
	return b.String()
}

// Cell is a written tape cell.
type Cell struct {
	Pos int    `json:"pos"`
	Sym Symbol `json:"sym"`
}

// Cells returns the written cells sorted by position.
func (t *Tape) Cells() []Cell {
	acc := make([]Cell, 0, t.Len())
	for p, s := range t.cellsOrNil() {
		acc = append(acc, Cell{Pos: p, Sym: s})
	}
	sort.Slice(acc, func(i, j int) bool {
		return acc[i].Pos < acc[j].Pos
	})
	return acc
}

func (t *Tape) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Cells())
}

func (t *Tape) UnmarshalJSON(bs []byte) error {
	var cells []Cell
	if err := json.Unmarshal(bs, &cells); err != nil {
		return err
	}
	t.cells = make(map[int]Symbol, len(cells))
	for _, c := range cells {
		t.cells[c.Pos] = c.Sym
	}
	return nil
}
