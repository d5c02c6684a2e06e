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
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Symbol is a tape symbol.  The alphabet is all 256 byte values.
type Symbol byte

// Blank is the symbol read from a tape cell that has never been
// written.
const Blank Symbol = 0x00

// BadSymbol occurs when ParseSymbol is given something that isn't a
// symbol literal.
var BadSymbol = errors.New("bad symbol literal")

// String renders the symbol as a literal that ParseSymbol accepts.
//
// Printable ASCII renders as 'c', everything else as 'xHH'.
func (s Symbol) String() string {
	if ' ' < s && s < 0x7f && s != '\'' {
		return "'" + string(rune(s)) + "'"
	}
	return fmt.Sprintf("'x%02x'", byte(s))
}

// ParseSymbol parses 'c' or 'xHH'.
func ParseSymbol(lit string) (Symbol, error) {
	n := len(lit)
	if n < 3 || lit[0] != '\'' || lit[n-1] != '\'' {
		return 0, fmt.Errorf("%w: %q", BadSymbol, lit)
	}
	switch n {
	case 3:
		return Symbol(lit[1]), nil
	case 5:
		if lit[1] != 'x' {
			break
		}
		b, err := strconv.ParseUint(lit[2:4], 16, 8)
		if err != nil {
			break
		}
		return Symbol(b), nil
	}
	return 0, fmt.Errorf("%w: %q", BadSymbol, lit)
}

// Mask is a 256-bit membership set over the alphabet.
//
// Masks are comparable with ==, which is how structurally different
// selectors are recognized as the same set.
type Mask [4]uint64

// FullMask contains every symbol.
var FullMask = Mask{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}

// Has reports whether s is in the set.
func (m Mask) Has(s Symbol) bool {
	return m[s>>6]&(1<<(s&63)) != 0
}

// Add puts s in the set.
func (m *Mask) Add(s Symbol) {
	m[s>>6] |= 1 << (s & 63)
}

// Count is the cardinality of the set.
func (m Mask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// Subset reports whether every member of m is in other.
func (m Mask) Subset(other Mask) bool {
	for i, w := range m {
		if w&^other[i] != 0 {
			return false
		}
	}
	return true
}

// First returns the lowest member (if any).
func (m Mask) First() (Symbol, bool) {
	for i, w := range m {
		if w != 0 {
			return Symbol(i*64 + bits.TrailingZeros64(w)), true
		}
	}
	return 0, false
}

// String renders the mask as 64 hex digits, most significant word
// first.
func (m Mask) String() string {
	var b strings.Builder
	for i := len(m) - 1; 0 <= i; i-- {
		fmt.Fprintf(&b, "%016x", m[i])
	}
	return b.String()
}
