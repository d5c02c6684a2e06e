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
	"strconv"
	"strings"

	"github.com/Comcast/tmachine/core"
)

// ParseSymbols parses text where each byte is a symbol except for
// symbol literals ('c' or 'xHH'), which is how core.Tape renders
// symbols that don't print.
func ParseSymbols(s string) ([]core.Symbol, error) {
	acc := make([]core.Symbol, 0, len(s))
	for i := 0; i < len(s); {
		sym, n, err := nextSymbol(s, i)
		if err != nil {
			return nil, err
		}
		acc = append(acc, sym)
		i += n
	}
	return acc, nil
}

// nextSymbol reads the symbol at s[i:] and says how many bytes it
// took.
func nextSymbol(s string, i int) (core.Symbol, int, error) {
	if s[i] != '\'' {
		return core.Symbol(s[i]), 1, nil
	}
	var lit string
	switch {
	case i+2 < len(s) && s[i+2] == '\'':
		lit = s[i : i+3]
	case i+4 < len(s) && s[i+4] == '\'':
		lit = s[i : i+5]
	default:
		return 0, 0, tapeError(i, "unterminated symbol")
	}
	sym, err := core.ParseSymbol(lit)
	if err != nil {
		return 0, 0, tapeError(i, err.Error())
	}
	return sym, len(lit), nil
}

func tapeError(i int, msg string) error {
	return &SyntaxError{
		Name: "tape",
		Pos:  Pos{Line: 1, Col: i + 1},
		Msg:  msg,
	}
}

// ParseTape is the inverse of core.Tape's String: symbols written
// from position 0, where "@N:" moves to position N.  A literal '@'
// has to be written as a symbol literal.
func ParseTape(s string) (*core.Tape, error) {
	t := core.NewTape("")
	at := 0
	for i := 0; i < len(s); {
		if s[i] == '@' {
			colon := strings.IndexByte(s[i:], ':')
			if colon < 0 {
				return nil, tapeError(i, `"@" without ":"`)
			}
			n, err := strconv.Atoi(s[i+1 : i+colon])
			if err != nil {
				return nil, tapeError(i+1, "bad position")
			}
			at = n
			i += colon + 1
			continue
		}
		sym, n, err := nextSymbol(s, i)
		if err != nil {
			return nil, err
		}
		t.Set(at, sym)
		at++
		i += n
	}
	return t, nil
}
