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

// Pos is a line and column (both starting at 1) in the source.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// SyntaxError reports a problem in template source.
type SyntaxError struct {
	Name string
	Pos  Pos
	Msg  string
}

func (e *SyntaxError) Error() string {
	name := e.Name
	if name == "" {
		name = "input"
	}
	return name + ":" + e.Pos.String() + ": " + e.Msg
}

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tChar
	tDoc
	tPunct
)

type token struct {
	kind tokenKind
	text string
	sym  core.Symbol
	pos  Pos

	// last is the last line of a doc comment.
	last int
}

func (t token) String() string {
	switch t.kind {
	case tEOF:
		return "end of input"
	case tChar:
		return t.sym.String()
	case tDoc:
		return "comment"
	}
	return strconv.Quote(t.text)
}

const puncts = "{}[](),;<>=|&!*"

type lexer struct {
	name string
	src  string
	off  int
	line int
	col  int
}

func lex(name, src string) ([]token, error) {
	l := &lexer{
		name: name,
		src:  src,
		line: 1,
		col:  1,
	}
	var acc []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		// Consecutive comment lines make one doc token.
		if t.kind == tDoc && 0 < len(acc) {
			if prev := &acc[len(acc)-1]; prev.kind == tDoc && prev.last+1 == t.pos.Line {
				prev.text += "\n" + t.text
				prev.last = t.last
				continue
			}
		}
		acc = append(acc, t)
		if t.kind == tEOF {
			return acc, nil
		}
	}
}

func (l *lexer) errorf(pos Pos, msg string) error {
	return &SyntaxError{Name: l.name, Pos: pos, Msg: msg}
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Col: l.col}
}

func (l *lexer) peekByte(ahead int) byte {
	if l.off+ahead < len(l.src) {
		return l.src[l.off+ahead]
	}
	return 0
}

func (l *lexer) advance() byte {
	c := l.src[l.off]
	l.off++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *lexer) restOfLine() string {
	start := l.off
	for l.off < len(l.src) && l.src[l.off] != '\n' {
		l.advance()
	}
	return l.src[start:l.off]
}

func isIdentStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || '0' <= c && c <= '9'
}

func (l *lexer) next() (token, error) {
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
			continue
		case c == '/' && l.peekByte(1) == '/':
			l.restOfLine()
			continue
		}
		break
	}

	pos := l.pos()
	if len(l.src) <= l.off {
		return token{kind: tEOF, pos: pos}, nil
	}

	c := l.src[l.off]
	switch {
	case c == '#':
		l.advance()
		text := strings.TrimSpace(l.restOfLine())
		return token{kind: tDoc, text: text, pos: pos, last: pos.Line}, nil

	case isIdentStart(c):
		start := l.off
		for l.off < len(l.src) && isIdentByte(l.src[l.off]) {
			l.advance()
		}
		return token{kind: tIdent, text: l.src[start:l.off], pos: pos}, nil

	case c == '\'':
		return l.char(pos)

	case c == '.' && l.peekByte(1) == '.':
		l.advance()
		l.advance()
		return token{kind: tPunct, text: "..", pos: pos}, nil

	case strings.IndexByte(puncts, c) >= 0:
		l.advance()
		return token{kind: tPunct, text: string(c), pos: pos}, nil
	}

	return token{}, l.errorf(pos, "unexpected character "+strconv.QuoteRune(rune(c)))
}

// char lexes 'c' or 'xHH'.
func (l *lexer) char(pos Pos) (token, error) {
	start := l.off
	l.advance()
	if len(l.src) <= l.off || l.src[l.off] == '\n' {
		return token{}, l.errorf(pos, "unterminated symbol")
	}
	l.advance()
	if l.peekByte(0) == '\'' {
		l.advance()
		return token{kind: tChar, sym: core.Symbol(l.src[start+1]), text: l.src[start:l.off], pos: pos}, nil
	}
	for l.off < len(l.src) && l.src[l.off] != '\'' && l.src[l.off] != '\n' && l.off-start < 5 {
		l.advance()
	}
	if l.peekByte(0) != '\'' {
		return token{}, l.errorf(pos, "unterminated symbol")
	}
	l.advance()
	lit := l.src[start:l.off]
	sym, err := core.ParseSymbol(lit)
	if err != nil {
		return token{}, l.errorf(pos, err.Error())
	}
	return token{kind: tChar, sym: sym, text: lit, pos: pos}, nil
}
