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

// Package lang parses the textual template language.
//
// A file is a sequence of template definitions:
//
//	# Move right until c and then do k.
//	seek(c, k) {
//	  [c] k
//	  [*] > seek(c, k)
//	}
//
//	main = seek('b') { ='X' accept };
//
// A definition is either a list of branches in braces or "=" and a
// single chain, which matches every symbol.  A branch is a selector
// in brackets followed by a chain.  Chain elements are "<" and ">"
// (move), "=" and a symbol or parameter (print), "accept", "reject",
// and calls.  A call is a name, optional arguments in parentheses, and
// an optional trailing block that becomes the last argument.
//
// Selectors use "|" (or), "&" (and), "!" (not), parentheses, "*"
// (everything), and "lo..hi" ranges.  Juxtaposed selectors are or'ed.
// Symbols are written 'c' or 'xHH'.
//
// Lines starting with "#" directly above a definition document it.  A
// comment block that doesn't precede a definition and comes before
// the first one documents the whole file.  "//" starts a comment that
// is ignored.
//
// If there is a template named "main", it's the entry.
package lang

import (
	"github.com/Comcast/tmachine/core"
)

// Parse parses template source.  The name is used in errors and as
// the Spec's name.
func Parse(name, src string) (*core.Spec, error) {
	toks, err := lex(name, src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		name: name,
		toks: toks,
	}
	return p.file()
}

type parser struct {
	name string
	toks []token
	i    int
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) token {
	if p.i+n < len(p.toks) {
		return p.toks[p.i+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.kind != tEOF {
		p.i++
	}
	return t
}

func (p *parser) is(punct string) bool {
	t := p.peek()
	return t.kind == tPunct && t.text == punct
}

func (p *parser) errorf(t token, msg string) error {
	return &SyntaxError{Name: p.name, Pos: t.pos, Msg: msg}
}

func (p *parser) expect(punct string) (token, error) {
	t := p.peek()
	if t.kind != tPunct || t.text != punct {
		return t, p.errorf(t, "expected \""+punct+"\" but found "+t.String())
	}
	return p.advance(), nil
}

func (p *parser) ident(what string) (token, error) {
	t := p.peek()
	if t.kind != tIdent {
		return t, p.errorf(t, "expected "+what+" but found "+t.String())
	}
	if t.text == "accept" || t.text == "reject" {
		return t, p.errorf(t, "\""+t.text+"\" can't be "+what)
	}
	return p.advance(), nil
}

func (p *parser) file() (*core.Spec, error) {
	spec := &core.Spec{
		Name: p.name,
	}
	seen := make(map[string]bool)

	var doc string
	for {
		t := p.peek()
		switch t.kind {
		case tEOF:
			if _, have := spec.Lookup(core.DefaultEntry); have {
				spec.Entry = core.DefaultEntry
			}
			return spec, nil
		case tDoc:
			p.advance()
			if next := p.peek(); next.kind == tIdent && next.pos.Line == t.last+1 {
				doc = t.text
			} else if len(spec.States) == 0 && spec.Doc == "" {
				spec.Doc = t.text
			}
			continue
		}

		def, err := p.def()
		if err != nil {
			return nil, err
		}
		if seen[def.Name] {
			return nil, p.errorf(t, "duplicate template \""+def.Name+"\"")
		}
		seen[def.Name] = true
		def.Doc, doc = doc, ""
		spec.States = append(spec.States, def)
	}
}

func (p *parser) def() (*core.StateDef, error) {
	name, err := p.ident("a template name")
	if err != nil {
		return nil, err
	}
	def := &core.StateDef{
		Name: name.text,
	}

	if p.is("(") {
		p.advance()
		params := make(map[string]bool)
		for {
			t, err := p.ident("a parameter")
			if err != nil {
				return nil, err
			}
			if params[t.text] {
				return nil, p.errorf(t, "duplicate parameter \""+t.text+"\"")
			}
			params[t.text] = true
			def.Params = append(def.Params, t.text)
			if p.is(",") {
				p.advance()
				continue
			}
			if _, err = p.expect(")"); err != nil {
				return nil, err
			}
			break
		}
	}

	switch {
	case p.is("="):
		p.advance()
		if def.Body, err = p.chain(); err != nil {
			return nil, err
		}
		if _, err = p.expect(";"); err != nil {
			return nil, err
		}
	case p.is("{"):
		p.advance()
		for !p.is("}") {
			b, err := p.branch()
			if err != nil {
				return nil, err
			}
			def.Branches = append(def.Branches, b)
		}
		p.advance()
	default:
		t := p.peek()
		return nil, p.errorf(t, "expected \"{\" or \"=\" but found "+t.String())
	}

	return def, nil
}

func (p *parser) branch() (*core.BranchDef, error) {
	if _, err := p.expect("["); err != nil {
		return nil, err
	}
	b := &core.BranchDef{}
	if p.is("]") {
		b.Selector = core.All()
	} else {
		sel, err := p.selector()
		if err != nil {
			return nil, err
		}
		b.Selector = sel
	}
	if _, err := p.expect("]"); err != nil {
		return nil, err
	}
	c, err := p.chain()
	if err != nil {
		return nil, err
	}
	b.Chain = c
	return b, nil
}

func (p *parser) startsElem() bool {
	t := p.peek()
	switch t.kind {
	case tIdent:
		return true
	case tPunct:
		switch t.text {
		case "<", ">", "=", "{":
			return true
		}
	}
	return false
}

// chain parses elements until something that can't start one.
// Nothing can follow accept, reject, or a call.
func (p *parser) chain() (*core.Chain, error) {
	c := core.NewChain()
	// after names the terminal seen so far.
	var after string
	for p.startsElem() {
		t := p.peek()
		if after != "" {
			return nil, p.errorf(t, "nothing can follow "+after)
		}
		switch {
		case t.kind == tIdent && t.text == "accept":
			p.advance()
			c.Parts = append(c.Parts, core.AcceptElem())
			after = "accept"
		case t.kind == tIdent && t.text == "reject":
			p.advance()
			c.Parts = append(c.Parts, core.RejectElem())
			after = "reject"
		case t.kind == tIdent:
			e, err := p.call()
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, e)
			after = "a call to \"" + e.Call + "\""
		case t.text == "<":
			p.advance()
			c.Parts = append(c.Parts, core.PrimElem(core.MoveLeft()))
		case t.text == ">":
			p.advance()
			c.Parts = append(c.Parts, core.PrimElem(core.MoveRight()))
		case t.text == "=":
			p.advance()
			r, err := p.ref()
			if err != nil {
				return nil, err
			}
			c.Parts = append(c.Parts, core.PrimElem(core.Print(r)))
		case t.text == "{":
			p.advance()
			inner, err := p.chain()
			if err != nil {
				return nil, err
			}
			if _, err = p.expect("}"); err != nil {
				return nil, err
			}
			for _, e := range inner.Parts {
				c.Parts = append(c.Parts, e)
				if e.Kind != core.ElemPrim {
					after = e.String()
				}
			}
		}
	}
	return c, nil
}

func (p *parser) call() (*core.ChainElem, error) {
	name, err := p.ident("a call")
	if err != nil {
		return nil, err
	}
	e := core.CallElem(name.text)
	if p.is("(") {
		p.advance()
		for !p.is(")") {
			a, err := p.arg()
			if err != nil {
				return nil, err
			}
			e.Args = append(e.Args, a)
			if p.is(",") {
				p.advance()
			} else if !p.is(")") {
				t := p.peek()
				return nil, p.errorf(t, "expected \",\" or \")\" but found "+t.String())
			}
		}
		p.advance()
	}
	if p.is("{") {
		p.advance()
		block, err := p.chain()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect("}"); err != nil {
			return nil, err
		}
		e.Args = append(e.Args, core.ChainArg(block))
	}
	return e, nil
}

func (p *parser) arg() (*core.CallArg, error) {
	t := p.peek()
	switch {
	case t.kind == tChar:
		p.advance()
		return core.SymArg(t.sym), nil
	case t.kind == tIdent:
		if next := p.peekAt(1); next.kind == tPunct && (next.text == "(" || next.text == "{") {
			e, err := p.call()
			if err != nil {
				return nil, err
			}
			return core.ChainArg(core.NewChain(e)), nil
		}
		if _, err := p.ident("an argument"); err != nil {
			return nil, err
		}
		return core.IdArg(t.text), nil
	case p.is("["):
		p.advance()
		sel := core.All()
		if !p.is("]") {
			var err error
			if sel, err = p.selector(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		return core.SelArg(sel), nil
	case p.is("{"):
		p.advance()
		c, err := p.chain()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect("}"); err != nil {
			return nil, err
		}
		return core.ChainArg(c), nil
	}
	return nil, p.errorf(t, "expected an argument but found "+t.String())
}

func (p *parser) ref() (*core.Ref, error) {
	t := p.peek()
	switch t.kind {
	case tChar:
		p.advance()
		return core.Lit(t.sym), nil
	case tIdent:
		if _, err := p.ident("a parameter"); err != nil {
			return nil, err
		}
		return core.Param(t.text), nil
	}
	return nil, p.errorf(t, "expected a symbol or parameter but found "+t.String())
}

func (p *parser) startsUnary() bool {
	t := p.peek()
	switch t.kind {
	case tChar, tIdent:
		return true
	case tPunct:
		switch t.text {
		case "!", "(", "*":
			return true
		}
	}
	return false
}

// selector parses an or of ands.  Juxtaposition is or.
func (p *parser) selector() (*core.Selector, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	subs := []*core.Selector{first}
	for {
		if p.is("|") {
			p.advance()
		} else if !p.startsUnary() {
			break
		}
		s, err := p.and()
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if len(subs) == 1 {
		return first, nil
	}
	return core.Or(subs...), nil
}

func (p *parser) and() (*core.Selector, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	subs := []*core.Selector{first}
	for p.is("&") {
		p.advance()
		s, err := p.unary()
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if len(subs) == 1 {
		return first, nil
	}
	return core.And(subs...), nil
}

func (p *parser) unary() (*core.Selector, error) {
	t := p.peek()
	switch {
	case p.is("!"):
		p.advance()
		s, err := p.unary()
		if err != nil {
			return nil, err
		}
		return core.Not(s), nil
	case p.is("("):
		p.advance()
		s, err := p.selector()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(")"); err != nil {
			return nil, err
		}
		return s, nil
	case p.is("*"):
		p.advance()
		return core.All(), nil
	case t.kind == tChar || t.kind == tIdent:
		lo, err := p.ref()
		if err != nil {
			return nil, err
		}
		if !p.is("..") {
			return core.Elem(lo), nil
		}
		p.advance()
		hi, err := p.ref()
		if err != nil {
			return nil, err
		}
		return core.Range(lo, hi), nil
	}
	return nil, p.errorf(t, "expected a selector but found "+t.String())
}
