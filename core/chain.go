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
	"strings"
)

// PrimOp names a tape primitive.
type PrimOp string

const (
	OpLeft  PrimOp = "left"
	OpRight PrimOp = "right"
	OpPrint PrimOp = "print"
)

// Primitive is a head movement or a write.
type Primitive struct {
	Op PrimOp `json:"op"`

	// Sym is the symbol (or parameter) to print.  Only used by
	// "print".
	Sym *Ref `json:"sym,omitempty" yaml:",omitempty"`
}

func MoveLeft() *Primitive {
	return &Primitive{Op: OpLeft}
}

func MoveRight() *Primitive {
	return &Primitive{Op: OpRight}
}

func Print(r *Ref) *Primitive {
	return &Primitive{Op: OpPrint, Sym: r}
}

func (p *Primitive) String() string {
	switch p.Op {
	case OpLeft:
		return "<"
	case OpRight:
		return ">"
	case OpPrint:
		return "=" + p.Sym.String()
	}
	return "?" + string(p.Op)
}

// ElemKind names the kind of a chain element.
type ElemKind string

const (
	ElemPrim   ElemKind = "prim"
	ElemCall   ElemKind = "call"
	ElemAccept ElemKind = "accept"
	ElemReject ElemKind = "reject"
)

// ArgKind names the kind of a call argument.
type ArgKind string

const (
	ArgSym   ArgKind = "sym"
	ArgSel   ArgKind = "sel"
	ArgChain ArgKind = "chain"

	// ArgId is a reference to a parameter or (if unbound) a
	// zero-argument state template.  Only unresolved arguments
	// have this kind.
	ArgId ArgKind = "id"
)

// CallArg is an unresolved call argument.
type CallArg struct {
	Kind  ArgKind   `json:"kind"`
	Sym   Symbol    `json:"sym,omitempty" yaml:",omitempty"`
	Sel   *Selector `json:"sel,omitempty" yaml:",omitempty"`
	Chain *Chain    `json:"chain,omitempty" yaml:",omitempty"`
	Id    string    `json:"id,omitempty" yaml:",omitempty"`
}

func SymArg(s Symbol) *CallArg {
	return &CallArg{Kind: ArgSym, Sym: s}
}

func SelArg(s *Selector) *CallArg {
	return &CallArg{Kind: ArgSel, Sel: s}
}

func ChainArg(c *Chain) *CallArg {
	return &CallArg{Kind: ArgChain, Chain: c}
}

func IdArg(id string) *CallArg {
	return &CallArg{Kind: ArgId, Id: id}
}

func (a *CallArg) String() string {
	switch a.Kind {
	case ArgSym:
		return a.Sym.String()
	case ArgSel:
		return "[" + a.Sel.String() + "]"
	case ArgChain:
		return "{" + a.Chain.String() + "}"
	case ArgId:
		return a.Id
	}
	return "?" + string(a.Kind)
}

// ChainElem is one element of an unresolved Chain.
type ChainElem struct {
	Kind ElemKind   `json:"kind"`
	Prim *Primitive `json:"prim,omitempty" yaml:",omitempty"`

	// Call is the name of the called template (or of a
	// chain-valued parameter).
	Call string     `json:"call,omitempty" yaml:",omitempty"`
	Args []*CallArg `json:"args,omitempty" yaml:",omitempty"`
}

func PrimElem(p *Primitive) *ChainElem {
	return &ChainElem{Kind: ElemPrim, Prim: p}
}

func CallElem(id string, args ...*CallArg) *ChainElem {
	return &ChainElem{Kind: ElemCall, Call: id, Args: args}
}

func AcceptElem() *ChainElem {
	return &ChainElem{Kind: ElemAccept}
}

func RejectElem() *ChainElem {
	return &ChainElem{Kind: ElemReject}
}

func (e *ChainElem) String() string {
	switch e.Kind {
	case ElemPrim:
		return e.Prim.String()
	case ElemAccept:
		return "accept"
	case ElemReject:
		return "reject"
	case ElemCall:
		if len(e.Args) == 0 {
			return e.Call
		}
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		return e.Call + "(" + strings.Join(args, ", ") + ")"
	}
	return "?" + string(e.Kind)
}

// Chain is an ordered sequence of primitives optionally ending in a
// terminal (a call, accept, or reject).
type Chain struct {
	Parts []*ChainElem `json:"parts"`
}

// NewChain makes a Chain from the given elements.
func NewChain(parts ...*ChainElem) *Chain {
	return &Chain{Parts: parts}
}

func (c *Chain) String() string {
	if c == nil {
		return ""
	}
	parts := make([]string, len(c.Parts))
	for i, e := range c.Parts {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// ResolvedPrimitive is a Primitive with a literal symbol.
type ResolvedPrimitive struct {
	Op  PrimOp `json:"op"`
	Sym Symbol `json:"sym,omitempty" yaml:",omitempty"`
}

func (p ResolvedPrimitive) String() string {
	switch p.Op {
	case OpLeft:
		return "<"
	case OpRight:
		return ">"
	case OpPrint:
		return "=" + p.Sym.String()
	}
	return "?" + string(p.Op)
}

// Arg is a resolved call argument: a symbol, a symbol set, or a
// chain.
type Arg struct {
	Kind  ArgKind           `json:"kind"`
	Sym   Symbol            `json:"sym,omitempty" yaml:",omitempty"`
	Sel   *ResolvedSelector `json:"sel,omitempty" yaml:",omitempty"`
	Chain *ResolvedChain    `json:"chain,omitempty" yaml:",omitempty"`
}

func SymValue(s Symbol) Arg {
	return Arg{Kind: ArgSym, Sym: s}
}

func SelValue(s *ResolvedSelector) Arg {
	return Arg{Kind: ArgSel, Sel: s}
}

func ChainValue(c *ResolvedChain) Arg {
	return Arg{Kind: ArgChain, Chain: c}
}

// Key is the canonical key for the argument.  Symbols compare by
// value, selectors by Mask, and chains by their flattened structure.
func (a Arg) Key() string {
	switch a.Kind {
	case ArgSym:
		return a.Sym.String()
	case ArgSel:
		return "[" + a.Sel.Key() + "]"
	case ArgChain:
		return "{" + a.Chain.Key() + "}"
	}
	return "?" + string(a.Kind)
}

// Equal is structural equality.
func (a Arg) Equal(b Arg) bool {
	return a.Key() == b.Key()
}

func (a Arg) String() string {
	switch a.Kind {
	case ArgSym:
		return a.Sym.String()
	case ArgSel:
		return "[" + a.Sel.String() + "]"
	case ArgChain:
		return "{" + a.Chain.String() + "}"
	}
	return "?" + string(a.Kind)
}

// ArgsKey is the canonical key for an argument tuple.
func ArgsKey(args []Arg) string {
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = a.Key()
	}
	return "(" + strings.Join(keys, ",") + ")"
}

// ResolvedElem is one element of a ResolvedChain.
type ResolvedElem struct {
	Kind ElemKind          `json:"kind"`
	Prim ResolvedPrimitive `json:"prim,omitempty" yaml:",omitempty"`
	Call string            `json:"call,omitempty" yaml:",omitempty"`
	Args []Arg             `json:"args,omitempty" yaml:",omitempty"`

	// Chained marks a call whose last argument was a chain that
	// now follows the call in its ResolvedChain.  The (possibly
	// empty) rest of that chain is the call's continuation.
	Chained bool `json:"chained,omitempty" yaml:",omitempty"`
}

func (e *ResolvedElem) key(show func(Arg) string, sep string) string {
	switch e.Kind {
	case ElemPrim:
		return e.Prim.String()
	case ElemAccept:
		return "accept"
	case ElemReject:
		return "reject"
	case ElemCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = show(a)
		}
		return e.Call + "(" + strings.Join(args, sep) + ")"
	}
	return "?" + string(e.Kind)
}

// ResolvedChain is a fully substituted chain.
//
// In a flattened ResolvedChain the last chain argument of a call is
// spliced in after the call, which is then marked Chained.  The
// elements following the first call of a flat chain are that call's
// continuation.
type ResolvedChain struct {
	Parts []*ResolvedElem `json:"parts"`
}

// Key is the canonical key of the chain.  Only meaningful for a
// flattened chain.
func (c *ResolvedChain) Key() string {
	if c == nil {
		return ""
	}
	keys := make([]string, len(c.Parts))
	for i, e := range c.Parts {
		keys[i] = e.key(Arg.Key, ",")
		if e.Kind == ElemCall && e.Chained {
			keys[i] += "&"
		}
	}
	return strings.Join(keys, " ")
}

// Equal is structural equality of flattened chains.
func (c *ResolvedChain) Equal(d *ResolvedChain) bool {
	return c.Key() == d.Key()
}

func (c *ResolvedChain) String() string {
	if c == nil {
		return ""
	}
	var acc []string
	for i, e := range c.Parts {
		if e.Kind == ElemCall && (e.Chained || i+1 < len(c.Parts)) {
			rest := &ResolvedChain{Parts: c.Parts[i+1:]}
			acc = append(acc, e.String()+" {"+rest.String()+"}")
			break
		}
		acc = append(acc, e.String())
	}
	return strings.Join(acc, " ")
}

func (e *ResolvedElem) String() string {
	if e.Kind == ElemCall && len(e.Args) == 0 {
		return e.Call
	}
	return e.key(Arg.String, ", ")
}

// Flatten returns the canonical form of the chain: a call whose last
// argument is a chain has that one chain removed from its arguments
// and spliced (itself flattened) right after the call.  Only the last
// argument moves, so f(a, {x}, {y}) becomes f(a, {x}) y.  Chains in
// other argument positions are flattened in place.
//
// Flattening a flat chain yields an equal chain.
func (c *ResolvedChain) Flatten() *ResolvedChain {
	if c == nil {
		return &ResolvedChain{}
	}
	acc := &ResolvedChain{Parts: make([]*ResolvedElem, 0, len(c.Parts))}
	acc.appendFlat(c.Parts)
	return acc
}

func (c *ResolvedChain) appendFlat(parts []*ResolvedElem) {
	for _, e := range parts {
		if e.Kind != ElemCall {
			c.Parts = append(c.Parts, e)
			continue
		}
		args := make([]Arg, len(e.Args))
		for i, a := range e.Args {
			if a.Kind == ArgChain {
				a = ChainValue(a.Chain.Flatten())
			}
			args[i] = a
		}
		f := &ResolvedElem{
			Kind:    ElemCall,
			Call:    e.Call,
			Args:    args,
			Chained: e.Chained,
		}
		var tail *ResolvedChain
		if n := len(args); !f.Chained && 0 < n && args[n-1].Kind == ArgChain {
			tail = args[n-1].Chain
			f.Args = args[:n-1]
			f.Chained = true
		}
		c.Parts = append(c.Parts, f)
		if tail != nil {
			c.Parts = append(c.Parts, tail.Parts...)
		}
	}
}

// Splice appends b after a and returns the flattened result.
//
// Splice is associative.
func Splice(a, b *ResolvedChain) *ResolvedChain {
	parts := make([]*ResolvedElem, 0, len(a.parts())+len(b.parts()))
	parts = append(parts, a.parts()...)
	parts = append(parts, b.parts()...)
	return (&ResolvedChain{Parts: parts}).Flatten()
}

func (c *ResolvedChain) parts() []*ResolvedElem {
	if c == nil {
		return nil
	}
	return c.Parts
}

// Terminal finds the first non-primitive element.  The returned index
// is len(c.Parts) if there isn't one.
func (c *ResolvedChain) Terminal() (int, *ResolvedElem) {
	for i, e := range c.Parts {
		if e.Kind != ElemPrim {
			return i, e
		}
	}
	return len(c.Parts), nil
}
