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

// Selectors are symbol-set expressions used as branch guards.
//
// An (unresolved) Selector can refer to template parameters.  After
// resolution, a ResolvedSelector refers only to literal symbols, and
// its membership set can be materialized as a Mask.  Two resolved
// selectors are the same selector exactly when their Masks are equal.

import (
	"strings"
	"sync"
)

// SelectorOp names the shape of a selector node.
type SelectorOp string

const (
	OpOr    SelectorOp = "or"
	OpAnd   SelectorOp = "and"
	OpNot   SelectorOp = "not"
	OpAll   SelectorOp = "all"
	OpRange SelectorOp = "range"
	OpElem  SelectorOp = "elem"
)

// Ref is either a literal symbol or a reference to a parameter.
type Ref struct {
	Sym Symbol `json:"sym,omitempty" yaml:",omitempty"`

	// Param, if not empty, is the name of the parameter and Sym
	// is ignored.
	Param string `json:"param,omitempty" yaml:",omitempty"`
}

// Lit makes a literal Ref.
func Lit(s Symbol) *Ref {
	return &Ref{Sym: s}
}

// Param makes a parameter Ref.
func Param(name string) *Ref {
	return &Ref{Param: name}
}

func (r *Ref) String() string {
	if r == nil {
		return "?"
	}
	if r.Param != "" {
		return r.Param
	}
	return r.Sym.String()
}

// Selector is an unresolved symbol-set expression.
type Selector struct {
	Op SelectorOp `json:"op"`

	// Subs are the operands of "or" and "and" and the single
	// operand of "not".
	Subs []*Selector `json:"subs,omitempty" yaml:",omitempty"`

	// Lo is the element of an "elem" and the inclusive lower
	// bound of a "range".
	Lo *Ref `json:"lo,omitempty" yaml:",omitempty"`

	// Hi is the inclusive upper bound of a "range".
	Hi *Ref `json:"hi,omitempty" yaml:",omitempty"`
}

func Or(ss ...*Selector) *Selector {
	return &Selector{Op: OpOr, Subs: ss}
}

func And(ss ...*Selector) *Selector {
	return &Selector{Op: OpAnd, Subs: ss}
}

func Not(s *Selector) *Selector {
	return &Selector{Op: OpNot, Subs: []*Selector{s}}
}

func All() *Selector {
	return &Selector{Op: OpAll}
}

func Range(lo, hi *Ref) *Selector {
	return &Selector{Op: OpRange, Lo: lo, Hi: hi}
}

func Elem(r *Ref) *Selector {
	return &Selector{Op: OpElem, Lo: r}
}

// Sym is shorthand for Elem(Lit(s)).
func Sym(s Symbol) *Selector {
	return Elem(Lit(s))
}

func (s *Selector) String() string {
	if s == nil {
		return "*"
	}
	switch s.Op {
	case OpAll:
		return "*"
	case OpElem:
		return s.Lo.String()
	case OpRange:
		return s.Lo.String() + ".." + s.Hi.String()
	case OpNot:
		if len(s.Subs) != 1 {
			return "!?"
		}
		return "!" + s.Subs[0].String()
	case OpOr, OpAnd:
		parts := make([]string, len(s.Subs))
		for i, sub := range s.Subs {
			parts[i] = sub.String()
		}
		sep := " | "
		if s.Op == OpAnd {
			sep = " & "
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
	return "?" + string(s.Op)
}

// ResolvedSelector is a Selector with all parameter references
// replaced by symbols.
//
// Always use a *ResolvedSelector.  The Mask is computed at most once,
// and a ResolvedSelector can be shared by concurrent executions.
type ResolvedSelector struct {
	Op   SelectorOp          `json:"op"`
	Subs []*ResolvedSelector `json:"subs,omitempty" yaml:",omitempty"`
	Lo   Symbol              `json:"lo,omitempty" yaml:",omitempty"`
	Hi   Symbol              `json:"hi,omitempty" yaml:",omitempty"`

	once sync.Once
	mask Mask
}

func AllSymbols() *ResolvedSelector {
	return &ResolvedSelector{Op: OpAll}
}

func SymbolSelector(s Symbol) *ResolvedSelector {
	return &ResolvedSelector{Op: OpElem, Lo: s}
}

func RangeSelector(lo, hi Symbol) *ResolvedSelector {
	return &ResolvedSelector{Op: OpRange, Lo: lo, Hi: hi}
}

func OrSelector(ss ...*ResolvedSelector) *ResolvedSelector {
	return &ResolvedSelector{Op: OpOr, Subs: ss}
}

func AndSelector(ss ...*ResolvedSelector) *ResolvedSelector {
	return &ResolvedSelector{Op: OpAnd, Subs: ss}
}

func NotSelector(s *ResolvedSelector) *ResolvedSelector {
	return &ResolvedSelector{Op: OpNot, Subs: []*ResolvedSelector{s}}
}

// Matches evaluates the selector structurally.
//
// A nil selector matches everything.  So does an unknown Op, which
// Spec.Validate prevents.
func (s *ResolvedSelector) Matches(sym Symbol) bool {
	if s == nil {
		return true
	}
	switch s.Op {
	case OpOr:
		for _, sub := range s.Subs {
			if sub.Matches(sym) {
				return true
			}
		}
		return false
	case OpAnd:
		for _, sub := range s.Subs {
			if !sub.Matches(sym) {
				return false
			}
		}
		return true
	case OpNot:
		if len(s.Subs) != 1 {
			return false
		}
		return !s.Subs[0].Matches(sym)
	case OpRange:
		return s.Lo <= sym && sym <= s.Hi
	case OpElem:
		return sym == s.Lo
	}
	return true
}

// Mask materializes the membership set.
func (s *ResolvedSelector) Mask() Mask {
	if s == nil {
		return FullMask
	}
	s.once.Do(func() {
		if s.Op == OpAll {
			s.mask = FullMask
			return
		}
		for i := 0; i < 256; i++ {
			if s.Matches(Symbol(i)) {
				s.mask.Add(Symbol(i))
			}
		}
	})
	return s.mask
}

// Contains is the run-time membership test.
func (s *ResolvedSelector) Contains(sym Symbol) bool {
	if s == nil || s.Op == OpAll {
		return true
	}
	return s.Mask().Has(sym)
}

// Key is the canonical key: selectors with equal membership sets have
// equal keys regardless of how they are written.
func (s *ResolvedSelector) Key() string {
	return s.Mask().String()
}

// Equivalent reports whether the two selectors denote the same set.
func (s *ResolvedSelector) Equivalent(other *ResolvedSelector) bool {
	return s.Mask() == other.Mask()
}

// IsAll reports whether the selector matches every symbol.
func (s *ResolvedSelector) IsAll() bool {
	return s == nil || s.Op == OpAll || s.Mask() == FullMask
}

func (s *ResolvedSelector) String() string {
	if s == nil {
		return "*"
	}
	switch s.Op {
	case OpAll:
		return "*"
	case OpElem:
		return s.Lo.String()
	case OpRange:
		return s.Lo.String() + ".." + s.Hi.String()
	case OpNot:
		if len(s.Subs) != 1 {
			return "!?"
		}
		return "!" + s.Subs[0].String()
	case OpOr, OpAnd:
		parts := make([]string, len(s.Subs))
		for i, sub := range s.Subs {
			parts[i] = sub.String()
		}
		sep := " | "
		if s.Op == OpAnd {
			sep = " & "
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
	return "?" + string(s.Op)
}
