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
	"context"
	"strconv"
)

// DefaultEntry is the entry template name used when neither the
// caller nor the Spec names one and the Spec has no states to default
// to.
var DefaultEntry = "main"

// Spec is a set of state templates used to build a Machine.
//
// A Spec gives the structure of the automaton.  It is never modified
// by compilation, so one Spec can be compiled many times (and
// concurrently) with different entry points and arguments.
type Spec struct {
	// Name is the generic name for this set of templates.
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Version is the version of this set of templates.
	Version string `json:"version,omitempty" yaml:",omitempty"`

	// Doc is general documentation (Markdown) about these
	// templates.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Entry is the name of the template compiled by default.  If
	// empty, the first template is the entry.
	Entry string `json:"entry,omitempty" yaml:",omitempty"`

	// States are the templates in source order.
	States []*StateDef `json:"states,omitempty" yaml:",omitempty"`
}

// StateDef is a named and optionally parameterized state template.
type StateDef struct {
	Name string `json:"name"`

	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Params are positional.  The arity of the template is
	// len(Params).
	Params []string `json:"params,omitempty" yaml:",omitempty"`

	// Branches are tested in this order.
	Branches []*BranchDef `json:"branches,omitempty" yaml:",omitempty"`

	// Body, when there are no Branches, is shorthand for one
	// branch that matches everything.
	Body *Chain `json:"body,omitempty" yaml:",omitempty"`
}

// BranchDef is a guarded chain in a template.
type BranchDef struct {
	// Selector guards the branch.  Nil matches everything.
	Selector *Selector `json:"when,omitempty" yaml:"when,omitempty"`

	Chain *Chain `json:"do,omitempty" yaml:"do,omitempty"`
}

// Arity is the number of parameters.
func (d *StateDef) Arity() int {
	return len(d.Params)
}

// Branching returns the template's branches with the Body shorthand
// expanded.
func (d *StateDef) Branching() []*BranchDef {
	if len(d.Branches) == 0 && d.Body != nil {
		return []*BranchDef{{Selector: All(), Chain: d.Body}}
	}
	return d.Branches
}

// Lookup finds the template with the given name.
func (s *Spec) Lookup(name string) (*StateDef, bool) {
	for _, d := range s.States {
		if d != nil && d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// EntryName determines the name of the entry template.
func (s *Spec) EntryName() string {
	if s.Entry != "" {
		return s.Entry
	}
	for _, d := range s.States {
		if d != nil {
			return d.Name
		}
	}
	return DefaultEntry
}

// Copy makes a copy of the Spec.  The templates themselves are shared
// since they are never modified.
func (s *Spec) Copy(version string) *Spec {
	if version == "" {
		version = s.Version
	}
	states := make([]*StateDef, len(s.States))
	copy(states, s.States)
	return &Spec{
		Name:    s.Name,
		Version: version,
		Doc:     s.Doc,
		Entry:   s.Entry,
		States:  states,
	}
}

// Validate checks the structure of the templates: unique names,
// unique parameters, and well-shaped selectors, primitives, and
// chains.
//
// Validate doesn't check references.  Those are checked during
// specialization because what a name means depends on the
// environment.
func (s *Spec) Validate() error {
	seen := make(map[string]bool, len(s.States))
	for i, d := range s.States {
		if d == nil {
			return &BadSpec{Template: "#" + strconv.Itoa(i), Branch: -1, Problem: "nil template"}
		}
		if d.Name == "" {
			return &BadSpec{Template: "#" + strconv.Itoa(i), Branch: -1, Problem: "template without a name"}
		}
		if seen[d.Name] {
			return &BadSpec{Template: d.Name, Branch: -1, Problem: "duplicate template"}
		}
		seen[d.Name] = true

		params := make(map[string]bool, len(d.Params))
		for _, p := range d.Params {
			if params[p] {
				return &BadSpec{Template: d.Name, Branch: -1, Problem: `duplicate parameter "` + p + `"`}
			}
			params[p] = true
		}

		for j, b := range d.Branching() {
			v := &validator{template: d.Name, branch: j}
			if b == nil {
				return v.bad("nil branch")
			}
			if err := v.selector(b.Selector); err != nil {
				return err
			}
			if err := v.chain(b.Chain); err != nil {
				return err
			}
		}
	}
	return nil
}

type validator struct {
	template string
	branch   int
}

func (v *validator) bad(problem string) error {
	return &BadSpec{Template: v.template, Branch: v.branch, Problem: problem}
}

func (v *validator) selector(s *Selector) error {
	if s == nil {
		return nil
	}
	switch s.Op {
	case OpAll:
	case OpElem:
		if s.Lo == nil {
			return v.bad("elem selector without an element")
		}
	case OpRange:
		if s.Lo == nil || s.Hi == nil {
			return v.bad("range selector without bounds")
		}
	case OpNot:
		if len(s.Subs) != 1 {
			return v.bad("not selector needs exactly one operand")
		}
	case OpOr, OpAnd:
	default:
		return v.bad(`unknown selector op "` + string(s.Op) + `"`)
	}
	for _, sub := range s.Subs {
		if sub == nil {
			return v.bad("nil selector operand")
		}
		if err := v.selector(sub); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) chain(c *Chain) error {
	if c == nil {
		return nil
	}
	for i, e := range c.Parts {
		if e == nil {
			return v.bad("nil chain element")
		}
		last := i == len(c.Parts)-1
		switch e.Kind {
		case ElemPrim:
			if e.Prim == nil {
				return v.bad("primitive element without a primitive")
			}
			switch e.Prim.Op {
			case OpLeft, OpRight:
			case OpPrint:
				if e.Prim.Sym == nil {
					return v.bad("print without a symbol")
				}
			default:
				return v.bad(`unknown primitive "` + string(e.Prim.Op) + `"`)
			}
		case ElemAccept, ElemReject:
			if !last {
				return v.bad(string(e.Kind) + " isn't last in its chain")
			}
		case ElemCall:
			if !last {
				return v.bad(`call to "` + e.Call + `" isn't last in its chain`)
			}
			if e.Call == "" {
				return v.bad("call without a name")
			}
			for _, a := range e.Args {
				if err := v.arg(a); err != nil {
					return err
				}
			}
		default:
			return v.bad(`unknown chain element "` + string(e.Kind) + `"`)
		}
	}
	return nil
}

func (v *validator) arg(a *CallArg) error {
	if a == nil {
		return v.bad("nil argument")
	}
	switch a.Kind {
	case ArgSym:
	case ArgSel:
		if a.Sel == nil {
			return v.bad("selector argument without a selector")
		}
		return v.selector(a.Sel)
	case ArgChain:
		return v.chain(a.Chain)
	case ArgId:
		if a.Id == "" {
			return v.bad("empty identifier argument")
		}
	default:
		return v.bad(`unknown argument kind "` + string(a.Kind) + `"`)
	}
	return nil
}

// Compile specializes the Spec starting from the given entry template
// (the Spec's EntryName if empty) with the given arguments.
//
// The returned Machine's Entry is the index of the entry state.  Any
// error is fatal: no partial Machine is returned.
func (s *Spec) Compile(ctx context.Context, entry string, args []Arg, limits *Limits) (*Machine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if entry == "" {
		entry = s.EntryName()
	}
	z := NewSpecializer(s, limits)
	idx, err := z.Specialize(ctx, entry, args)
	if err != nil {
		return nil, err
	}
	m := z.Machine()
	m.Entry = idx
	return m, nil
}
