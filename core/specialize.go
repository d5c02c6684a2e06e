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
	"log/slog"
)

// Limits influences how a Specializer operates.
type Limits struct {
	// MaxStates is the maximum number of distinct specialized
	// states.  Zero means DefaultMaxStates.
	MaxStates int `json:"maxStates,omitempty" yaml:"maxStates,omitempty"`

	// StrictTerminals makes a branch chain without accept,
	// reject, or a call a NonTerminatingBranch error.  Otherwise
	// such a branch stays in the same state.
	StrictTerminals bool `json:"strictTerminals,omitempty" yaml:"strictTerminals,omitempty"`

	// Logger, if not nil, gets a debug record for each new
	// specialization.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

var (
	// DefaultMaxStates is the specialization ceiling used when
	// Limits.MaxStates is zero.
	DefaultMaxStates = 10000

	// DefaultLimits will be used by NewSpecializer if the given
	// limits are nil.
	DefaultLimits = &Limits{}
)

// Specializer turns templates into concrete states.
//
// Each distinct (template name, argument key) pair becomes exactly
// one state.  The state's index is reserved before its branches are
// resolved, so templates that call themselves (directly or not) just
// refer to an index that already exists.
//
// A Specializer is not safe for concurrent use.  Once Specialize has
// returned an error, the Specializer should be discarded.
type Specializer struct {
	spec   *Spec
	limits *Limits
	defs   map[string]*StateDef

	memo    map[string]int
	machine *Machine
	pending []*job
}

type job struct {
	index int
	def   *StateDef
	args  []Arg
}

// NewSpecializer makes a Specializer for the given templates.
func NewSpecializer(spec *Spec, limits *Limits) *Specializer {
	if limits == nil {
		limits = DefaultLimits
	}
	defs := make(map[string]*StateDef, len(spec.States))
	for _, d := range spec.States {
		if d == nil {
			continue
		}
		if _, have := defs[d.Name]; !have {
			defs[d.Name] = d
		}
	}
	return &Specializer{
		spec:   spec,
		limits: limits,
		defs:   defs,
		memo:   make(map[string]int),
		machine: &Machine{
			Name:   spec.Name,
			States: make([]*State, 0, 16),
		},
	}
}

func (z *Specializer) maxStates() int {
	if 0 < z.limits.MaxStates {
		return z.limits.MaxStates
	}
	return DefaultMaxStates
}

// Machine returns the Machine built so far.
func (z *Specializer) Machine() *Machine {
	return z.machine
}

// Count is the number of states specialized so far.
func (z *Specializer) Count() int {
	return len(z.machine.States)
}

// Specialize returns the index of the state for the given template
// and arguments, building it (and every state it can reach) if
// necessary.
func (z *Specializer) Specialize(ctx context.Context, name string, args []Arg) (int, error) {
	idx, err := z.intern(name, args, "", -1)
	if err != nil {
		return 0, err
	}
	if err = z.drain(ctx); err != nil {
		return 0, err
	}
	return idx, nil
}

// intern finds or reserves the index for the given specialization.
//
// The caller and branch are only used for error reporting.
func (z *Specializer) intern(name string, args []Arg, caller string, branch int) (int, error) {
	def, have := z.defs[name]
	if !have {
		return 0, &UnknownState{
			Name:     name,
			Template: caller,
			Branch:   branch,
		}
	}
	if def.Arity() != len(args) {
		return 0, &ArityMismatch{
			Name:     name,
			Want:     def.Arity(),
			Got:      len(args),
			Template: caller,
			Branch:   branch,
		}
	}

	argsKey := ArgsKey(args)
	key := name + argsKey
	if idx, have := z.memo[key]; have {
		return idx, nil
	}

	if limit := z.maxStates(); limit <= len(z.machine.States) {
		return 0, &SpecializationExplosion{
			Limit: limit,
			Name:  name,
			Args:  argsKey,
		}
	}

	idx := len(z.machine.States)
	z.machine.States = append(z.machine.States, &State{
		Name:     displayName(name, args),
		Template: name,
		Args:     args,
	})
	z.memo[key] = idx
	z.pending = append(z.pending, &job{
		index: idx,
		def:   def,
		args:  args,
	})

	if z.limits.Logger != nil {
		z.limits.Logger.Debug("specialized",
			"index", idx,
			"state", z.machine.States[idx].Name)
	}

	return idx, nil
}

// drain builds pending states breadth-first.
func (z *Specializer) drain(ctx context.Context) error {
	for 0 < len(z.pending) {
		if err := ctx.Err(); err != nil {
			return err
		}
		j := z.pending[0]
		z.pending[0] = nil
		z.pending = z.pending[1:]
		if err := z.build(j); err != nil {
			return err
		}
	}
	z.pending = nil
	return nil
}

// build resolves a reserved state's branches.  The state's branch
// list is set only after every branch has been resolved.
func (z *Specializer) build(j *job) error {
	env, err := NewEnv(j.def.Name, j.def.Params, j.args)
	if err != nil {
		return err
	}

	defs := j.def.Branching()
	branches := make([]*Branch, 0, len(defs))
	for i, b := range defs {
		r := newResolver(env, i)
		sel, err := r.selector(b.Selector)
		if err != nil {
			return err
		}
		chain, err := r.chain(b.Chain)
		if err != nil {
			return err
		}
		br, err := z.branch(j, i, sel, chain)
		if err != nil {
			return err
		}
		branches = append(branches, br)
	}

	z.machine.States[j.index].Branches = branches
	return nil
}

// branch classifies a resolved chain: leading primitives and then
// the terminal.
func (z *Specializer) branch(j *job, i int, sel *ResolvedSelector, chain *ResolvedChain) (*Branch, error) {
	at, t := chain.Terminal()

	br := &Branch{
		Selector: sel,
		Prims:    make([]ResolvedPrimitive, at),
	}
	for k, e := range chain.Parts[:at] {
		br.Prims[k] = e.Prim
	}

	if t == nil {
		if z.limits.StrictTerminals {
			return nil, &NonTerminatingBranch{
				Template: j.def.Name,
				Branch:   i,
			}
		}
		br.Then = Terminal{Kind: Goto, Target: j.index}
		return br, nil
	}

	switch t.Kind {
	case ElemAccept, ElemReject:
		if at != len(chain.Parts)-1 {
			return nil, &MalformedChain{
				Template: j.def.Name,
				Branch:   i,
				Chain:    chain.String(),
			}
		}
		if t.Kind == ElemAccept {
			br.Then = Terminal{Kind: Accept}
		} else {
			br.Then = Terminal{Kind: Reject}
		}
	case ElemCall:
		args := t.Args
		if rest := chain.Parts[at+1:]; t.Chained || 0 < len(rest) {
			// The rest of the chain, even if empty, is the call's
			// continuation.
			args = make([]Arg, len(t.Args), len(t.Args)+1)
			copy(args, t.Args)
			args = append(args, ChainValue(&ResolvedChain{Parts: rest}))
		}
		target, err := z.intern(t.Call, args, j.def.Name, i)
		if err != nil {
			return nil, err
		}
		br.Then = Terminal{Kind: Goto, Target: target}
	}

	return br, nil
}
