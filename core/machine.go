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
	"strconv"
	"strings"
)

// TerminalKind names what happens after a branch's primitives.
type TerminalKind string

const (
	Accept TerminalKind = "accept"
	Reject TerminalKind = "reject"
	Goto   TerminalKind = "goto"
)

// Terminal is a branch's outcome.
type Terminal struct {
	Kind TerminalKind `json:"kind"`

	// Target is the index of the next state for "goto".
	Target int `json:"target,omitempty" yaml:",omitempty"`
}

func (t Terminal) String() string {
	if t.Kind == Goto {
		return "goto " + strconv.Itoa(t.Target)
	}
	return string(t.Kind)
}

// Branch is a concrete branch: if the Selector matches the scanned
// symbol, do the Prims in order and then the Terminal.
type Branch struct {
	Selector *ResolvedSelector  `json:"when"`
	Prims    []ResolvedPrimitive `json:"prims,omitempty" yaml:",omitempty"`
	Then     Terminal            `json:"then"`
}

func (b *Branch) String() string {
	var acc []string
	acc = append(acc, "["+b.Selector.String()+"]")
	for _, p := range b.Prims {
		acc = append(acc, p.String())
	}
	acc = append(acc, b.Then.String())
	return strings.Join(acc, " ")
}

// State is a concrete state.
type State struct {
	// Name is a display name: the template name and the
	// arguments it was specialized with.
	Name string `json:"name"`

	// Template is the name of the template this state came from.
	Template string `json:"template,omitempty" yaml:",omitempty"`

	Args []Arg `json:"args,omitempty" yaml:",omitempty"`

	// Branches are tested in order.  First match wins.
	Branches []*Branch `json:"branches"`
}

// Machine is a concrete automaton.
//
// States refer to each other only by index, so cycles need no special
// treatment.  Once built, a Machine is not modified, and it can be
// used by any number of concurrent executions.
type Machine struct {
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Entry is the index of the state where execution usually
	// starts.
	Entry int `json:"entry"`

	States []*State `json:"states"`
}

// Lookup finds the index of the state with the given display name.
func (m *Machine) Lookup(name string) (int, bool) {
	for i, s := range m.States {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks that every goto target exists.  Machines made by a
// Specializer are always valid.  Machines from elsewhere (say, loaded
// from storage) should be checked.
func (m *Machine) Validate() error {
	n := len(m.States)
	if n == 0 {
		return NoStates
	}
	if m.Entry < 0 || n <= m.Entry {
		return &BadGoto{State: -1, Branch: -1, Target: m.Entry}
	}
	for i, s := range m.States {
		if s == nil {
			return &BadGoto{State: -1, Branch: -1, Target: i}
		}
		for j, b := range s.Branches {
			if b.Then.Kind == Goto && (b.Then.Target < 0 || n <= b.Then.Target) {
				return &BadGoto{State: i, Branch: j, Target: b.Then.Target}
			}
		}
	}
	return nil
}

func (m *Machine) String() string {
	var b strings.Builder
	for i, s := range m.States {
		b.WriteString(strconv.Itoa(i) + " " + s.Name)
		if i == m.Entry {
			b.WriteString(" (entry)")
		}
		b.WriteString("\n")
		for _, br := range s.Branches {
			b.WriteString("  " + br.String() + "\n")
		}
	}
	return b.String()
}

func displayName(name string, args []Arg) string {
	if len(args) == 0 {
		return name
	}
	acc := make([]string, len(args))
	for i, a := range args {
		acc[i] = a.String()
	}
	return name + "(" + strings.Join(acc, ", ") + ")"
}
