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

package tools

import (
	"sort"
	"strconv"

	"github.com/Comcast/tmachine/core"
)

// MachineAnalysis reports on the structure of a Machine.
//
// Branch selection is first-match, so nothing here is an error for
// the Machine itself.  The warnings point to branches that can never
// be taken and to states that can get stuck.
type MachineAnalysis struct {
	machine *core.Machine

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	StateCount int `json:"stateCount"`
	Branches   int `json:"branches"`
	Prims      int `json:"prims"`

	// Templates counts the states specialized from each template.
	Templates map[string]int `json:"templates,omitempty"`

	AcceptStates []int `json:"acceptStates,omitempty"`
	RejectStates []int `json:"rejectStates,omitempty"`

	// Unreachable states can't be reached from the entry.
	Unreachable []int `json:"unreachable,omitempty"`

	// MissingCatchAll are states whose selectors don't cover
	// every symbol, so they can fail with NoMatchingBranch.
	MissingCatchAll []int `json:"missingCatchAll,omitempty"`

	// Shadowed lists "state/branch" for branches whose selectors
	// are covered by earlier branches.
	Shadowed []string `json:"shadowed,omitempty"`

	// EmptySelectors lists "state/branch" for selectors that
	// match nothing.
	EmptySelectors []string `json:"emptySelectors,omitempty"`
}

// Analyze examines the machine.  The error is only for a machine that
// fails Validate, and in that case the analysis is still returned.
func Analyze(m *core.Machine) (*MachineAnalysis, error) {
	a := &MachineAnalysis{
		machine:    m,
		StateCount: len(m.States),
		Templates:  make(map[string]int),
	}

	verr := m.Validate()
	if verr != nil {
		a.Errors = append(a.Errors, verr.Error())
	}

	accepting := make(map[int]bool)
	rejecting := make(map[int]bool)
	for i, s := range m.States {
		if s == nil {
			continue
		}
		if s.Template != "" {
			a.Templates[s.Template]++
		}
		var covered core.Mask
		for j, b := range s.Branches {
			a.Branches++
			a.Prims += len(b.Prims)
			mask := b.Selector.Mask()
			id := strconv.Itoa(i) + "/" + strconv.Itoa(j)
			switch {
			case mask.Count() == 0:
				a.EmptySelectors = append(a.EmptySelectors, id)
			case mask.Subset(covered):
				a.Shadowed = append(a.Shadowed, id)
			}
			for w := range covered {
				covered[w] |= mask[w]
			}
			switch b.Then.Kind {
			case core.Accept:
				accepting[i] = true
			case core.Reject:
				rejecting[i] = true
			}
		}
		if covered != core.FullMask {
			a.MissingCatchAll = append(a.MissingCatchAll, i)
		}
	}
	a.AcceptStates = sortedKeys(accepting)
	a.RejectStates = sortedKeys(rejecting)

	if verr == nil {
		reached := reachable(m)
		for i := range m.States {
			if !reached[i] {
				a.Unreachable = append(a.Unreachable, i)
			}
		}
	}

	if len(a.AcceptStates) == 0 && 0 < len(m.States) {
		a.Warnings = append(a.Warnings, "no state can accept")
	}
	for _, i := range a.MissingCatchAll {
		a.Warnings = append(a.Warnings, "state "+strconv.Itoa(i)+" ("+m.States[i].Name+") doesn't match every symbol")
	}
	for _, id := range a.Shadowed {
		a.Warnings = append(a.Warnings, "branch "+id+" is shadowed by earlier branches")
	}
	for _, id := range a.EmptySelectors {
		a.Warnings = append(a.Warnings, "branch "+id+" matches nothing")
	}

	return a, verr
}

// reachable does a breadth-first search from the entry.
func reachable(m *core.Machine) map[int]bool {
	seen := map[int]bool{m.Entry: true}
	queue := []int{m.Entry}
	for 0 < len(queue) {
		i := queue[0]
		queue = queue[1:]
		for _, b := range m.States[i].Branches {
			if b.Then.Kind != core.Goto || seen[b.Then.Target] {
				continue
			}
			seen[b.Then.Target] = true
			queue = append(queue, b.Then.Target)
		}
	}
	return seen
}

func sortedKeys(m map[int]bool) []int {
	var list []int
	for k := range m {
		list = append(list, k)
	}
	sort.Ints(list)
	return list
}
