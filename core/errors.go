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

// Compilation errors are template-author errors.  Each one says where
// (template name and branch position) the problem was found.  A
// Branch of -1 means the problem isn't in a branch (for example, the
// entry arguments).
//
// NoMatchingBranch is the only execution error.

import (
	"errors"
	"strconv"
)

func where(template string, branch int) string {
	s := `template "` + template + `"`
	if 0 <= branch {
		s += " branch " + strconv.Itoa(branch)
	}
	return s
}

// UnknownState occurs when a call names a template that doesn't
// exist.
type UnknownState struct {
	Name     string
	Template string
	Branch   int
}

func (e *UnknownState) Error() string {
	if e.Template == "" {
		return `unknown state "` + e.Name + `"`
	}
	return `unknown state "` + e.Name + `" called from ` + where(e.Template, e.Branch)
}

// ArityMismatch occurs when a template is specialized with the wrong
// number of arguments.
type ArityMismatch struct {
	Name     string
	Want     int
	Got      int
	Template string
	Branch   int
}

func (e *ArityMismatch) Error() string {
	s := `template "` + e.Name + `" wants ` + strconv.Itoa(e.Want) +
		" arguments but got " + strconv.Itoa(e.Got)
	if e.Template != "" {
		s += " at " + where(e.Template, e.Branch)
	}
	return s
}

// UnboundOrIllTypedParameter occurs when a selector element refers to
// a parameter that's unbound or bound to something other than a
// symbol or a singleton set.
type UnboundOrIllTypedParameter struct {
	Param    string
	Got      ArgKind // Empty if unbound.
	Template string
	Branch   int
}

func (e *UnboundOrIllTypedParameter) Error() string {
	if e.Got == "" {
		return `unbound parameter "` + e.Param + `" in selector at ` + where(e.Template, e.Branch)
	}
	return `parameter "` + e.Param + `" is a ` + string(e.Got) +
		`, not a symbol, in selector at ` + where(e.Template, e.Branch)
}

// TypeMismatch occurs when a parameter is used where its value
// doesn't fit: a non-symbol printed, or a non-chain invoked.
type TypeMismatch struct {
	Param    string
	Want     ArgKind
	Got      ArgKind // Empty if unbound.
	Template string
	Branch   int
}

func (e *TypeMismatch) Error() string {
	got := string(e.Got)
	if got == "" {
		got = "unbound"
	}
	return `parameter "` + e.Param + `" should be a ` + string(e.Want) +
		` but is ` + got + ` at ` + where(e.Template, e.Branch)
}

// SpecializationExplosion occurs when specialization produces more
// distinct states than allowed.  Usually a template is calling
// itself with ever-changing arguments.
type SpecializationExplosion struct {
	Limit int

	// Name and Args identify the specialization that went over
	// the limit.
	Name string
	Args string
}

func (e *SpecializationExplosion) Error() string {
	return "more than " + strconv.Itoa(e.Limit) + " specialized states (at " + e.Name + e.Args + ")"
}

// NonTerminatingBranch occurs when a branch chain has no terminal and
// Limits.StrictTerminals is set.
type NonTerminatingBranch struct {
	Template string
	Branch   int
}

func (e *NonTerminatingBranch) Error() string {
	return "no accept, reject, or call at " + where(e.Template, e.Branch)
}

// MalformedChain occurs when something follows accept or reject in a
// resolved chain.
type MalformedChain struct {
	Template string
	Branch   int
	Chain    string
}

func (e *MalformedChain) Error() string {
	return "elements after accept/reject in {" + e.Chain + "} at " + where(e.Template, e.Branch)
}

// BadSpec reports a structural problem found by Spec.Validate.
type BadSpec struct {
	Template string
	Branch   int
	Problem  string
}

func (e *BadSpec) Error() string {
	return e.Problem + " at " + where(e.Template, e.Branch)
}

// NoMatchingBranch occurs when no branch of the current state
// matches the scanned symbol.
type NoMatchingBranch struct {
	State  int
	Name   string
	Symbol Symbol
	Head   int
}

func (e *NoMatchingBranch) Error() string {
	return "no branch of state " + strconv.Itoa(e.State) + ` ("` + e.Name + `") matches ` +
		e.Symbol.String() + " at position " + strconv.Itoa(e.Head)
}

// BadGoto occurs when a machine refers to a state index it doesn't
// have.
type BadGoto struct {
	State  int
	Branch int
	Target int
}

func (e *BadGoto) Error() string {
	return "state " + strconv.Itoa(e.State) + " branch " + strconv.Itoa(e.Branch) +
		" goes to missing state " + strconv.Itoa(e.Target)
}

var (
	// ErrNotRunning occurs when a Config that has already
	// stopped is stepped.
	ErrNotRunning = errors.New("not running")

	// NoStates occurs when a Machine with no states is run.
	NoStates = errors.New("machine has no states")
)
