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

// Package core provides the template specializer and the tape
// machine that runs its output.
//
// A Spec is a set of state templates.  A template has positional
// parameters and branches.  Each branch has a Selector (a symbol-set
// expression that can mention parameters) and a Chain (primitives
// that move the head or print, ending in accept, reject, or a call to
// a template).  Call arguments can be symbols, selectors, or chains,
// and a chain passed last is the call's continuation.
//
// Spec.Compile specializes templates into a Machine: one concrete
// State for each distinct (template, arguments) pair reachable from
// the entry template.  Arguments are compared structurally, with
// selectors compared by their membership sets, so equivalent
// instantiations share a State.  States refer to each other by index.
//
// A Machine is immutable and can be shared.  To execute it, make a
// Config (state, head, tape) and Step or Walk, or just Run.
//
// The text syntax for templates lives in package lang.
package core
