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

// Env is a resolution scope: it binds a template's parameters to
// resolved arguments.
type Env struct {
	// Template is the name of the template being resolved.
	Template string

	bindings map[string]Arg
}

// NewEnv binds args positionally to params.
func NewEnv(template string, params []string, args []Arg) (*Env, error) {
	if len(params) != len(args) {
		return nil, &ArityMismatch{
			Name:   template,
			Want:   len(params),
			Got:    len(args),
			Branch: -1,
		}
	}
	bs := make(map[string]Arg, len(params))
	for i, p := range params {
		bs[p] = args[i]
	}
	return &Env{
		Template: template,
		bindings: bs,
	}, nil
}

// Lookup finds the binding for the given name.
func (e *Env) Lookup(name string) (Arg, bool) {
	if e == nil {
		return Arg{}, false
	}
	a, have := e.bindings[name]
	return a, have
}

// Len is the number of bindings.
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return len(e.bindings)
}
