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

// resolver substitutes an Env into template elements.
//
// Every consumption site checks the kind of the bound argument
// explicitly.
type resolver struct {
	env      *Env
	template string
	branch   int
}

func newResolver(env *Env, branch int) *resolver {
	r := &resolver{
		env:    env,
		branch: branch,
	}
	if env != nil {
		r.template = env.Template
	}
	return r
}

// Resolve substitutes the Env into the Selector.
func (s *Selector) Resolve(env *Env) (*ResolvedSelector, error) {
	return newResolver(env, -1).selector(s)
}

// Resolve substitutes the Env into the Chain and flattens the result.
func (c *Chain) Resolve(env *Env) (*ResolvedChain, error) {
	return newResolver(env, -1).chain(c)
}

// Resolve substitutes the Env into the argument.
func (a *CallArg) Resolve(env *Env) (Arg, error) {
	return newResolver(env, -1).arg(a)
}

func (r *resolver) ref(ref *Ref) (Symbol, error) {
	if ref.Param == "" {
		return ref.Sym, nil
	}
	a, have := r.env.Lookup(ref.Param)
	if !have {
		return 0, &UnboundOrIllTypedParameter{
			Param:    ref.Param,
			Template: r.template,
			Branch:   r.branch,
		}
	}
	switch a.Kind {
	case ArgSym:
		return a.Sym, nil
	case ArgSel:
		m := a.Sel.Mask()
		if m.Count() == 1 {
			sym, _ := m.First()
			return sym, nil
		}
	}
	return 0, &UnboundOrIllTypedParameter{
		Param:    ref.Param,
		Got:      a.Kind,
		Template: r.template,
		Branch:   r.branch,
	}
}

func (r *resolver) selector(s *Selector) (*ResolvedSelector, error) {
	if s == nil {
		return AllSymbols(), nil
	}
	acc := &ResolvedSelector{Op: s.Op}
	switch s.Op {
	case OpElem:
		sym, err := r.ref(s.Lo)
		if err != nil {
			return nil, err
		}
		acc.Lo = sym
	case OpRange:
		lo, err := r.ref(s.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := r.ref(s.Hi)
		if err != nil {
			return nil, err
		}
		acc.Lo, acc.Hi = lo, hi
	}
	if 0 < len(s.Subs) {
		acc.Subs = make([]*ResolvedSelector, len(s.Subs))
		for i, sub := range s.Subs {
			x, err := r.selector(sub)
			if err != nil {
				return nil, err
			}
			acc.Subs[i] = x
		}
	}
	return acc, nil
}

func (r *resolver) primitive(p *Primitive) (ResolvedPrimitive, error) {
	if p.Op != OpPrint {
		return ResolvedPrimitive{Op: p.Op}, nil
	}
	if p.Sym.Param == "" {
		return ResolvedPrimitive{Op: OpPrint, Sym: p.Sym.Sym}, nil
	}
	a, have := r.env.Lookup(p.Sym.Param)
	if !have || a.Kind != ArgSym {
		return ResolvedPrimitive{}, &TypeMismatch{
			Param:    p.Sym.Param,
			Want:     ArgSym,
			Got:      a.Kind,
			Template: r.template,
			Branch:   r.branch,
		}
	}
	return ResolvedPrimitive{Op: OpPrint, Sym: a.Sym}, nil
}

func (r *resolver) arg(a *CallArg) (Arg, error) {
	switch a.Kind {
	case ArgSym:
		return SymValue(a.Sym), nil
	case ArgSel:
		sel, err := r.selector(a.Sel)
		if err != nil {
			return Arg{}, err
		}
		return SelValue(sel), nil
	case ArgChain:
		c, err := r.chain(a.Chain)
		if err != nil {
			return Arg{}, err
		}
		return ChainValue(c), nil
	case ArgId:
		if bound, have := r.env.Lookup(a.Id); have {
			return bound, nil
		}
		// Not a parameter, so it's a zero-argument template.
		return ChainValue(&ResolvedChain{
			Parts: []*ResolvedElem{{Kind: ElemCall, Call: a.Id}},
		}), nil
	}
	return Arg{}, &BadSpec{
		Template: r.template,
		Branch:   r.branch,
		Problem:  `unknown argument kind "` + string(a.Kind) + `"`,
	}
}

// chain resolves each element in order and returns the flattened
// result.  Any failure fails the whole chain.
func (r *resolver) chain(c *Chain) (*ResolvedChain, error) {
	acc := &ResolvedChain{}
	if c == nil {
		return acc, nil
	}
	acc.Parts = make([]*ResolvedElem, 0, len(c.Parts))
	for _, e := range c.Parts {
		switch e.Kind {
		case ElemPrim:
			p, err := r.primitive(e.Prim)
			if err != nil {
				return nil, err
			}
			acc.Parts = append(acc.Parts, &ResolvedElem{Kind: ElemPrim, Prim: p})
		case ElemAccept, ElemReject:
			acc.Parts = append(acc.Parts, &ResolvedElem{Kind: e.Kind})
		case ElemCall:
			if bound, have := r.env.Lookup(e.Call); have {
				// Invoking a continuation.
				if bound.Kind != ArgChain {
					return nil, &TypeMismatch{
						Param:    e.Call,
						Want:     ArgChain,
						Got:      bound.Kind,
						Template: r.template,
						Branch:   r.branch,
					}
				}
				if 0 < len(e.Args) {
					return nil, &BadSpec{
						Template: r.template,
						Branch:   r.branch,
						Problem:  `continuation "` + e.Call + `" called with arguments`,
					}
				}
				acc.Parts = append(acc.Parts, bound.Chain.parts()...)
				continue
			}
			args := make([]Arg, len(e.Args))
			for i, a := range e.Args {
				x, err := r.arg(a)
				if err != nil {
					return nil, err
				}
				args[i] = x
			}
			acc.Parts = append(acc.Parts, &ResolvedElem{
				Kind: ElemCall,
				Call: e.Call,
				Args: args,
			})
		default:
			return nil, &BadSpec{
				Template: r.template,
				Branch:   r.branch,
				Problem:  `unknown chain element "` + string(e.Kind) + `"`,
			}
		}
	}
	return acc.Flatten(), nil
}
