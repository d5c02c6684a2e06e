package core

import (
	"errors"
	"testing"
)

func TestResolveSelector(t *testing.T) {
	env, err := NewEnv("t", []string{"c", "s", "one", "k"}, []Arg{
		SymValue('c'),
		SelValue(RangeSelector('a', 'z')),
		SelValue(OrSelector(SymbolSelector('q'), SymbolSelector('q'))),
		ChainValue(chain(accept)),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		description string
		sel         *Selector
		in, out     Symbol
		err         interface{}
	}{
		{
			description: "literal",
			sel:         Sym('a'),
			in:          'a',
			out:         'b',
		},
		{
			description: "symbol parameter",
			sel:         Elem(Param("c")),
			in:          'c',
			out:         'd',
		},
		{
			description: "singleton set parameter",
			sel:         Elem(Param("one")),
			in:          'q',
			out:         'r',
		},
		{
			description: "range with parameter bound",
			sel:         Range(Lit('a'), Param("c")),
			in:          'b',
			out:         'd',
		},
		{
			description: "negated",
			sel:         Not(Elem(Param("c"))),
			in:          'x',
			out:         'c',
		},
		{
			description: "nil is all",
			in:          0,
		},
		{
			description: "unbound",
			sel:         Elem(Param("nope")),
			err:         &UnboundOrIllTypedParameter{},
		},
		{
			description: "bound to a set",
			sel:         Elem(Param("s")),
			err:         &UnboundOrIllTypedParameter{},
		},
		{
			description: "bound to a chain",
			sel:         Or(Sym('a'), Elem(Param("k"))),
			err:         &UnboundOrIllTypedParameter{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			s, err := tc.sel.Resolve(env)
			if tc.err != nil {
				var want *UnboundOrIllTypedParameter
				if !errors.As(err, &want) {
					t.Fatalf("expected an UnboundOrIllTypedParameter, not %v", err)
				}
				if want.Template != "t" {
					t.Fatal(want.Template)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !s.Contains(tc.in) {
				t.Fatalf("%s doesn't contain %s", s, tc.in)
			}
			if tc.out != 0 && s.Contains(tc.out) {
				t.Fatalf("%s contains %s", s, tc.out)
			}
		})
	}
}

func TestResolveChain(t *testing.T) {
	env, err := NewEnv("t", []string{"c", "s", "k"}, []Arg{
		SymValue('c'),
		SelValue(SymbolSelector('s')),
		ChainValue(chain(prim(OpRight), accept)),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		description string
		chain       *Chain
		want        *ResolvedChain
		err         error
	}{
		{
			description: "print parameter",
			chain:       NewChain(PrimElem(Print(Param("c"))), AcceptElem()),
			want:        chain(printElem('c'), accept),
		},
		{
			description: "invoking a continuation",
			chain:       NewChain(PrimElem(MoveLeft()), CallElem("k")),
			want:        chain(prim(OpLeft), prim(OpRight), accept),
		},
		{
			description: "bound arguments verbatim",
			chain:       NewChain(CallElem("f", IdArg("c"), IdArg("s"))),
			want:        chain(call("f", SymValue('c'), SelValue(SymbolSelector('s')))),
		},
		{
			description: "unbound identifier is a call",
			chain:       NewChain(CallElem("f", IdArg("g"), SymArg('z'))),
			want:        chain(call("f", ChainValue(chain(call("g"))), SymValue('z'))),
		},
		{
			description: "trailing continuation spliced",
			chain:       NewChain(CallElem("f", SymArg('a'), IdArg("k"))),
			want:        chain(chained("f", SymValue('a')), prim(OpRight), accept),
		},
		{
			description: "printing a set",
			chain:       NewChain(PrimElem(Print(Param("s")))),
			err:         &TypeMismatch{},
		},
		{
			description: "printing an unbound name",
			chain:       NewChain(PrimElem(Print(Param("nope")))),
			err:         &TypeMismatch{},
		},
		{
			description: "invoking a symbol",
			chain:       NewChain(CallElem("c")),
			err:         &TypeMismatch{},
		},
		{
			description: "continuation with arguments",
			chain:       NewChain(CallElem("k", SymArg('a'))),
			err:         &BadSpec{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			got, err := tc.chain.Resolve(env)
			if tc.err != nil {
				switch tc.err.(type) {
				case *TypeMismatch:
					var e *TypeMismatch
					if !errors.As(err, &e) {
						t.Fatalf("expected TypeMismatch, not %v", err)
					}
				case *BadSpec:
					var e *BadSpec
					if !errors.As(err, &e) {
						t.Fatalf("expected BadSpec, not %v", err)
					}
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %s want %s", got.Key(), tc.want.Key())
			}
		})
	}
}

func TestNewEnvArity(t *testing.T) {
	_, err := NewEnv("t", []string{"a", "b"}, []Arg{SymValue('a')})
	var e *ArityMismatch
	if !errors.As(err, &e) {
		t.Fatal(err)
	}
	if e.Want != 2 || e.Got != 1 {
		t.Fatal(e)
	}
}
