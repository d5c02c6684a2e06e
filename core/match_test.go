package core

import (
	"math/rand"
	"testing"
)

// refSet is a brute-force evaluation of a selector as a set.
func refSet(s *ResolvedSelector) [256]bool {
	var acc [256]bool
	switch s.Op {
	case OpAll:
		for i := range acc {
			acc[i] = true
		}
	case OpElem:
		acc[s.Lo] = true
	case OpRange:
		for i := int(s.Lo); i <= int(s.Hi); i++ {
			acc[i] = true
		}
	case OpNot:
		sub := refSet(s.Subs[0])
		for i := range acc {
			acc[i] = !sub[i]
		}
	case OpOr:
		for _, x := range s.Subs {
			sub := refSet(x)
			for i := range acc {
				acc[i] = acc[i] || sub[i]
			}
		}
	case OpAnd:
		for i := range acc {
			acc[i] = true
		}
		for _, x := range s.Subs {
			sub := refSet(x)
			for i := range acc {
				acc[i] = acc[i] && sub[i]
			}
		}
	}
	return acc
}

func randomSelector(r *rand.Rand, depth int) *ResolvedSelector {
	n := 6
	if depth <= 0 {
		n = 3
	}
	switch r.Intn(n) {
	case 0:
		return AllSymbols()
	case 1:
		return SymbolSelector(Symbol(r.Intn(256)))
	case 2:
		return RangeSelector(Symbol(r.Intn(256)), Symbol(r.Intn(256)))
	case 3:
		return NotSelector(randomSelector(r, depth-1))
	case 4:
		ss := make([]*ResolvedSelector, r.Intn(4))
		for i := range ss {
			ss[i] = randomSelector(r, depth-1)
		}
		return OrSelector(ss...)
	default:
		ss := make([]*ResolvedSelector, r.Intn(4))
		for i := range ss {
			ss[i] = randomSelector(r, depth-1)
		}
		return AndSelector(ss...)
	}
}

func TestMatchesAgreesWithReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 500; n++ {
		s := randomSelector(r, 4)
		ref := refSet(s)
		m := s.Mask()
		for i := 0; i < 256; i++ {
			sym := Symbol(i)
			if got := s.Matches(sym); got != ref[i] {
				t.Fatalf("%s Matches(%s) = %v", s, sym, got)
			}
			if got := m.Has(sym); got != ref[i] {
				t.Fatalf("%s Mask().Has(%s) = %v", s, sym, got)
			}
			if got := s.Contains(sym); got != ref[i] {
				t.Fatalf("%s Contains(%s) = %v", s, sym, got)
			}
		}
	}
}

func TestCanonicalEquivalence(t *testing.T) {
	tests := []struct {
		description string
		a, b        *ResolvedSelector
		equal       bool
	}{
		{
			description: "full range is all",
			a:           RangeSelector(0, 255),
			b:           AllSymbols(),
			equal:       true,
		},
		{
			description: "or of elems is a range",
			a:           OrSelector(SymbolSelector(1), SymbolSelector(2)),
			b:           RangeSelector(1, 2),
			equal:       true,
		},
		{
			description: "double negation",
			a:           NotSelector(NotSelector(SymbolSelector('a'))),
			b:           SymbolSelector('a'),
			equal:       true,
		},
		{
			description: "empty and is all",
			a:           AndSelector(),
			b:           AllSymbols(),
			equal:       true,
		},
		{
			description: "empty or is empty",
			a:           OrSelector(),
			b:           NotSelector(AllSymbols()),
			equal:       true,
		},
		{
			description: "inverted range is empty",
			a:           RangeSelector(9, 3),
			b:           OrSelector(),
			equal:       true,
		},
		{
			description: "different ranges",
			a:           RangeSelector('a', 'z'),
			b:           RangeSelector('a', 'y'),
			equal:       false,
		},
		{
			description: "elem vs not elem",
			a:           SymbolSelector(0),
			b:           NotSelector(SymbolSelector(0)),
			equal:       false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			if got := tc.a.Equivalent(tc.b); got != tc.equal {
				t.Fatalf("%s ≡ %s: %v", tc.a, tc.b, got)
			}
			if got := tc.a.Key() == tc.b.Key(); got != tc.equal {
				t.Fatalf("keys %s %s", tc.a.Key(), tc.b.Key())
			}
		})
	}
}

func TestMaskBasics(t *testing.T) {
	var m Mask
	if m.Count() != 0 {
		t.Fatal(m.Count())
	}
	if _, ok := m.First(); ok {
		t.Fatal("empty mask has a first member")
	}
	m.Add(200)
	m.Add(3)
	if m.Count() != 2 || !m.Has(200) || !m.Has(3) || m.Has(4) {
		t.Fatal(m)
	}
	if first, _ := m.First(); first != 3 {
		t.Fatal(first)
	}
	if !m.Subset(FullMask) || FullMask.Subset(m) {
		t.Fatal("subset")
	}
	if FullMask.Count() != 256 {
		t.Fatal(FullMask.Count())
	}
}

func TestSymbolLiterals(t *testing.T) {
	tests := []struct {
		lit  string
		sym  Symbol
		fail bool
	}{
		{lit: "'a'", sym: 'a'},
		{lit: "'x'", sym: 'x'},
		{lit: "'x41'", sym: 'A'},
		{lit: "'x00'", sym: Blank},
		{lit: "'xff'", sym: 0xff},
		{lit: "a", fail: true},
		{lit: "'ab'", fail: true},
		{lit: "'xzz'", fail: true},
		{lit: "''", fail: true},
	}
	for _, tc := range tests {
		t.Run(tc.lit, func(t *testing.T) {
			sym, err := ParseSymbol(tc.lit)
			if tc.fail {
				if err == nil {
					t.Fatalf("expected an error for %s", tc.lit)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if sym != tc.sym {
				t.Fatalf("%s: %v", tc.lit, sym)
			}
			back, err := ParseSymbol(sym.String())
			if err != nil || back != sym {
				t.Fatalf("round trip of %s: %v %v", sym, back, err)
			}
		})
	}
}
