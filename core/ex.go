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

// IncrementMachine makes the two-state binary incrementer as a
// concrete Machine.  It's useful to have around.
//
// State 0 scans right past everything that isn't a '1' and, at a
// '1', starts a carry to the left.  State 1 propagates the carry and
// accepts after writing the final '1'.
func IncrementMachine() *Machine {
	return &Machine{
		Name: "increment",
		States: []*State{
			{
				Name: "scan",
				Branches: []*Branch{
					{
						Selector: SymbolSelector('1'),
						Prims: []ResolvedPrimitive{
							{Op: OpPrint, Sym: '0'},
							{Op: OpLeft},
						},
						Then: Terminal{Kind: Goto, Target: 1},
					},
					{
						Selector: AllSymbols(),
						Prims:    []ResolvedPrimitive{{Op: OpRight}},
						Then:     Terminal{Kind: Goto, Target: 0},
					},
				},
			},
			{
				Name: "carry",
				Branches: []*Branch{
					{
						Selector: SymbolSelector('1'),
						Prims: []ResolvedPrimitive{
							{Op: OpPrint, Sym: '0'},
							{Op: OpLeft},
						},
						Then: Terminal{Kind: Goto, Target: 1},
					},
					{
						Selector: AllSymbols(),
						Prims:    []ResolvedPrimitive{{Op: OpPrint, Sym: '1'}},
						Then:     Terminal{Kind: Accept},
					},
				},
			},
		},
	}
}

// IncrementSpec is IncrementMachine written as (parameterless)
// templates.
func IncrementSpec() *Spec {
	carry := func(next string) *BranchDef {
		return &BranchDef{
			Selector: Sym('1'),
			Chain: NewChain(
				PrimElem(Print(Lit('0'))),
				PrimElem(MoveLeft()),
				CallElem(next),
			),
		}
	}
	return &Spec{
		Name: "increment",
		States: []*StateDef{
			{
				Name: "scan",
				Branches: []*BranchDef{
					carry("carry"),
					{
						Selector: All(),
						Chain:    NewChain(PrimElem(MoveRight()), CallElem("scan")),
					},
				},
			},
			{
				Name: "carry",
				Branches: []*BranchDef{
					carry("carry"),
					{
						Selector: All(),
						Chain:    NewChain(PrimElem(Print(Lit('1'))), AcceptElem()),
					},
				},
			},
		},
	}
}

// SeekSpec makes a parameterized example: "seek" moves right until it
// finds its first argument and then continues with its second
// argument, a chain.
//
//	seek(c, k) {
//	  [c] k
//	  [*] > seek(c, k)
//	}
//	main = seek('b') { ='X' accept };
func SeekSpec() *Spec {
	return &Spec{
		Name:  "seek",
		Entry: "main",
		States: []*StateDef{
			{
				Name:   "seek",
				Params: []string{"c", "k"},
				Branches: []*BranchDef{
					{
						Selector: Elem(Param("c")),
						Chain:    NewChain(CallElem("k")),
					},
					{
						Selector: All(),
						Chain: NewChain(
							PrimElem(MoveRight()),
							CallElem("seek", IdArg("c"), IdArg("k")),
						),
					},
				},
			},
			{
				Name: "main",
				Body: NewChain(
					CallElem("seek",
						SymArg('b'),
						ChainArg(NewChain(
							PrimElem(Print(Lit('X'))),
							AcceptElem(),
						)),
					),
				),
			},
		},
	}
}
