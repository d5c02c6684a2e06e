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
	"context"
	"reflect"
	"testing"

	"github.com/Comcast/tmachine/core"
)

func TestAnalyzeIncrement(t *testing.T) {
	a, err := Analyze(core.IncrementMachine())
	if err != nil {
		t.Fatal(err)
	}
	if a.StateCount != 2 || a.Branches != 4 || a.Prims != 6 {
		t.Fatal(a.StateCount, a.Branches, a.Prims)
	}
	if !reflect.DeepEqual(a.AcceptStates, []int{1}) {
		t.Fatal(a.AcceptStates)
	}
	if len(a.Unreachable) != 0 || len(a.MissingCatchAll) != 0 || len(a.Shadowed) != 0 {
		t.Fatal(a.Warnings)
	}
}

func TestAnalyzeWarnings(t *testing.T) {
	m := &core.Machine{
		States: []*core.State{
			{
				Name: "picky",
				Branches: []*core.Branch{
					{Selector: core.RangeSelector('a', 'z'), Then: core.Terminal{Kind: core.Accept}},
					{Selector: core.SymbolSelector('q'), Then: core.Terminal{Kind: core.Reject}},
					{Selector: core.RangeSelector('z', 'a'), Then: core.Terminal{Kind: core.Reject}},
				},
			},
			{
				Name: "orphan",
				Branches: []*core.Branch{
					{Selector: core.AllSymbols(), Then: core.Terminal{Kind: core.Goto, Target: 0}},
				},
			},
		},
	}
	a, err := Analyze(m)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.MissingCatchAll, []int{0}) {
		t.Fatal(a.MissingCatchAll)
	}
	if !reflect.DeepEqual(a.Shadowed, []string{"0/1"}) {
		t.Fatal(a.Shadowed)
	}
	if !reflect.DeepEqual(a.EmptySelectors, []string{"0/2"}) {
		t.Fatal(a.EmptySelectors)
	}
	if !reflect.DeepEqual(a.Unreachable, []int{1}) {
		t.Fatal(a.Unreachable)
	}
	if len(a.Warnings) != 3 {
		t.Fatal(a.Warnings)
	}
}

func TestAnalyzeSeek(t *testing.T) {
	m, err := core.SeekSpec().Compile(context.Background(), "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := Analyze(m)
	if err != nil {
		t.Fatal(err)
	}
	if a.Templates["seek"] != 1 || a.Templates["main"] != 1 {
		t.Fatal(a.Templates)
	}
}

func TestAnalyzeBroken(t *testing.T) {
	m := &core.Machine{
		States: []*core.State{
			{Branches: []*core.Branch{{Then: core.Terminal{Kind: core.Goto, Target: 3}}}},
		},
	}
	a, err := Analyze(m)
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(a.Errors) != 1 {
		t.Fatal(a.Errors)
	}
}
