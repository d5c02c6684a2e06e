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
	"fmt"
	"io"
	"strings"

	"github.com/Comcast/tmachine/core"
)

type MermaidOpts struct {
	// ShowSelectors will result in a branch label that's the
	// selector and primitives of the branch.
	ShowSelectors bool `json:"showSelectors"`

	// EntryFill is the fill color of the entry state.
	EntryFill string `json:"entryFill,omitempty"`

	// HighlightFill is the fill color for the "to" state.
	HighlightFill string `json:"highlightFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given machine.
//
// The optional from and to are state indexes (-1 for neither).  The
// "to" state is highlighted and the edges from "from" to "to" are
// thick.
func Mermaid(m *core.Machine, w io.Writer, opts *MermaidOpts, from, to int) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowSelectors: true,
			EntryFill:     "#bcf2db",
			HighlightFill: "#f98b8b",
		}
	}

	fmt.Fprintf(w, "graph TB\n")

	var accepts, rejects bool
	for i, s := range m.States {
		fmt.Fprintf(w, "  n%d(\"%s\")\n", i, mermaidText(s.Name))
		switch {
		case i == to && opts.HighlightFill != "":
			fmt.Fprintf(w, "  style n%d fill:%s\n", i, opts.HighlightFill)
		case i == m.Entry && opts.EntryFill != "":
			fmt.Fprintf(w, "  style n%d fill:%s\n", i, opts.EntryFill)
		}
	}

	for i, s := range m.States {
		for _, b := range s.Branches {
			var target string
			switch b.Then.Kind {
			case core.Accept:
				accepts = true
				target = "accept"
			case core.Reject:
				rejects = true
				target = "reject"
			default:
				target = fmt.Sprintf("n%d", b.Then.Target)
			}
			arrow := "-->"
			if i == from && b.Then.Kind == core.Goto && b.Then.Target == to {
				arrow = "==>"
			}
			label := ""
			if opts.ShowSelectors {
				acc := []string{"[" + b.Selector.String() + "]"}
				for _, p := range b.Prims {
					acc = append(acc, p.String())
				}
				label = fmt.Sprintf(`|"%s"|`, mermaidText(strings.Join(acc, " ")))
			}
			fmt.Fprintf(w, "  n%d %s%s %s\n", i, arrow, label, target)
		}
	}

	if accepts {
		fmt.Fprintf(w, "  accept((\"accept\"))\n")
	}
	if rejects {
		fmt.Fprintf(w, "  reject{{\"reject\"}}\n")
	}

	_, err := fmt.Fprintf(w, "\n")
	return err
}

// mermaidText escapes text for a quoted Mermaid label.
func mermaidText(s string) string {
	s = strings.Replace(s, `"`, "#quot;", -1)
	s = strings.Replace(s, "<", "#lt;", -1)
	s = strings.Replace(s, ">", "#gt;", -1)
	return s
}
