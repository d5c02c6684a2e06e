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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"html"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Comcast/tmachine/core"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given machine.
//
// The optional from and to are state indexes during a step (use -1
// for neither).  The from state will be bold and the to state will be
// red.  Accept and reject are drawn as their own nodes.
func Dot(m *core.Machine, w io.Writer, from, to int) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	var accepts, rejects bool
	for i, s := range m.States {
		label := html.EscapeString(s.Template)
		if label == "" {
			label = html.EscapeString(s.Name)
		}
		if 0 < len(s.Args) {
			args := make([]string, len(s.Args))
			for j, a := range s.Args {
				args[j] = a.String()
			}
			bs, err := yaml.Marshal(args)
			if err != nil {
				bs = []byte(err.Error())
			}
			label += `<BR/><FONT POINT-SIZE="8">` +
				strings.Replace(html.EscapeString(string(bs)), "\n", `<BR ALIGN="LEFT"/>`, -1) +
				`</FONT>`
		}
		fillcolor := "#99ddc8"
		color := "black"
		style := "filled"
		if i == m.Entry {
			fillcolor = "#52aa5e"
		}
		if i == from {
			style += ",bold"
		}
		if i == to {
			color = "red"
			fillcolor = "#f98b8b"
		}
		if len(s.Branches) == 0 {
			style += ",dashed"
		}
		fmt.Fprintf(w, "  s%d [shape=\"box\", style=\"%s\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			i, style, color, fillcolor, label)

		for j, b := range s.Branches {
			target := ""
			switch b.Then.Kind {
			case core.Accept:
				accepts = true
				target = "accept"
			case core.Reject:
				rejects = true
				target = "reject"
			default:
				target = fmt.Sprintf("s%d", b.Then.Target)
			}
			label := edgeLabel(b)
			color := "black"
			if i == from && b.Then.Kind == core.Goto && b.Then.Target == to {
				color = "red"
			}
			fmt.Fprintf(w, "  s%d -> %s [ color=\"%s\" label = <%d/%d %s> ]\n",
				i, target, color, j+1, len(s.Branches), label)
		}
	}

	if accepts {
		fmt.Fprintf(w, "  accept [shape=\"doublecircle\", style=\"filled\", fillcolor=\"#2d93ad\", label=\"accept\"]\n")
	}
	if rejects {
		fmt.Fprintf(w, "  reject [shape=\"octagon\", style=\"filled\", fillcolor=\"#f98b8b\", label=\"reject\"]\n")
	}

	_, err := fmt.Fprintf(w, "}\n")
	return err
}

func edgeLabel(b *core.Branch) string {
	acc := make([]string, 0, len(b.Prims)+1)
	acc = append(acc, "["+b.Selector.String()+"]")
	for _, p := range b.Prims {
		acc = append(acc, p.String())
	}
	return html.EscapeString(strings.Join(acc, " "))
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(m *core.Machine, basename string, from, to int) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(m, dotfile, from, to); err != nil {
		dotfile.Close()
		return pngname, err
	}
	if err := dotfile.Close(); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}
