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
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"

	md "github.com/russross/blackfriday/v2"
)

// RenderSpecHTML writes the templates with their (Markdown)
// documentation rendered as HTML.
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if s.Doc != "" {
		f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))
	}

	f(`<div class="templates"><table>`)
	for _, d := range s.States {
		sig := d.Name
		if 0 < len(d.Params) {
			sig += "("
			for i, p := range d.Params {
				if 0 < i {
					sig += ", "
				}
				sig += p
			}
			sig += ")"
		}
		f(`<tr class="template"><td><span id="%s" class="templateName">%s</span></td><td>`,
			html.EscapeString(d.Name), html.EscapeString(sig))
		if d.Doc != "" {
			f(`<div class="templateDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
		}
		f(`<div class="branches">`)
		f(`<table>`)
		for i, b := range d.Branching() {
			f(`<tr><td><div class="branchNum">%d</div></td>`, i)
			f(`<td><code>[%s]</code></td>`, html.EscapeString(b.Selector.String()))
			f(`<td><code>%s</code></td></tr>`, html.EscapeString(b.Chain.String()))
		}
		f(`</table>`)
		f(`</div>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderMachineHTML writes a table of the machine's states.
func RenderMachineHTML(m *core.Machine, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="machine"><table>`)
	for i, s := range m.States {
		class := "state"
		if i == m.Entry {
			class += " entry"
		}
		f(`<tr class="%s"><td><span id="s%d" class="stateNum">%d</span></td><td><code>%s</code></td><td>`,
			class, i, i, html.EscapeString(s.Name))
		f(`<table class="branches">`)
		for _, b := range s.Branches {
			then := html.EscapeString(b.Then.String())
			if b.Then.Kind == core.Goto {
				then = `<a href="#s` + strconv.Itoa(b.Then.Target) + `">` + then + `</a>`
			}
			prims := ""
			for j, p := range b.Prims {
				if 0 < j {
					prims += " "
				}
				prims += p.String()
			}
			f(`<tr><td><code>[%s]</code></td><td><code>%s</code></td><td>%s</td></tr>`,
				html.EscapeString(b.Selector.String()), html.EscapeString(prims), then)
		}
		f(`</table>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderSpecPage writes a complete HTML page for the templates and,
// if not nil, the machine compiled from them.
func RenderSpecPage(s *core.Spec, m *core.Machine, out io.Writer, cssFiles []string, includeJSON bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(s.Name))

	if includeJSON && m != nil {
		js, err := json.Marshal(m)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script>
  var thisMachine = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	if m != nil {
		fmt.Fprintf(out, "    <h2>%d states</h2>\n", len(m.States))
		if err := RenderMachineHTML(m, out); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage parses (with inlines) and compiles the
// template file and renders the page.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer, includeJSON bool) error {
	src, err := ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	spec, err := lang.Parse(filename, string(src))
	if err != nil {
		return err
	}
	m, err := spec.Compile(context.Background(), "", nil, nil)
	if err != nil {
		return err
	}
	return RenderSpecPage(spec, m, out, cssFiles, includeJSON)
}
