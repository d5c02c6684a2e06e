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

package lang

import (
	"io"
	"strings"

	"github.com/Comcast/tmachine/core"
)

// Format writes the Spec in the syntax Parse accepts.
func Format(w io.Writer, spec *core.Spec) error {
	var b strings.Builder
	if spec.Doc != "" {
		writeDoc(&b, spec.Doc)
		b.WriteString("\n")
	}
	for i, d := range spec.States {
		if 0 < i {
			b.WriteString("\n")
		}
		FormatDef(&b, d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatDef writes one template definition.
func FormatDef(b *strings.Builder, d *core.StateDef) {
	if d.Doc != "" {
		writeDoc(b, d.Doc)
	}
	b.WriteString(d.Name)
	if 0 < len(d.Params) {
		b.WriteString("(" + strings.Join(d.Params, ", ") + ")")
	}
	if len(d.Branches) == 0 && d.Body != nil {
		b.WriteString(" = " + d.Body.String() + ";\n")
		return
	}
	b.WriteString(" {\n")
	for _, br := range d.Branches {
		b.WriteString("  [" + br.Selector.String() + "]")
		if c := br.Chain.String(); c != "" {
			b.WriteString(" " + c)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

func writeDoc(b *strings.Builder, doc string) {
	for _, line := range strings.Split(doc, "\n") {
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# " + line + "\n")
	}
}
