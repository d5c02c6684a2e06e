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
	"path/filepath"
	"strings"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"

	"github.com/jsccast/yaml"
)

// ReadSpec reads templates from a file.
//
// Files ending in ".yaml", ".yml", or ".json" hold a core.Spec as
// data.  Anything else is template source, which can use
// '%inline("NAME")'.  The Spec's Name defaults to the file's base
// name without its extension.
func ReadSpec(filename string) (*core.Spec, error) {
	bs, err := ReadFileWithInlines(filename)
	if err != nil {
		return nil, err
	}
	return ParseSpec(filename, bs)
}

// ParseSpec is ReadSpec for bytes already read (and inlined) from
// the named file.
func ParseSpec(filename string, bs []byte) (*core.Spec, error) {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)

	switch ext {
	case ".yaml", ".yml", ".json":
		var spec core.Spec
		if err := yaml.Unmarshal(bs, &spec); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if spec.Name == "" {
			spec.Name = name
		}
		return &spec, nil
	}

	return lang.Parse(name, string(bs))
}
