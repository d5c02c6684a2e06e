package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Comcast/tmachine/core"

	"github.com/jsccast/yaml"
)

func TestReadSpec(t *testing.T) {
	src, err := ReadSpec("testdata/seek.tm")
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "seek" || src.EntryName() != "main" {
		t.Fatal(src.Name, src.EntryName())
	}

	bs, err := yaml.Marshal(src)
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "seek.yaml")
	if err = os.WriteFile(filename, bs, 0644); err != nil {
		t.Fatal(err)
	}

	data, err := ReadSpec(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(data.States) != len(src.States) {
		t.Fatal(len(data.States))
	}

	m, err := data.Compile(context.Background(), "", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	status, tape, _, err := m.Run(context.Background(), m.Entry, core.NewTape("aab"))
	if err != nil {
		t.Fatal(err)
	}
	if status != core.Accepted || tape.String() != "aaX" {
		t.Fatal(status, tape)
	}
}
