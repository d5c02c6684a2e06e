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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"
	"github.com/Comcast/tmachine/storage"
	"github.com/Comcast/tmachine/storage/bolt"
	"github.com/Comcast/tmachine/tools"
	"github.com/Comcast/tmachine/util/logs"

	"github.com/google/uuid"
	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"compile": &Compiler{},
	"run":     &Runner{},
	"dot":     &Grapher{},
	"mermaid": &Mermaider{},
	"html":    &Renderer{},
	"analyze": &Analyzer{},
	"expect":  &Expecter{},
	"fmt":     &Formatter{},
}

var NoTemplates = errors.New("need a templates filename")

// stdin is where templates named "-" come from.
var stdin io.Reader = os.Stdin

type Mod interface {
	F(ctx context.Context, out io.Writer, args []string) error
	Doc() string
	Flags() *flag.FlagSet
}

// Common holds the flags that every subcommand that compiles
// templates accepts.
type Common struct {
	Entry           string
	MaxStates       int
	StrictTerminals bool
	DB              string
	LogLevel        string
	LogJSON         string
	Journal         bool
}

func (c *Common) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.Entry, "e", "", "entry template (default is the templates' entry)")
	fs.IntVar(&c.MaxStates, "max-states", core.DefaultMaxStates, "maximum number of compiled states")
	fs.BoolVar(&c.StrictTerminals, "strict", false, "require every branch to end in accept, reject, or a call")
	fs.StringVar(&c.DB, "db", "", "BoltDB file for caching compiled machines and recording runs")
	fs.StringVar(&c.LogLevel, "log", "warn", "log level")
	fs.StringVar(&c.LogJSON, "log-json", "", "also log JSON to this file")
	fs.BoolVar(&c.Journal, "journal", false, "also log to the systemd journal")
}

func (c *Common) logger() (*slog.Logger, error) {
	level, err := logs.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &logs.Options{
		Level:   level,
		Journal: c.Journal,
	}
	if c.LogJSON != "" {
		f, err := os.OpenFile(c.LogJSON, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		opts.JSON = f
	}
	return logs.New(opts), nil
}

// Compiled is a compiled machine and maybe the storage where it
// lives.
type Compiled struct {
	Spec    *core.Spec
	Machine *core.Machine
	Log     *slog.Logger

	// Storage is nil unless Common.DB was given.
	Storage storage.Storage
}

func (c *Compiled) Close(ctx context.Context) error {
	if c.Storage == nil {
		return nil
	}
	return c.Storage.Close(ctx)
}

// compile loads and compiles the templates in the file named by the
// first arg.
//
// With a DB, a stored machine compiled from the same source and
// entry is used instead of compiling again.
func (c *Common) compile(ctx context.Context, args []string) (*Compiled, error) {
	if len(args) != 1 {
		return nil, NoTemplates
	}
	filename := args[0]

	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	var src []byte
	if filename == "-" {
		// Inlines are relative to the working directory.
		src, err = tools.ReadAllWithInlines(stdin, ".")
		filename = "stdin"
	} else {
		src, err = tools.ReadFileWithInlines(filename)
	}
	if err != nil {
		return nil, err
	}
	spec, err := tools.ParseSpec(filename, src)
	if err != nil {
		return nil, err
	}

	acc := &Compiled{
		Spec: spec,
		Log:  logger,
	}

	if c.DB != "" {
		s, err := bolt.NewStorage(c.DB)
		if err != nil {
			return nil, err
		}
		s.Logger = logger
		s.Debug = true
		if err = s.Open(ctx); err != nil {
			return nil, err
		}
		acc.Storage = s

		r, err := s.GetMachine(ctx, spec.Name)
		switch {
		case err == nil:
			if r.Source == string(src) && r.Entry == c.Entry {
				if err = r.Machine.Validate(); err != nil {
					acc.Close(ctx)
					return nil, err
				}
				logger.Info("using stored machine", "name", spec.Name, "compiled", r.Compiled)
				acc.Machine = r.Machine
				return acc, nil
			}
		case errors.Is(err, storage.NotFound):
		default:
			acc.Close(ctx)
			return nil, err
		}
	}

	limits := &core.Limits{
		MaxStates:       c.MaxStates,
		StrictTerminals: c.StrictTerminals,
		Logger:          logger,
	}
	then := time.Now()
	m, err := spec.Compile(ctx, c.Entry, nil, limits)
	if err != nil {
		acc.Close(ctx)
		return nil, err
	}
	logger.Info("compiled", "name", spec.Name, "states", len(m.States), "elapsed", time.Since(then))
	acc.Machine = m

	if acc.Storage != nil {
		r := &storage.MachineRecord{
			Name:     spec.Name,
			Source:   string(src),
			Entry:    c.Entry,
			Machine:  m,
			Compiled: time.Now().UTC(),
		}
		if err = acc.Storage.PutMachine(ctx, r); err != nil {
			acc.Close(ctx)
			return nil, err
		}
	}

	return acc, nil
}

func output(filename string, out io.Writer) (io.Writer, func() error, error) {
	if filename == "" || filename == "-" {
		return out, func() error { return nil }, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

type Compiler struct {
	Common
	OutputFilename string
	JSON           bool
}

func (m *Compiler) Doc() string {
	return "Compiles templates and writes the machine as YAML (or JSON)."
}

func (m *Compiler) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	m.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename")
	fs.BoolVar(&m.JSON, "json", false, "write JSON instead of YAML")
	return fs
}

func (m *Compiler) F(ctx context.Context, out io.Writer, args []string) error {
	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	var bs []byte
	if m.JSON {
		bs, err = json.MarshalIndent(c.Machine, "", "  ")
		bs = append(bs, '\n')
	} else {
		bs, err = yaml.Marshal(c.Machine)
	}
	if err != nil {
		return err
	}

	w, done, err := output(m.OutputFilename, out)
	if err != nil {
		return err
	}
	if _, err = w.Write(bs); err != nil {
		done()
		return err
	}
	return done()
}

type Runner struct {
	Common
	Tape  string
	Start string
	Limit int
	Trace bool
}

func (m *Runner) Doc() string {
	return "Compiles templates and runs the machine on a tape."
}

func (m *Runner) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	m.flags(fs)
	fs.StringVar(&m.Tape, "t", "", "input tape")
	fs.StringVar(&m.Start, "s", "", "name of the starting state (default is the entry)")
	fs.IntVar(&m.Limit, "l", 100000, "maximum number of steps (0 means no limit)")
	fs.BoolVar(&m.Trace, "trace", false, "print every step")
	return fs
}

func (m *Runner) F(ctx context.Context, out io.Writer, args []string) error {
	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	tape, err := lang.ParseTape(m.Tape)
	if err != nil {
		return err
	}

	start := c.Machine.Entry
	if m.Start != "" {
		var have bool
		if start, have = c.Machine.Lookup(m.Start); !have {
			return fmt.Errorf(`no state "%s"`, m.Start)
		}
	}

	cfg := core.NewConfig(start, tape.Copy())
	ctl := &core.Control{
		Limit: m.Limit,
	}
	if m.Trace {
		ctl.Observer = func(s *core.Stride) {
			fmt.Fprintf(out, "%d@%d %s -> %s\n", s.From, s.Head, s.Scanned, s.Then)
		}
	}

	walked, err := c.Machine.Walk(ctx, cfg, ctl)
	if err != nil && walked.StoppedBecause == core.Canceled {
		return err
	}

	fmt.Fprintf(out, "%s %s %d %d\n", cfg.Status, cfg.Tape, cfg.Head, cfg.Steps)
	if cfg.Err != nil {
		fmt.Fprintf(out, "error: %v\n", cfg.Err)
	}

	if c.Storage != nil {
		r := storage.NewRunRecord(uuid.NewString(), c.Spec.Name, tape, cfg)
		if err := c.Storage.PutRun(ctx, r); err != nil {
			return err
		}
	}

	if cfg.Status == core.Failed {
		return cfg.Err
	}
	return nil
}

type Grapher struct {
	Common
	OutputFilename string
	PNG            string
}

func (m *Grapher) Doc() string {
	return "Writes Graphviz dot for the compiled machine."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	m.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename")
	fs.StringVar(&m.PNG, "png", "", "also render BASENAME.png (needs dot)")
	return fs
}

func (m *Grapher) F(ctx context.Context, out io.Writer, args []string) error {
	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	if m.PNG != "" {
		filename, err := tools.PNG(c.Machine, m.PNG, -1, -1)
		if err != nil {
			return err
		}
		c.Log.Info("wrote", "filename", filename)
	}

	w, done, err := output(m.OutputFilename, out)
	if err != nil {
		return err
	}
	if err = tools.Dot(c.Machine, w, -1, -1); err != nil {
		done()
		return err
	}
	return done()
}

type Mermaider struct {
	Common
	OutputFilename string
	Selectors      bool
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid flowchart for the compiled machine."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	m.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename")
	fs.BoolVar(&m.Selectors, "sels", true, "label edges with selectors")
	return fs
}

func (m *Mermaider) F(ctx context.Context, out io.Writer, args []string) error {
	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	w, done, err := output(m.OutputFilename, out)
	if err != nil {
		return err
	}
	opts := &tools.MermaidOpts{
		ShowSelectors: m.Selectors,
	}
	if err = tools.Mermaid(c.Machine, w, opts, -1, -1); err != nil {
		done()
		return err
	}
	return done()
}

type Renderer struct {
	OutputFilename string
	CSS            string
	JSON           bool
}

func (m *Renderer) Doc() string {
	return "Renders template documentation and the compiled machine as HTML."
}

func (m *Renderer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename")
	fs.StringVar(&m.CSS, "css", "", "stylesheet URL")
	fs.BoolVar(&m.JSON, "json", false, "include the machine as JSON")
	return fs
}

func (m *Renderer) F(ctx context.Context, out io.Writer, args []string) error {
	if len(args) != 1 {
		return NoTemplates
	}
	var css []string
	if m.CSS != "" {
		css = []string{m.CSS}
	}
	w, done, err := output(m.OutputFilename, out)
	if err != nil {
		return err
	}
	if err = tools.ReadAndRenderSpecPage(args[0], css, w, m.JSON); err != nil {
		done()
		return err
	}
	return done()
}

type Analyzer struct {
	Common
}

func (m *Analyzer) Doc() string {
	return "Reports problems and statistics for the compiled machine."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	m.flags(fs)
	return fs
}

func (m *Analyzer) F(ctx context.Context, out io.Writer, args []string) error {
	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	a, err := tools.Analyze(c.Machine)
	bs, merr := yaml.Marshal(a)
	if merr != nil {
		return merr
	}
	if _, werr := out.Write(bs); werr != nil {
		return werr
	}
	return err
}

type Expecter struct {
	Common
	SessionFilename string
}

func (m *Expecter) Doc() string {
	return "Runs the tape cases in a session file against the compiled machine."
}

func (m *Expecter) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("expect", flag.ContinueOnError)
	m.flags(fs)
	fs.StringVar(&m.SessionFilename, "session", "", "session filename")
	return fs
}

func (m *Expecter) F(ctx context.Context, out io.Writer, args []string) error {
	s, err := tools.ReadSession(m.SessionFilename)
	if err != nil {
		return err
	}
	if len(args) == 0 && s.Spec != "" {
		args = []string{s.Spec}
	}
	if m.Entry == "" {
		m.Entry = s.Entry
	}
	if s.Limits != nil {
		m.MaxStates = s.Limits.MaxStates
		m.StrictTerminals = s.Limits.StrictTerminals
	}

	c, err := m.compile(ctx, args)
	if err != nil {
		return err
	}
	defer c.Close(ctx)

	results, err := s.Run(ctx, c.Machine)
	for _, r := range results {
		verdict := "ok"
		if !r.OK() {
			verdict = "FAIL"
		}
		fmt.Fprintf(out, "%s %d %s\n", verdict, r.Case, r.Doc)
		for _, p := range r.Problems {
			fmt.Fprintf(out, "    %s\n", p)
		}
	}
	return err
}

type Formatter struct {
	OutputFilename string
}

func (m *Formatter) Doc() string {
	return "Writes templates in canonical source form."
}

func (m *Formatter) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename")
	return fs
}

func (m *Formatter) F(ctx context.Context, out io.Writer, args []string) error {
	if len(args) != 1 {
		return NoTemplates
	}
	spec, err := tools.ReadSpec(args[0])
	if err != nil {
		return err
	}
	w, done, err := output(m.OutputFilename, out)
	if err != nil {
		return err
	}
	if err = lang.Format(w, spec); err != nil {
		done()
		return err
	}
	return done()
}
