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

// Package main is a command-line machine debugger in the spirit of gdb.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"
	"github.com/Comcast/tmachine/tools"
	"github.com/Comcast/tmachine/util/logs"

	"github.com/jsccast/yaml"
)

type Opts struct {
	specFilename string
	entry        string
	limit        int
	echo         bool
	logLevel     string
}

func main() {

	opts := &Opts{}
	flag.StringVar(&opts.specFilename, "s", "", "templates file to load at start")
	flag.StringVar(&opts.entry, "e", "", "entry template")
	flag.IntVar(&opts.limit, "l", 10000, "default step limit for run")
	flag.BoolVar(&opts.echo, "echo", false, "echo input")
	flag.StringVar(&opts.logLevel, "log", "info", "log level")
	flag.Parse()

	level, err := logs.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := logs.New(&logs.Options{Level: level})

	if err := opts.run(context.Background(), logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("tmdb", "error", err)
		os.Exit(1)
	}
}

func (opts *Opts) run(ctx context.Context, logger *slog.Logger, in io.Reader, w io.Writer) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := NewDebugger(logger, opts.limit)

	var (
		load = regexp.MustCompile("^load +(.*)")

		compile = regexp.MustCompile("^compile( +([^ ]+))?$")

		tape = regexp.MustCompile("^tape( +(.*))?$")

		state = regexp.MustCompile("^state +(.+)")

		step = regexp.MustCompile("^(step|s)( +([0-9]+))?$")

		run = regexp.MustCompile("^(run|r)( +([0-9]+))?$")

		setBreak = regexp.MustCompile("^(break|b) +(.+)")

		unbreak = regexp.MustCompile("^unbreak +(.+)")

		breaks = regexp.MustCompile("^breaks$")

		print = regexp.MustCompile("^(print|p)$")

		machine = regexp.MustCompile("^machine$")

		reset = regexp.MustCompile("^reset$")

		save = regexp.MustCompile("^save +(.*)")

		debug = regexp.MustCompile("^debug(ging)? (on|off)")

		help = regexp.MustCompile("^(help|h|\\?)")

		outputPrefix = "# "

		debugging = false

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}

		walk = func(limit int) {
			walked, err := d.Walk(ctx, limit)
			if walked != nil {
				Render(w, outputPrefix, d.machine, walked)
				if debugging {
					js, _ := json.MarshalIndent(walked.Strides, "  ", "  ")
					fmt.Fprintln(w, string(js))
				}
			}
			if err != nil {
				protest("%s", err)
			}
			say("%s", d.Describe())
		}
	)

	if opts.specFilename != "" {
		if err := d.Load(opts.specFilename); err != nil {
			return err
		}
		if err := d.Compile(ctx, opts.entry); err != nil {
			return err
		}
	}

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)

		if opts.echo {
			fmt.Fprintln(w, line)
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		var ss []string

		if ss = help.FindStringSubmatch(line); 0 < len(ss) {
			for _, s := range strings.Split(doc(), "\n") {
				say("%s", s)
			}
			continue
		}

		if ss = load.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.Load(ss[1]); err != nil {
				protest("%s", err)
				continue
			}
			say("loaded %d templates from %s", len(d.spec.States), ss[1])
			continue
		}

		if ss = compile.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.Compile(ctx, ss[2]); err != nil {
				protest("%s", err)
				continue
			}
			say("compiled %d states (entry %d)", len(d.machine.States), d.machine.Entry)
			continue
		}

		if ss = tape.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.SetTape(ss[2]); err != nil {
				protest("%s", err)
				continue
			}
			say("%s", d.Describe())
			continue
		}

		if ss = state.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.SetState(ss[1]); err != nil {
				protest("%s", err)
				continue
			}
			say("%s", d.Describe())
			continue
		}

		if ss = step.FindStringSubmatch(line); 0 < len(ss) {
			n := 1
			if ss[3] != "" {
				n, _ = strconv.Atoi(ss[3])
			}
			walk(n)
			continue
		}

		if ss = run.FindStringSubmatch(line); 0 < len(ss) {
			n := opts.limit
			if ss[3] != "" {
				n, _ = strconv.Atoi(ss[3])
			}
			walk(n)
			continue
		}

		if ss = setBreak.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.Break(ss[2]); err != nil {
				protest("%s", err)
				continue
			}
			say("%d breakpoints", len(d.ctl.Breakpoints))
			continue
		}

		if ss = unbreak.FindStringSubmatch(line); 0 < len(ss) {
			if _, have := d.ctl.Breakpoints[ss[1]]; !have {
				protest("no breakpoint at %s", ss[1])
				continue
			}
			delete(d.ctl.Breakpoints, ss[1])
			say("%d breakpoints", len(d.ctl.Breakpoints))
			continue
		}

		if ss = breaks.FindStringSubmatch(line); 0 < len(ss) {
			for id := range d.ctl.Breakpoints {
				say("  %s", id)
			}
			continue
		}

		if ss = print.FindStringSubmatch(line); 0 < len(ss) {
			if d.cfg == nil {
				protest("nothing compiled")
				continue
			}
			say("%s", d.Describe())
			s := d.machine.States[d.cfg.State]
			for i, b := range s.Branches {
				say("  %d %s", i, b)
			}
			continue
		}

		if ss = machine.FindStringSubmatch(line); 0 < len(ss) {
			if d.machine == nil {
				protest("nothing compiled")
				continue
			}
			for _, s := range strings.Split(strings.TrimRight(d.machine.String(), "\n"), "\n") {
				say("%s", s)
			}
			continue
		}

		if ss = reset.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.Reset(); err != nil {
				protest("%s", err)
				continue
			}
			say("%s", d.Describe())
			continue
		}

		if ss = save.FindStringSubmatch(line); 0 < len(ss) {
			if err := d.Save(ss[1]); err != nil {
				protest("writing file: %s", err)
			}
			continue
		}

		if ss = debug.FindStringSubmatch(line); 0 < len(ss) {
			switch ss[2] {
			case "on":
				debugging = true
				say("debugging")
			case "off":
				debugging = false
				say("not debugging")
			}
			continue
		}

		protest("unsupported command: %s", line)
	}
}

// Debugger holds a compiled machine and a configuration to step
// through it.
type Debugger struct {
	log   *slog.Logger
	ctl   *core.Control
	limit int

	specFilename string
	spec         *core.Spec
	entry        string
	machine      *core.Machine

	// input is the tape given to the last SetTape.
	input *core.Tape
	cfg   *core.Config
}

func NewDebugger(logger *slog.Logger, limit int) *Debugger {
	if logger == nil {
		logger = logs.Discard()
	}
	return &Debugger{
		log:   logger,
		limit: limit,
		ctl: &core.Control{
			Limit:       limit,
			Breakpoints: make(map[string]core.Breakpoint),
			Trace:       true,
		},
		input: core.NewTape(""),
	}
}

// Load reads templates.  Any compiled machine remains until the next
// Compile.
func (d *Debugger) Load(filename string) error {
	spec, err := tools.ReadSpec(filename)
	if err != nil {
		return err
	}
	if err = spec.Validate(); err != nil {
		return err
	}
	d.specFilename = filename
	d.spec = spec
	d.log.Debug("loaded", "filename", filename, "templates", len(spec.States))
	return nil
}

// Compile specializes the loaded templates.  Breakpoints refer to
// state names, so they survive.
func (d *Debugger) Compile(ctx context.Context, entry string) error {
	if d.spec == nil {
		return fmt.Errorf("nothing loaded")
	}
	m, err := d.spec.Compile(ctx, entry, nil, &core.Limits{Logger: d.log})
	if err != nil {
		return err
	}
	d.entry = entry
	d.machine = m
	for name := range d.ctl.Breakpoints {
		if err := d.Break(name); err != nil {
			d.log.Warn("dropping breakpoint", "state", name, "error", err)
			delete(d.ctl.Breakpoints, name)
		}
	}
	return d.Reset()
}

// SetTape sets the input tape and resets.
func (d *Debugger) SetTape(s string) error {
	t, err := lang.ParseTape(s)
	if err != nil {
		return err
	}
	d.input = t
	return d.Reset()
}

// SetState moves the current configuration to the named state
// without touching the tape or head.
func (d *Debugger) SetState(name string) error {
	if d.cfg == nil {
		return fmt.Errorf("nothing compiled")
	}
	i, have := d.machine.Lookup(name)
	if !have {
		return fmt.Errorf(`no state "%s"`, name)
	}
	d.cfg.State = i
	d.cfg.Status = core.Running
	d.cfg.Err = nil
	return nil
}

// Reset starts over at the entry with a copy of the input tape.
func (d *Debugger) Reset() error {
	if d.machine == nil {
		return fmt.Errorf("nothing compiled")
	}
	d.cfg = core.NewConfig(d.machine.Entry, d.input.Copy())
	return nil
}

// Break sets a breakpoint at the state with the given display name.
func (d *Debugger) Break(name string) error {
	if d.machine == nil {
		return fmt.Errorf("nothing compiled")
	}
	i, have := d.machine.Lookup(name)
	if !have {
		return fmt.Errorf(`no state "%s"`, name)
	}
	d.ctl.Breakpoints[name] = core.StateBreakpoint(i)
	return nil
}

// Walk takes up to limit steps.
func (d *Debugger) Walk(ctx context.Context, limit int) (*core.Walked, error) {
	if d.cfg == nil {
		return nil, fmt.Errorf("nothing compiled")
	}
	if d.cfg.Status != core.Running {
		return nil, fmt.Errorf("%s: reset or set a tape", d.cfg.Status)
	}
	ctl := d.ctl.Copy()
	ctl.Limit = limit
	ctl.Trace = true
	walked, err := d.machine.Walk(ctx, d.cfg, ctl)
	d.log.Debug("walked", "steps", walked.Steps, "stopped", walked.StoppedBecause)
	return walked, err
}

// Describe summarizes the current configuration.
func (d *Debugger) Describe() string {
	if d.cfg == nil {
		return "nothing compiled"
	}
	name := "?"
	if 0 <= d.cfg.State && d.cfg.State < len(d.machine.States) {
		name = d.machine.States[d.cfg.State].Name
	}
	return fmt.Sprintf("%s at %d %s head %d steps %d tape %s",
		d.cfg.Status, d.cfg.State, name, d.cfg.Head, d.cfg.Steps, d.cfg.Tape)
}

// Session is what save writes.
type Session struct {
	Templates string        `json:"templates,omitempty"`
	Entry     string        `json:"entry,omitempty"`
	Input     string        `json:"input"`
	State     int           `json:"state"`
	Head      int           `json:"head"`
	Status    string        `json:"status"`
	Steps     int           `json:"steps"`
	Tape      string        `json:"tape"`
	Machine   *core.Machine `json:"machine"`
}

// Save writes the machine and the configuration as YAML.
func (d *Debugger) Save(filename string) error {
	if d.cfg == nil {
		return fmt.Errorf("nothing compiled")
	}
	s := &Session{
		Templates: d.specFilename,
		Entry:     d.entry,
		Input:     d.input.String(),
		State:     d.cfg.State,
		Head:      d.cfg.Head,
		Status:    d.cfg.Status.String(),
		Steps:     d.cfg.Steps,
		Tape:      d.cfg.Tape.String(),
		Machine:   d.machine,
	}
	bs, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bs, 0644)
}

func doc() string {
	return `
  load FILENAME              Load templates
  compile [ENTRY]            Compile the templates starting from ENTRY
  tape TAPE                  Set the input tape and reset
  state NAME                 Move to the state with that name
  step [N]                   Take N steps (default 1)
  run [N]                    Run until done, a breakpoint, or N steps
  break NAME                 Stop when reaching the state with that name
  unbreak NAME               Remove that breakpoint
  breaks                     List breakpoints
  print                      Show the configuration and current branches
  machine                    Show the compiled machine
  reset                      Start over with the input tape
  save FILENAME              Save the machine and configuration as YAML
  debug on/off               When debugging, show strides as JSON
  help                       Show this documentation
`
}

func Render(w io.Writer, prefix string, m *core.Machine, walked *core.Walked) {
	for _, stride := range walked.Strides {
		fmt.Fprintf(w, "%s  %d %s head %d scanned %s\n",
			prefix, stride.From, m.States[stride.From].Name, stride.Head, stride.Scanned)
		if stride.Branch < 0 {
			continue
		}
		fmt.Fprintf(w, "%s     branch %d %s\n", prefix, stride.Branch, m.States[stride.From].Branches[stride.Branch])
	}
	if walked.Error != nil {
		fmt.Fprintf(w, "%s  error    %v\n", prefix, walked.Error)
	}
	fmt.Fprintf(w, "%s  stopped  %v", prefix, walked.StoppedBecause)
	if walked.BreakpointId != "" {
		fmt.Fprintf(w, " at %s", walked.BreakpointId)
	}
	fmt.Fprintln(w)
}
