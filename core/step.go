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

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// DefaultControl will be used by Machine.Walk if the given
	// control is nil.  It imposes no step limit.
	DefaultControl = &Control{}

	// StridesInitialCap is the initial capacity for recorded
	// strides.
	StridesInitialCap = 64

	// CancelCheckInterval is the number of steps Walk takes
	// between checks of its context.
	CancelCheckInterval = 1024
)

// Status is the status of an execution.
type Status int

const (
	Running Status = iota
	Accepted
	Rejected
	Failed
)

var statusNames = []string{"running", "accepted", "rejected", "failed"}

func (s Status) String() string {
	if 0 <= s && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(bs []byte) error {
	for i, name := range statusNames {
		if name == string(bs) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", bs)
}

// StopReason represents the possible reasons for a Walk to terminate.
type StopReason int

const (
	Done              StopReason = iota // Accepted, rejected, or failed.
	Limited                             // Too many steps.
	BreakpointReached                   // During a Walk.
	Canceled                            // The context is done.
)

var stopReasonNames = []string{"done", "limited", "breakpoint", "canceled"}

func (r StopReason) String() string {
	if 0 <= r && int(r) < len(stopReasonNames) {
		return stopReasonNames[r]
	}
	return "StopReason(" + strconv.Itoa(int(r)) + ")"
}

func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Config is the configuration of one execution: the current state,
// the head position, and the tape.
//
// A Config is owned by one execution.  The Machine it runs on can be
// shared.
type Config struct {
	State  int    `json:"state"`
	Head   int    `json:"head"`
	Tape   *Tape  `json:"tape"`
	Status Status `json:"status"`

	// Steps counts the steps taken so far.
	Steps int `json:"steps"`

	// Err is the reason for a Failed status.
	Err error `json:"-" yaml:"-"`
}

// NewConfig makes a Running Config at the given state with the head
// at position 0.
func NewConfig(state int, tape *Tape) *Config {
	if tape == nil {
		tape = NewTape("")
	}
	return &Config{
		State:  state,
		Tape:   tape,
		Status: Running,
	}
}

// Copy makes a deep copy of the Config.
func (c *Config) Copy() *Config {
	return &Config{
		State:  c.State,
		Head:   c.Head,
		Tape:   c.Tape.Copy(),
		Status: c.Status,
		Steps:  c.Steps,
		Err:    c.Err,
	}
}

func (c *Config) String() string {
	if c == nil {
		return "nil"
	}
	return fmt.Sprintf("%s state=%d head=%d tape=%s", c.Status, c.State, c.Head, c.Tape)
}

// Breakpoint is a *Config predicate.
//
// When a Breakpoint returns true for a *Config, then processing
// should stop at that point.
type Breakpoint func(context.Context, *Config) bool

// StateBreakpoint stops when the given state is reached.
func StateBreakpoint(state int) Breakpoint {
	return func(_ context.Context, c *Config) bool {
		return c.State == state
	}
}

// Control influences how Walk operates.
type Control struct {
	// Limit is the maximum number of steps that a Walk can take.
	// Zero means no limit.
	Limit int

	Breakpoints map[string]Breakpoint

	// Trace, when true, records every Stride in Walked.Strides.
	Trace bool

	// Observer, if not nil, sees every Stride.
	Observer func(*Stride)
}

func (c *Control) Copy() *Control {
	bs := make(map[string]Breakpoint, len(c.Breakpoints))
	for id, b := range c.Breakpoints {
		bs[id] = b
	}
	return &Control{
		Limit:       c.Limit,
		Breakpoints: bs,
		Trace:       c.Trace,
		Observer:    c.Observer,
	}
}

// Stride represents a step that has been taken or attempted.
type Stride struct {
	// From is the state index before the step.
	From int `json:"from"`

	// Head is the head position before the step.
	Head int `json:"head"`

	// Scanned is the symbol read at Head.
	Scanned Symbol `json:"scanned"`

	// Branch is the index of the branch taken, or -1 if none
	// matched.
	Branch int `json:"branch"`

	// Then is the terminal action of the branch taken.
	Then Terminal `json:"then"`

	// To is the state index after the step.
	To int `json:"to"`

	// NewHead is the head position after the step.
	NewHead int `json:"newHead"`

	// Status is the status after the step.
	Status Status `json:"status"`
}

// Step takes one step: read the symbol under the head, pick the first
// matching branch of the current state, apply its primitives, and
// then its terminal.
//
// The Config is updated in place.  When no branch matches, the
// Config's Status becomes Failed and a NoMatchingBranch is returned
// along with the Stride.
func (m *Machine) Step(c *Config) (*Stride, error) {
	if c.Status != Running {
		return nil, ErrNotRunning
	}
	if c.State < 0 || len(m.States) <= c.State {
		err := &BadGoto{State: -1, Branch: -1, Target: c.State}
		c.Status = Failed
		c.Err = err
		return nil, err
	}
	if c.Tape == nil {
		c.Tape = NewTape("")
	}

	s := m.States[c.State]
	sym := c.Tape.Get(c.Head)
	stride := &Stride{
		From:    c.State,
		Head:    c.Head,
		Scanned: sym,
		Branch:  -1,
	}
	c.Steps++

	var br *Branch
	for i, b := range s.Branches {
		if b.Selector.Contains(sym) {
			br = b
			stride.Branch = i
			break
		}
	}

	if br == nil {
		err := &NoMatchingBranch{
			State:  c.State,
			Name:   s.Name,
			Symbol: sym,
			Head:   c.Head,
		}
		c.Status = Failed
		c.Err = err
		stride.To = c.State
		stride.NewHead = c.Head
		stride.Status = c.Status
		return stride, err
	}

	for _, p := range br.Prims {
		switch p.Op {
		case OpLeft:
			c.Head--
		case OpRight:
			c.Head++
		case OpPrint:
			c.Tape.Set(c.Head, p.Sym)
		}
	}

	switch br.Then.Kind {
	case Goto:
		c.State = br.Then.Target
	case Accept:
		c.Status = Accepted
	case Reject:
		c.Status = Rejected
	}

	stride.Then = br.Then
	stride.To = c.State
	stride.NewHead = c.Head
	stride.Status = c.Status

	return stride, nil
}

// Walked represents a sequence of strides taken by a Walk.
type Walked struct {
	// Strides contains each Stride taken if Control.Trace was
	// set.
	Strides []*Stride `json:"strides,omitempty" yaml:",omitempty"`

	// Steps is the number of steps taken by this Walk.
	Steps int `json:"steps"`

	// StoppedBecause reports the reason why the Walk stopped.
	StoppedBecause StopReason `json:"stoppedBecause"`

	// Error stores the error (if any) that stopped the Walk.
	Error error `json:"-" yaml:"-"`

	// BreakpointId is the id of the breakpoint, if any, that
	// caused this Walk to stop.
	BreakpointId string `json:"breakpoint,omitempty" yaml:",omitempty"`
}

// Walk takes as many steps as it can: until the Config isn't Running,
// a breakpoint is reached, the Control's limit is hit, or the context
// is done.
//
// Breakpoints are checked before every step (including the first).
// A failed step is reported in Walked.Error and is also returned.
func (m *Machine) Walk(ctx context.Context, c *Config, ctl *Control) (*Walked, error) {
	if ctl == nil {
		ctl = DefaultControl
	}

	walked := &Walked{}
	if ctl.Trace {
		siz := StridesInitialCap
		if 0 < ctl.Limit && ctl.Limit < siz {
			siz = ctl.Limit
		}
		walked.Strides = make([]*Stride, 0, siz)
	}

	for i := 0; c.Status == Running; i++ {
		if 0 < ctl.Limit && ctl.Limit <= i {
			walked.StoppedBecause = Limited
			return walked, nil
		}
		if i%CancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				walked.StoppedBecause = Canceled
				walked.Error = err
				return walked, err
			}
		}
		for id, breakpoint := range ctl.Breakpoints {
			// A breakpoint doesn't stop the first step so
			// that a Walk can resume from a breakpoint.
			if 0 < i && breakpoint(ctx, c) {
				walked.StoppedBecause = BreakpointReached
				walked.BreakpointId = id
				return walked, nil
			}
		}

		stride, err := m.Step(c)
		if stride != nil {
			walked.Steps++
			if ctl.Trace {
				walked.Strides = append(walked.Strides, stride)
			}
			if ctl.Observer != nil {
				ctl.Observer(stride)
			}
		}
		if err != nil {
			walked.StoppedBecause = Done
			walked.Error = err
			return walked, err
		}
	}

	walked.StoppedBecause = Done
	return walked, nil
}

// Run executes the machine from the given state on a copy of the
// given tape until it accepts, rejects, or fails.
//
// The returned error is a NoMatchingBranch (with status Failed) or
// the context's error (with status Running).
func (m *Machine) Run(ctx context.Context, state int, tape *Tape) (Status, *Tape, int, error) {
	if len(m.States) == 0 {
		return Failed, tape.Copy(), 0, NoStates
	}
	c := NewConfig(state, tape.Copy())
	_, err := m.Walk(ctx, c, nil)
	return c.Status, c.Tape, c.Head, err
}

// IsNoMatch reports whether the error is a NoMatchingBranch.
func IsNoMatch(err error) bool {
	var e *NoMatchingBranch
	return errors.As(err, &e)
}
