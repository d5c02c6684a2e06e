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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Comcast/tmachine/core"
	"github.com/Comcast/tmachine/lang"
	"github.com/Comcast/tmachine/storage"

	"github.com/google/uuid"
)

// Service compiles, stores, and runs machines.
type Service struct {
	cfg   *Config
	store storage.Storage
	log   *slog.Logger

	// Publisher is optional.
	Publisher Publisher

	sync.Mutex

	// machines caches what's in the store.
	machines map[string]*core.UpdatableMachine

	// firehose, if not nil, gets every RunRecord.
	firehose chan interface{}
}

func NewService(cfg *Config, store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		log:      logger,
		machines: make(map[string]*core.UpdatableMachine),
	}
}

// BadRequest wraps an error caused by the request.
type BadRequest struct {
	Err error
}

func (e *BadRequest) Error() string {
	return e.Err.Error()
}

func (e *BadRequest) Unwrap() error {
	return e.Err
}

// Compile compiles template source and stores the machine under the
// given name.  An existing machine with that name is replaced, but
// runs already using it finish with the old one.
func (s *Service) Compile(ctx context.Context, name, entry, src string) (*storage.MachineRecord, error) {
	spec, err := lang.Parse(name, src)
	if err != nil {
		return nil, &BadRequest{err}
	}
	limits := &core.Limits{
		MaxStates:       s.cfg.MaxStates,
		StrictTerminals: s.cfg.StrictTerminals,
		Logger:          s.log,
	}
	m, err := spec.Compile(ctx, entry, nil, limits)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &BadRequest{err}
	}
	m.Name = name

	r := &storage.MachineRecord{
		Name:     name,
		Source:   src,
		Entry:    entry,
		Machine:  m,
		Compiled: time.Now().UTC(),
	}

	// The store and the cache change together.
	s.Lock()
	if err = s.store.PutMachine(ctx, r); err != nil {
		s.Unlock()
		return nil, err
	}
	if u, have := s.machines[name]; have {
		u.SetMachine(m)
	} else {
		s.machines[name] = core.NewUpdatableMachine(m)
	}
	s.Unlock()

	s.log.Info("compiled", "machine", name, "states", len(m.States))

	return r, nil
}

// Machine finds a machine in the cache or the store.
//
// A miss reads the store while holding the lock so that a concurrent
// Remove can't be undone by a stale read.
func (s *Service) Machine(ctx context.Context, name string) (*core.Machine, error) {
	s.Lock()
	defer s.Unlock()

	if u, have := s.machines[name]; have {
		return u.Machine(), nil
	}

	r, err := s.store.GetMachine(ctx, name)
	if err != nil {
		return nil, err
	}
	if err = r.Machine.Validate(); err != nil {
		return nil, err
	}
	s.machines[name] = core.NewUpdatableMachine(r.Machine)

	return r.Machine, nil
}

// Remove forgets the machine and its runs.
func (s *Service) Remove(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()
	delete(s.machines, name)
	return s.store.RemMachine(ctx, name)
}

// RunRequest asks for a run of a machine.
type RunRequest struct {
	Tape string `json:"tape"`

	// Start is the display name of the starting state.  The
	// default is the machine's entry.
	Start string `json:"start,omitempty"`

	// MaxSteps can't exceed the service's limit.
	MaxSteps int `json:"maxSteps,omitempty"`
}

// Run runs the machine and records the outcome.
//
// The observer, if not nil, sees every Stride.  A failed run isn't an
// error: the RunRecord reports it.
func (s *Service) Run(ctx context.Context, name string, req *RunRequest, observer func(*StrideEvent)) (*storage.RunRecord, error) {
	m, err := s.Machine(ctx, name)
	if err != nil {
		return nil, err
	}

	tape, err := lang.ParseTape(req.Tape)
	if err != nil {
		return nil, &BadRequest{err}
	}

	start := m.Entry
	if req.Start != "" {
		var have bool
		if start, have = m.Lookup(req.Start); !have {
			return nil, &BadRequest{fmt.Errorf(`no state "%s"`, req.Start)}
		}
	}

	limit := s.cfg.MaxSteps
	if 0 < req.MaxSteps && (limit <= 0 || req.MaxSteps < limit) {
		limit = req.MaxSteps
	}

	if 0 < s.cfg.RunTimeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	id := uuid.NewString()
	ctl := &core.Control{
		Limit: limit,
	}
	if observer != nil {
		ctl.Observer = func(stride *core.Stride) {
			observer(&StrideEvent{Run: id, Machine: name, Stride: stride})
		}
	}

	cfg := core.NewConfig(start, tape.Copy())
	walked, err := m.Walk(ctx, cfg, ctl)
	if err != nil && walked.StoppedBecause == core.Canceled {
		return nil, err
	}

	r := storage.NewRunRecord(id, name, tape, cfg)
	if err = s.store.PutRun(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("ran", "machine", name, "run", id, "status", r.Status, "steps", r.Steps)

	s.toFirehose(r)
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, r); err != nil {
			s.log.Warn("publish failed", "run", id, "error", err)
		}
	}

	return r, nil
}

// StrideEvent is a Stride from a particular run.
type StrideEvent struct {
	Run     string       `json:"run"`
	Machine string       `json:"machine"`
	Stride  *core.Stride `json:"stride"`
}

func (s *Service) toFirehose(x interface{}) {
	if s.firehose == nil {
		return
	}
	select {
	case s.firehose <- x:
	default:
		s.log.Warn("firehose blocked")
	}
}
