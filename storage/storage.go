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

// Package storage persists compiled machines and the results of runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Comcast/tmachine/core"
)

// NotFound is returned when a requested machine doesn't exist.
var NotFound = errors.New("not found")

// MachineRecord is a compiled machine as stored in a Storage system.
type MachineRecord struct {
	Name string `json:"name"`

	// Source is the template source that was compiled, if known.
	Source string `json:"source,omitempty" yaml:",omitempty"`

	// Entry is the entry template used for the compilation.
	Entry string `json:"entry,omitempty" yaml:",omitempty"`

	Machine  *core.Machine `json:"machine"`
	Compiled time.Time     `json:"compiled"`
}

// RunRecord is the outcome of running a machine on a tape.
type RunRecord struct {
	Id      string `json:"id"`
	Machine string `json:"machine"`

	// Input is the initial tape as core.Tape renders it.
	Input string `json:"input"`

	Status core.Status `json:"status"`
	Tape   string      `json:"tape"`
	Head   int         `json:"head"`
	Steps  int         `json:"steps"`
	Error  string      `json:"error,omitempty" yaml:",omitempty"`
	At     time.Time   `json:"at"`
}

// Storage is a persistence interface for machines and their runs.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	// PutMachine writes (or overwrites) the record with the
	// record's Name.
	PutMachine(ctx context.Context, r *MachineRecord) error

	// GetMachine returns NotFound if there's no such machine.
	GetMachine(ctx context.Context, name string) (*MachineRecord, error)

	// RemMachine removes the machine and all of its runs.
	RemMachine(ctx context.Context, name string) error

	// ListMachines returns the names of all stored machines in
	// lexical order.
	ListMachines(ctx context.Context) ([]string, error)

	PutRun(ctx context.Context, r *RunRecord) error

	// GetRuns returns the machine's runs ordered by At.
	GetRuns(ctx context.Context, machine string) ([]*RunRecord, error)
}

// NewRunRecord makes a RunRecord from a finished (or limited)
// configuration.
func NewRunRecord(id, machine string, input *core.Tape, c *core.Config) *RunRecord {
	r := &RunRecord{
		Id:      id,
		Machine: machine,
		Input:   input.String(),
		Status:  c.Status,
		Tape:    c.Tape.String(),
		Head:    c.Head,
		Steps:   c.Steps,
		At:      time.Now().UTC(),
	}
	if c.Err != nil {
		r.Error = c.Err.Error()
	}
	return r
}
