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

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Comcast/tmachine/core"
)

// Exercise runs the same checks against any Storage.  The Storage
// should be open and empty.
func Exercise(ctx context.Context, t *testing.T, s Storage) {
	m := core.IncrementMachine()

	if _, err := s.GetMachine(ctx, "increment"); !errors.Is(err, NotFound) {
		t.Fatal(err)
	}

	for _, name := range []string{"increment", "again"} {
		r := &MachineRecord{
			Name:     name,
			Machine:  m,
			Compiled: time.Now().UTC(),
		}
		if err := s.PutMachine(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.ListMachines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "again" || names[1] != "increment" {
		t.Fatal(names)
	}

	got, err := s.GetMachine(ctx, "increment")
	if err != nil {
		t.Fatal(err)
	}
	if got.Machine.String() != m.String() {
		t.Fatalf("%s\n!=\n%s", got.Machine, m)
	}

	// The stored machine should still run.
	input := core.NewTape("1011")
	status, tape, _, err := got.Machine.Run(ctx, got.Machine.Entry, input)
	if err != nil {
		t.Fatal(err)
	}
	if status != core.Accepted {
		t.Fatal(status)
	}

	at := time.Now().UTC()
	for i, id := range []string{"r2", "r1"} {
		c := core.NewConfig(0, tape)
		c.Status = status
		r := NewRunRecord(id, "increment", input, c)
		r.At = at.Add(time.Duration(i) * time.Second)
		if err := s.PutRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.GetRuns(ctx, "increment")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Id != "r2" || runs[1].Id != "r1" {
		t.Fatal(runs)
	}
	if runs[0].Input != "1011" || runs[0].Status != core.Accepted {
		t.Fatal(runs[0])
	}

	if err := s.RemMachine(ctx, "increment"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMachine(ctx, "increment"); !errors.Is(err, NotFound) {
		t.Fatal(err)
	}
	if runs, err = s.GetRuns(ctx, "increment"); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatal(runs)
	}
}
