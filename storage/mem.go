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
	"sort"
	"sync"
)

// MemStorage is an in-memory Storage.  Everything is lost at Close.
type MemStorage struct {
	sync.Mutex

	machines map[string]*MachineRecord
	runs     map[string][]*RunRecord
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		machines: make(map[string]*MachineRecord),
		runs:     make(map[string][]*RunRecord),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	s.Lock()
	s.machines = make(map[string]*MachineRecord)
	s.runs = make(map[string][]*RunRecord)
	s.Unlock()
	return nil
}

func (s *MemStorage) PutMachine(ctx context.Context, r *MachineRecord) error {
	s.Lock()
	s.machines[r.Name] = r
	s.Unlock()
	return nil
}

func (s *MemStorage) GetMachine(ctx context.Context, name string) (*MachineRecord, error) {
	s.Lock()
	defer s.Unlock()
	r, have := s.machines[name]
	if !have {
		return nil, NotFound
	}
	return r, nil
}

func (s *MemStorage) RemMachine(ctx context.Context, name string) error {
	s.Lock()
	delete(s.machines, name)
	delete(s.runs, name)
	s.Unlock()
	return nil
}

func (s *MemStorage) ListMachines(ctx context.Context) ([]string, error) {
	s.Lock()
	acc := make([]string, 0, len(s.machines))
	for name := range s.machines {
		acc = append(acc, name)
	}
	s.Unlock()
	sort.Strings(acc)
	return acc, nil
}

func (s *MemStorage) PutRun(ctx context.Context, r *RunRecord) error {
	s.Lock()
	s.runs[r.Machine] = append(s.runs[r.Machine], r)
	s.Unlock()
	return nil
}

func (s *MemStorage) GetRuns(ctx context.Context, machine string) ([]*RunRecord, error) {
	s.Lock()
	acc := append([]*RunRecord(nil), s.runs[machine]...)
	s.Unlock()
	sort.SliceStable(acc, func(i, j int) bool {
		return acc[i].At.Before(acc[j].At)
	})
	return acc, nil
}
