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
	"sync/atomic"
)

// Machiner enables other things to manifest themselves as Machines.
//
// A Machine is itself a Machiner.  An UpdatableMachine is also a
// Machiner, but it's not itself a Machine.
type Machiner interface {
	Machine() *Machine
}

// Machine makes any Machine a Machiner.
func (m *Machine) Machine() *Machine {
	return m
}

// UpdatableMachine is a Machiner with an underlying Machine that can
// be replaced at any time (say, after recompiling its templates).
//
// Executions that already got the old Machine keep using it.
type UpdatableMachine struct {
	m atomic.Pointer[Machine]
}

// NewUpdatableMachine makes one with the given initial machine, which
// can be changed later via SetMachine.
func NewUpdatableMachine(m *Machine) *UpdatableMachine {
	u := &UpdatableMachine{}
	u.m.Store(m)
	return u
}

// SetMachine atomically changes the underlying machine.
func (u *UpdatableMachine) SetMachine(m *Machine) {
	u.m.Store(m)
}

// Machine implements the Machiner interface.
func (u *UpdatableMachine) Machine() *Machine {
	return u.m.Load()
}
