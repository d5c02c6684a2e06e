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
	"fmt"
)

// Example compiles a parameterized template and runs the result.
func Example() {
	ctx := context.Background()

	m, err := SeekSpec().Compile(ctx, "", nil, nil)
	if err != nil {
		panic(err)
	}
	fmt.Print(m)

	status, tape, head, err := m.Run(ctx, m.Entry, NewTape("aab"))
	if err != nil {
		panic(err)
	}
	fmt.Println(status, tape, head)

	// Output:
	// 0 main (entry)
	//   [*] goto 1
	// 1 seek('b', {='X' accept})
	//   ['b'] ='X' accept
	//   [*] > goto 1
	// accepted aaX 2
}

// ExampleMachine_Walk steps the incrementer one branch at a time.
func ExampleMachine_Walk() {
	m := IncrementMachine()
	c := NewConfig(0, NewTape("011"))
	for c.Status == Running {
		walked, err := m.Walk(context.Background(), c, &Control{Limit: 1, Trace: true})
		if err != nil {
			panic(err)
		}
		s := walked.Strides[0]
		fmt.Printf("%d@%d %s -> %s %s\n", s.From, s.Head, s.Scanned, s.Then, c.Tape)
	}

	// Output:
	// 0@0 '0' -> goto 0 011
	// 0@1 '1' -> goto 1 001
	// 1@0 '0' -> accept 101
}
