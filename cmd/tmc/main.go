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

// Package main is a command-line tool for compiling, running,
// rendering, and testing templates.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	mod, have := Mods[os.Args[1]]
	if !have {
		fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
		Usage()
		os.Exit(1)
	}

	fs := mod.Flags()
	if err := fs.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := mod.F(context.Background(), os.Stdout, fs.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func Usage() {
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Usage: tmc SUBCOMMAND [FLAGS] TEMPLATES\n\nTEMPLATES can be \"-\" for stdin.\n\nSubcommands:\n\n")
	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
}
