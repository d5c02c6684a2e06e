// Package tmachine compiles parameterized Turing-machine templates
// into concrete machines and runs them on tapes.
//
// The core code is in package 'core', the template syntax is in
// 'lang', and some command-line tools are in `cmd`.
package tmachine
