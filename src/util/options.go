// Package util carries the toolchain-wide configuration options shared by
// the CLI entry point, the verifier's parallel driver, and the VM runner.
package util

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options is the resolved toolchain configuration. The cmd layer populates
// it from command-line flags; library code reads it and never mutates it.
type Options struct {
	Src          string // Path to the IL source file.
	Out          string // Path to output file ("" means stdout).
	Threads      int    // Worker count for parallel per-function verification.
	Verbose      bool   // Set true to log per-stage statistics to stdout.
	MaxCallDepth int    // Interpreter call depth before a StackOverflow trap.
	Target       string // Codegen target name ("" means interpret).
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxThreads = 64 // Maximum threads allowed executing in parallel.

const defaultMaxCallDepth = 4096

// ---------------------
// ----- Functions -----
// ---------------------

// Default returns the Options every command starts from before applying
// its flags.
func Default() Options {
	return Options{Threads: 1, MaxCallDepth: defaultMaxCallDepth}
}

// Validate rejects configurations no stage can honor.
func (o Options) Validate() error {
	if o.Threads < 1 || o.Threads > maxThreads {
		return fmt.Errorf("thread count must be integer in range [1, %d]", maxThreads)
	}
	if o.MaxCallDepth < 1 {
		return fmt.Errorf("max call depth must be positive")
	}
	return nil
}
