// Package invoke runs one OCI CLI invocation end to end.
//
// The pipeline is strictly sequential:
//   - install: make sure the CLI is present (see package install)
//   - build: assemble the shell command line from caller inputs
//   - execute: run it through a shell, registering secrets first
//   - normalize: turn stdout into the published output values
//
// Every run reports exactly one outcome to the Reporter: success with
// outputs, or failure with a diagnostic message.
package invoke
