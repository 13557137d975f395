// Package install makes sure the wrapped CLI is present before it runs.
//
// A persisted marker records a successful install. The Ensurer consults a
// MarkerStore, runs the install command when the marker is missing or stale,
// and writes the marker only after the command exits zero. Install failures
// are never fatal here; they surface later when the binary cannot be found.
package install
