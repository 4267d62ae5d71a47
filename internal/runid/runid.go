// Package runid mints a sortable, unique identifier for a single NAUX
// run. cmd/naux prints it in its success banner; diagnostics, events and
// the LSP server do not carry it.
package runid

import "github.com/segmentio/ksuid"

// New returns a fresh run identifier.
func New() string {
	return ksuid.New().String()
}
