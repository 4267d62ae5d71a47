// Package oracle implements the synchronous prompt -> answer boundary
// that backs `ask` events. Host programs supply their own Adapter; the
// default stub is deterministic so test fixtures stay reproducible.
package oracle

import "fmt"

// Adapter answers an oracle prompt synchronously.
type Adapter interface {
	Query(prompt string) string
}

// Stub is the reference adapter: it echoes the prompt back inside a
// fixed phrase, never touching the network.
type Stub struct{}

// Query implements Adapter.
func (Stub) Query(prompt string) string {
	return fmt.Sprintf("oracle says: %s", prompt)
}

// Func adapts a plain function to the Adapter interface.
type Func func(prompt string) string

// Query implements Adapter.
func (f Func) Query(prompt string) string { return f(prompt) }
