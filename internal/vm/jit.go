package vm

import (
	"log"

	"naux/internal/bytecode"
)

// ThresholdLogger is a JITHook that logs once per function the first
// time its call count crosses Threshold, standing in for the Rust
// reference's Dynasm x86-64 emitter (original_source's vm/jit.rs): that
// emitter is machine-specific, feature-gated, and documented there as a
// pure speed optimization with no effect on results, so this hook
// reproduces the "a function got hot" decision point it gates on,
// without generating native code.
type ThresholdLogger struct {
	Threshold uint64
	seen      map[*bytecode.Function]bool
}

// MaybeCompile implements JITHook.
func (t *ThresholdLogger) MaybeCompile(fn *bytecode.Function, calls uint64) {
	if t.Threshold == 0 || calls < t.Threshold {
		return
	}
	if t.seen == nil {
		t.seen = map[*bytecode.Function]bool{}
	}
	if t.seen[fn] {
		return
	}
	t.seen[fn] = true
	log.Printf("vm: function %q crossed hotness threshold (%d calls)", fn.Name, calls)
}
