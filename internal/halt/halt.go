// Package halt terminates the kernel when its own bookkeeping is found
// broken. There is no higher authority to recover to, so invariant
// violations stop the machine with a diagnostic instead of continuing in
// an unknown state.
package halt

import (
	"fmt"
	"log/slog"
)

// Func carries the halt behaviour. The default logs the diagnostic and
// panics. Override in tests to observe fatal paths.
var Func = func(reason string) {
	slog.Error("kernel halt", "reason", reason)
	panic("kernel halt: " + reason)
}

// Fatalf formats a diagnostic and halts the kernel.
func Fatalf(format string, args ...any) {
	Func(fmt.Sprintf(format, args...))
}
