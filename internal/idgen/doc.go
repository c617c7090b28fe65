// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Identifiers minted here label whole-kernel artifacts (the per-boot
// identity, reap notifications), never processes: process identifiers are
// small monotonic integers owned by pidgen.
package idgen
