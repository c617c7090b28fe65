// Package tracing integrates observability back-ends with the kernel
// services to provide span level insight into boot, spawning and
// reclamation.  All instrumentation is kept in a separate package so that
// applications which do not require tracing can exclude it from their
// build.
package tracing
