// Package kernor provides the process lifecycle and scheduling core of a
// small x86-64 kernel, modelled as an embeddable Go service.
//
// The kernel keeps a table of units of execution, rotates them over a
// single processor in spawn order and preempts the running one from a
// periodic timer. It comes with pluggable service layers such as:
//
//   - manager  – process table, state transitions and dispatch
//   - preempt  – interval timer driving forced rescheduling
//   - stack    – arena allocation and reclamation of call stacks
//   - notify   – reap events flowing to reclamation and accounting
//
// Kernor is designed to be embedded in host applications.  End-users
// typically interact with the kernel via the high-level Service façade
// exposed by the root package:
//
//	srv := kernor.New()
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	pid, _ := rt.Spawn(ctx, "shell", 0x401000)
//	rt.Tick()
//	rt.Exit(ctx, pid)
//	rt.Reap(ctx)
//
// For more details see the README and individual sub-packages.
package kernor
