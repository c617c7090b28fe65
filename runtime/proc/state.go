package proc

// State is the lifecycle state of a process control block.
type State uint8

const (
	// Ready means eligible to run, not currently on the CPU.
	Ready State = iota
	// Running means the unit currently has the CPU. At most one PCB is
	// Running at any instant.
	Running
	// Blocked means waiting on an event, not eligible until woken.
	Blocked
	// Zombie means the unit has exited; its context is discarded and only
	// the PID lingers pending reap.
	Zombie
	// Terminated means fully cleaned up and eligible for removal.
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Zombie:
		return "zombie"
	case Terminated:
		return "terminated"
	}
	return "invalid"
}

// Schedulable reports whether the scheduler may select this state.
func (s State) Schedulable() bool {
	return s == Ready || s == Running
}

// Live reports whether the state still counts as a process: everything
// except Zombie and Terminated.
func (s State) Live() bool {
	return s != Zombie && s != Terminated
}
