package kernor

// Version is the kernel release reported in trace resources.
const Version = "0.1.0"
