package x86

import "sync"

// IRQ lines on the primary controller.
const (
	IRQTimer uint8 = 0
)

// InterruptController is a minimal 8259-style programmable interrupt
// controller: a request register of raised lines, an in-service register,
// and an interrupt mask. It carries just enough state for the timer path
// to raise, service and acknowledge IRQ0 the way real hardware expects.
type InterruptController struct {
	mu  sync.Mutex
	irr uint8
	isr uint8
	imr uint8
}

// NewInterruptController returns a controller with all lines unmasked.
func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

// Raise asserts an IRQ line. Masked lines are dropped and Raise reports
// false; otherwise the line becomes pending.
func (p *InterruptController) Raise(line uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	bit := uint8(1) << line
	if p.imr&bit != 0 {
		return false
	}
	p.irr |= bit
	return true
}

// Service moves a pending line into service, reporting false if the line
// was not pending.
func (p *InterruptController) Service(line uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	bit := uint8(1) << line
	if p.irr&bit == 0 {
		return false
	}
	p.irr &^= bit
	p.isr |= bit
	return true
}

// Ack sends end-of-interrupt for a line, clearing its in-service bit.
func (p *InterruptController) Ack(line uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isr &^= uint8(1) << line
}

// InService reports whether a line is currently being serviced.
func (p *InterruptController) InService(line uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isr&(uint8(1)<<line) != 0
}

// Pending reports whether a line is raised but not yet serviced.
func (p *InterruptController) Pending(line uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.irr&(uint8(1)<<line) != 0
}

// Masked reports whether a line is masked.
func (p *InterruptController) Masked(line uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.imr&(uint8(1)<<line) != 0
}

// SetMask masks or unmasks a line.
func (p *InterruptController) SetMask(line uint8, masked bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bit := uint8(1) << line
	if masked {
		p.imr |= bit
		return
	}
	p.imr &^= bit
}
