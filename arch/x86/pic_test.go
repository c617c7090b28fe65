package x86

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptController_Lifecycle(t *testing.T) {
	pic := NewInterruptController()

	assert.True(t, pic.Raise(IRQTimer))
	assert.True(t, pic.Pending(IRQTimer))
	assert.False(t, pic.InService(IRQTimer))

	assert.True(t, pic.Service(IRQTimer))
	assert.False(t, pic.Pending(IRQTimer))
	assert.True(t, pic.InService(IRQTimer))

	pic.Ack(IRQTimer)
	assert.False(t, pic.InService(IRQTimer))
}

func TestInterruptController_ServiceWithoutRaise(t *testing.T) {
	pic := NewInterruptController()
	assert.False(t, pic.Service(IRQTimer))
}

func TestInterruptController_Mask(t *testing.T) {
	pic := NewInterruptController()

	pic.SetMask(IRQTimer, true)
	assert.True(t, pic.Masked(IRQTimer))
	assert.False(t, pic.Raise(IRQTimer), "masked line must drop the request")
	assert.False(t, pic.Pending(IRQTimer))

	pic.SetMask(IRQTimer, false)
	assert.True(t, pic.Raise(IRQTimer))
	assert.True(t, pic.Pending(IRQTimer))
}
