package proc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kernor/internal/clock"
)

func TestNew(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	original := clock.NowFunc
	defer func() { clock.NowFunc = original }()
	clock.NowFunc = func() time.Time { return created }

	p := New(7, 0x400000, 0x408000)

	assert.Equal(t, uint32(7), p.PID)
	assert.Equal(t, Ready, p.State)
	assert.Equal(t, uint64(0x400000), p.Entry)
	assert.Equal(t, uint64(0x408000), p.StackTop)
	assert.Equal(t, uint64(0x400000), p.Context.RIP)
	assert.Equal(t, uint64(0x408000), p.Context.RSP)
	assert.True(t, p.Context.InterruptsEnabled())
	assert.Equal(t, created, p.CreatedAt)
}

func TestPCB_String(t *testing.T) {
	p := New(3, 0x400000, 0x408000)
	assert.Equal(t, "3 pid-3 ready", p.String())

	p.Name = "shell"
	p.State = Running
	assert.Equal(t, "3 shell running", p.String())
}
