package x86

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	testCases := []struct {
		name     string
		entry    uint64
		stackTop uint64
	}{
		{
			name:     "kernel text entry",
			entry:    0x100000,
			stackTop: 0x200000,
		},
		{
			name:     "high half entry",
			entry:    0xffffffff80001000,
			stackTop: 0xffffffff80080000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := NewContext(tc.entry, tc.stackTop)
			assert.Equal(t, tc.entry, ctx.RIP)
			assert.Equal(t, tc.stackTop, ctx.RSP)
			assert.Equal(t, DefaultRFlags, ctx.RFlags)
			assert.Equal(t, SelectorKernelCode, ctx.CS)
			assert.Equal(t, SelectorKernelData, ctx.SS)
			assert.True(t, ctx.InterruptsEnabled())
			assert.Zero(t, ctx.RAX)
			assert.Zero(t, ctx.R15)
		})
	}
}

func TestContext_Reset(t *testing.T) {
	ctx := NewContext(0x100000, 0x200000)
	ctx.RAX = 42
	ctx.Reset()
	assert.Equal(t, Context{}, ctx)
	assert.False(t, ctx.InterruptsEnabled())
}

func TestContext_String(t *testing.T) {
	ctx := NewContext(0x100000, 0x200000)
	s := ctx.String()
	assert.Contains(t, s, "rip=0x100000")
	assert.Contains(t, s, "rsp=0x200000")
}
