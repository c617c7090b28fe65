package halt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalf(t *testing.T) {
	assert.PanicsWithValue(t, "kernel halt: pid 7 out of range", func() {
		Fatalf("pid %d out of range", 7)
	})
}

func TestFatalf_Stubbed(t *testing.T) {
	original := Func
	defer func() { Func = original }()

	var captured string
	Func = func(reason string) { captured = reason }

	Fatalf("cursor %d beyond queue length %d", 3, 2)
	assert.Equal(t, "cursor 3 beyond queue length 2", captured)
}
