package bootargs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []Arg
		expectErr bool
	}{
		{
			name:  "typical command line",
			input: "timer.frequency=250 stack.pages=512 quiet console=ttyS0",
			expect: []Arg{
				{Key: "timer.frequency", Value: "250"},
				{Key: "stack.pages", Value: "512"},
				{Key: "quiet"},
				{Key: "console", Value: "ttyS0"},
			},
		},
		{
			name:   "empty input",
			input:  "",
			expect: []Arg{},
		},
		{
			name:   "surrounding whitespace",
			input:  "  trace=on\t\n",
			expect: []Arg{{Key: "trace", Value: "on"}},
		},
		{
			name:   "empty value",
			input:  "journal.base=",
			expect: []Arg{{Key: "journal.base", Value: ""}},
		},
		{
			name:   "hex value",
			input:  "stack.base=0x700000",
			expect: []Arg{{Key: "stack.base", Value: "0x700000"}},
		},
		{
			name:      "value without key",
			input:     "=250",
			expectErr: true,
		},
		{
			name:      "key starting with digit",
			input:     "9lives=true",
			expectErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			args, err := Parse([]byte(testCase.input))
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, args.Entries())
			assert.Equal(t, len(testCase.expect), args.Len())
		})
	}
}

func TestArgs_LastOccurrenceWins(t *testing.T) {
	args, err := Parse([]byte("timer.frequency=100 timer.frequency=1000"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), args.Uint32("timer.frequency", 0))
	assert.Equal(t, 2, args.Len(), "both occurrences retained in order")
}

func TestArgs_Bool(t *testing.T) {
	args, err := Parse([]byte("quiet trace=on journal=off verbose=maybe"))
	require.NoError(t, err)

	testCases := []struct {
		name         string
		key          string
		defaultValue bool
		expect       bool
	}{
		{
			name:   "bare key switches on",
			key:    "quiet",
			expect: true,
		},
		{
			name:   "explicit on",
			key:    "trace",
			expect: true,
		},
		{
			name:         "explicit off",
			key:          "journal",
			defaultValue: true,
			expect:       false,
		},
		{
			name:         "unparseable keeps default",
			key:          "verbose",
			defaultValue: false,
			expect:       false,
		},
		{
			name:         "absent keeps default",
			key:          "debug",
			defaultValue: true,
			expect:       true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expect, args.Bool(testCase.key, testCase.defaultValue))
		})
	}
}

func TestArgs_Numbers(t *testing.T) {
	args, err := Parse([]byte("timer.frequency=250 stack.base=0x700000 stack.pages=banana"))
	require.NoError(t, err)

	assert.Equal(t, uint32(250), args.Uint32("timer.frequency", 100))
	assert.Equal(t, uint64(0x700000), args.Uint64("stack.base", 0))
	assert.Equal(t, uint64(256), args.Uint64("stack.pages", 256), "malformed value keeps default")
	assert.Equal(t, uint32(100), args.Uint32("absent", 100))
}

func TestArgs_Value(t *testing.T) {
	args, err := Parse([]byte("console=ttyS0 quiet"))
	require.NoError(t, err)

	value, ok := args.Value("console")
	assert.True(t, ok)
	assert.Equal(t, "ttyS0", value)

	value, ok = args.Value("quiet")
	assert.True(t, ok)
	assert.Equal(t, "", value)

	_, ok = args.Value("missing")
	assert.False(t, ok)
	assert.True(t, args.Has("quiet"))
	assert.False(t, args.Has("missing"))
	assert.Equal(t, "ttyS0", args.String("console", "tty0"))
	assert.Equal(t, "tty0", args.String("missing", "tty0"))
}
