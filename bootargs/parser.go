// Package bootargs parses the kernel command line, a whitespace separated
// list of key=value options where a bare key stands for a switched-on
// flag and the last occurrence of a key wins.
package bootargs

import (
	"strconv"
	"strings"

	"github.com/viant/parsly"
)

// Arg is a single command line option.
type Arg struct {
	Key   string
	Value string
}

// Args holds the parsed command line.
type Args struct {
	entries []Arg
	index   map[string]string
}

// Parse parses a command line in the format: key[=value] key[=value] ...
func Parse(input []byte) (*Args, error) {
	cursor := parsly.NewCursor("", input, 0)
	args := &Args{index: map[string]string{}}

	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchOne(whitespaceToken)
		if matched.Code == whitespaceToken.Code {
			continue
		}
		matched = cursor.MatchOne(keyToken)
		if matched.Code != keyToken.Code {
			return nil, cursor.NewError(keyToken)
		}
		entry := Arg{Key: matched.Text(cursor)}

		matched = cursor.MatchOne(equalsToken)
		if matched.Code == equalsToken.Code {
			matched = cursor.MatchOne(valueToken)
			if matched.Code == valueToken.Code {
				entry.Value = matched.Text(cursor)
			}
		}
		args.entries = append(args.entries, entry)
		args.index[entry.Key] = entry.Value
	}
	return args, nil
}

// Has reports whether key appeared on the command line.
func (a *Args) Has(key string) bool {
	_, ok := a.index[key]
	return ok
}

// Value returns the raw value of key.
func (a *Args) Value(key string) (string, bool) {
	value, ok := a.index[key]
	return value, ok
}

// String returns the value of key, or defaultValue when absent.
func (a *Args) String(key, defaultValue string) string {
	if value, ok := a.index[key]; ok {
		return value
	}
	return defaultValue
}

// Bool interprets key as a flag: a bare key or on/yes/true/1 switches it
// on, off/no/false/0 switches it off, anything else keeps defaultValue.
func (a *Args) Bool(key string, defaultValue bool) bool {
	value, ok := a.index[key]
	if !ok {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "", "on", "yes", "true", "1":
		return true
	case "off", "no", "false", "0":
		return false
	}
	return defaultValue
}

// Uint32 returns key parsed as an unsigned number, or defaultValue when
// absent or malformed. A 0x prefix selects hexadecimal.
func (a *Args) Uint32(key string, defaultValue uint32) uint32 {
	value, ok := a.index[key]
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return defaultValue
	}
	return uint32(parsed)
}

// Uint64 returns key parsed as an unsigned number, or defaultValue when
// absent or malformed. A 0x prefix selects hexadecimal.
func (a *Args) Uint64(key string, defaultValue uint64) uint64 {
	value, ok := a.index[key]
	if !ok {
		return defaultValue
	}
	parsed, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// Entries returns the options in command line order.
func (a *Args) Entries() []Arg {
	ret := make([]Arg, len(a.entries))
	copy(ret, a.entries)
	return ret
}

// Len returns the number of options.
func (a *Args) Len() int {
	return len(a.entries)
}
