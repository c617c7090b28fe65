package bootargs

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota
	keyCode
	equalsCode
	valueCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	keyToken        = parsly.NewToken(keyCode, "Key", newKeyMatcher())
	equalsToken     = parsly.NewToken(equalsCode, "=", matcher.NewByte('='))
	valueToken      = parsly.NewToken(valueCode, "Value", newValueMatcher())
)

func newKeyMatcher() parsly.Matcher {
	return &keyMatcher{}
}

func newValueMatcher() parsly.Matcher {
	return &valueMatcher{}
}

// keyMatcher matches dotted option names such as timer.frequency
type keyMatcher struct{}

func (m *keyMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		c := input[i]
		if isLetter(c) || isDigit(c) || c == '_' || c == '-' || c == '.' {
			matched++
			continue
		}
		break
	}
	return matched
}

// valueMatcher matches everything up to the next whitespace
type valueMatcher struct{}

func (m *valueMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	matched := 0
	for i := pos; i < size; i++ {
		c := input[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		matched++
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
