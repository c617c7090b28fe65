package idgen

import "github.com/google/uuid"

// NewFunc mints a globally unique identifier as a string. It is a variable
// so tests can stub identifier generation.
var NewFunc = func() string { return uuid.New().String() }

// New returns a fresh identifier.
func New() string { return NewFunc() }
