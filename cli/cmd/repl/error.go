package repl

import "github.com/ardnew/l20n/lang"

// Predefined errors (sentinel values).
var (
	ErrOutOfBounds  = lang.NewError("history index out of range")
	ErrEditDeclined = lang.NewError("edit declined")
	ErrLoadData     = lang.NewError("failed to load data")
)
