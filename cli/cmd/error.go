package cmd

import "github.com/ardnew/l20n/lang"

// Command failures. Each wraps its cause and carries the offending path, id
// or locale as structured attributes.
var (
	ErrReadSource    = lang.NewError("read source")
	ErrParseSource   = lang.NewError("parse source")
	ErrReadData      = lang.NewError("read data")
	ErrResolve       = lang.NewError("resolve")
	ErrInvalidLocale = lang.NewError("invalid locale")
	ErrWriteOutput   = lang.NewError("write output")
	ErrWatch         = lang.NewError("watch")
)
