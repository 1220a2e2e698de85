//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the l20n module embedded at build time.
// It is printed by the CLI's --version flag.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name, also used for the config and cache
	// directories when the executable name cannot be determined.
	Name = "l20n"
	// Description is a short, human-readable summary of the project used in
	// help output.
	Description = "L20n localization compiler and resolver"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
