package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/l20n/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// basePrefix returns the base name used for the configuration and cache
// directories.
//
// By default, basePrefix is the base name of the executable file unless it
// matches one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with l20n
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return cleanPrefix(id)
	},
)

var (
	debugBin    = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDots = regexp.MustCompile(`^\.+`)
)

// cleanPrefix reduces an executable path to the name of its directories.
func cleanPrefix(exe string) string {
	id := leadingDots.ReplaceAllString(filepath.Base(exe), "")
	id = strings.TrimSuffix(id, filepath.Ext(id))
	id = debugBin.ReplaceAllString(id, pkg.Name)

	if id == "" {
		return pkg.Name
	}

	return id
}

// userDir joins basePrefix to the directory returned by user, falling back to
// fallback under the home directory, and finally the working directory.
func userDir(user func() (string, error), fallback string) string {
	dir, err := user()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the cache directory path used for transient files such as
// the REPL history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
