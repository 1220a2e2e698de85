package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/l20n/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-format flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"json"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Callsite   bool      `default:"false"                           help:"Include source file and line."     negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	var levels, formats []string

	for l := range log.Levels() {
		levels = append(levels, l)
	}

	for f := range log.Formats() {
		formats = append(formats, f)
	}

	return kong.Vars{
		"logLevelEnum":  strings.Join(levels, ","),
		"logFormatEnum": strings.Join(formats, ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCallsite(f.Callsite),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("callsite", f.Callsite),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan performs an early pass over command-line arguments to extract and
// apply logger configuration before Kong begins parsing. This ensures the
// logger is configured properly regardless of flag position on the command
// line.
//
// While logFormat and logLevel types implement encoding.TextUnmarshaler to
// configure the logger as flags are encountered during parsing, boolean flags
// like Pretty don't go through that interface.
func (f *logConfig) scan(args []string) {
	bools := map[string]func(bool){
		"pretty": func(v bool) {
			f.Pretty = v
			log.Config(log.WithPretty(v))
		},
		"callsite": func(v bool) {
			f.Callsite = v
			log.Config(log.WithCallsite(v))
		},
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, negated := strings.CutPrefix(arg, "--no-log-")
		if !negated {
			var ok bool
			if name, ok = strings.CutPrefix(arg, "--log-"); !ok {
				continue
			}
		}

		name, value, assigned := strings.Cut(name, "=")

		switch name {
		case "level", "format":
			if negated {
				continue
			}

			// Non-boolean flag: consume next arg as value if not assigned
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				value = args[i+1]
				i++
			}

			if name == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "pretty", "callsite":
			// Boolean flag: only parse value if explicitly assigned with =
			v := true

			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			bools[name](v != negated)
		}
	}
}
