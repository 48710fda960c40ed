package config

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// DefaultDisplayType is used when no display type argument is given.
const DefaultDisplayType = "window"

// Flags holds the command-line configuration of the displayproxy binary.
type Flags struct {
	DisplayType string
	Host        string
	Port        int
	Buttons     string
	Options     string
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	// Watch, when set, names a running displayproxy whose presses are
	// printed instead of starting a display.
	Watch string
}

// ParseFlags parses args (without the program name). Defaults come from s.
// Flags may appear before or after the display type argument.
func ParseFlags(args []string, s *Settings, output io.Writer) (*Flags, error) {
	f := &Flags{}
	fs := pflag.NewFlagSet("displayproxy", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "Usage: displayproxy [flags] [DISPLAY_TYPE]")
		fmt.Fprintln(output, "\nDISPLAY_TYPE is inky, window or a named preset such as inky-impression-5.7 (default: window).")
		fmt.Fprintln(output, "\nFlags:")
		fs.PrintDefaults()
	}

	fs.StringVar(&f.Host, "host", s.Host, "host to listen on")
	fs.IntVar(&f.Port, "port", s.Port, "port to listen on")
	fs.StringVar(&f.Buttons, "buttons", "", `button configuration, "label=spec;label=spec"`)
	fs.StringVar(&f.Options, "options", "", `type-specific display options, "key=value;key=value"`)
	fs.StringVar(&f.LogLevel, "log-level", s.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", s.LogFormat, "log format (text, json)")
	fs.BoolVar(&f.ShowVersion, "version", false, "print version and exit")
	fs.StringVar(&f.Watch, "watch", "", "print button presses from a running displayproxy (host:port or URL) instead of serving")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
		f.DisplayType = DefaultDisplayType
	case 1:
		f.DisplayType = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one display type, got %d arguments", fs.NArg())
	}

	if f.Port < 0 || f.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", f.Port)
	}
	return f, nil
}
