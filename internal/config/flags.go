package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into scanning, report, display, and utility.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// version is shown in --version and help; override at build time with
// -ldflags "-X ...config.version=...".
var version = "2.0.0-dev"

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, invalid enum value).
func ParseFlags(cfg *Config) error {
	fs := flag.NewFlagSet("gogcheck", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var util utilityFlags

	defineScanFlags(fs, cfg)
	defineReportFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &util)
	defineUtilityFlags(fs, cfg, &util)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if util.noColor {
		cfg.ColorMode = ColorNever
	} else if util.forceColor {
		cfg.ColorMode = ColorAlways
	}

	if util.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if util.showVersion {
		fmt.Fprintln(os.Stdout, "gogcheck v"+version)
		os.Exit(0)
	}

	if len(fs.Args()) != 0 {
		return fmt.Errorf("unexpected positional arguments %v (use --path)", fs.Args())
	}
	return nil
}

// utilityFlags holds flags that are applied or acted on after Parse.
type utilityFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineScanFlags registers --path, --innoextract-path, --data-file.
func defineScanFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var((*pathsValue)(&cfg.Paths), "path", "Directory to scan for installers (repeatable)")
	fs.Var((*pathsValue)(&cfg.Paths), "p", "Same as --path")
	fs.StringVar(&cfg.InnoextractPath, "innoextract-path", "", "Path to the innoextract binary (default: search PATH)")
	fs.StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "JSON data file with names, versions and exclusions")
}

// defineReportFlags registers --output-file and --log-file.
func defineReportFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.OutputFile, "output-file", "", "Write the report to this file (timestamp is appended)")
	fs.StringVar(&cfg.OutputFile, "o", "", "Same as --output-file")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Custom log file path (timestamp is appended)")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log-file")
}

// defineDisplayFlags registers --log-level, --color, --no-color.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, u *utilityFlags) {
	fs.Var(&logLevelValue{&cfg.LogLevel}, "log-level", "Minimum log level: debug | info | warning | error")
	fs.BoolVar(&u.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&u.noColor, "no-color", false, "Disable colored logs")
}

// defineUtilityFlags registers --check, --version and --help.
func defineUtilityFlags(fs *flag.FlagSet, cfg *Config, u *utilityFlags) {
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&u.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&u.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&u.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&u.showHelp, "h", false, "Same as --help")
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet) {
	const col1 = 32 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "gogcheck v" + version + " - GOG offline installer update checker"},
		{"", ""},
		{"  gogcheck --path <dir> [--path <dir> ...] [OPTIONS]", ""},
		{"", ""},
		{"Scanning", ""},
		{"  -p, --path <dir>", "Directory to scan for installers (repeatable)"},
		{"  --innoextract-path <path>", "innoextract binary (default: search PATH)"},
		{"  --data-file <path>", "JSON data file (default: data.json)"},
		{"", ""},
		{"Report", ""},
		{"  -o, --output-file <path>", "Write the report to a file (timestamped)"},
		{"  -l, --log-file <path>", "Custom log file path (timestamped)"},
		{"", ""},
		{"Display", ""},
		{"  --log-level <level>", "debug | info | warning | error (default: info)"},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (innoextract, 7z, catalog API)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapters so repeatable and enum flags work with flag.Var.

// pathsValue collects every --path occurrence, normalized.
type pathsValue []string

func (p *pathsValue) String() string { return strings.Join(*p, ", ") }
func (p *pathsValue) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("path must not be empty")
	}
	*p = append(*p, NormalizeDirArg(s))
	return nil
}

type logLevelValue struct{ p *LogLevel }

func (l *logLevelValue) String() string { return string(*l.p) }
func (l *logLevelValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "debug":
		*l.p = LevelDebug
	case "info":
		*l.p = LevelInfo
	case "warning", "warn":
		*l.p = LevelWarning
	case "error":
		*l.p = LevelError
	default:
		return fmt.Errorf("invalid log level %q (use 'debug', 'info', 'warning' or 'error')", s)
	}
	return nil
}
