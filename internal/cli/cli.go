package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/pioconf/internal/app"
	"github.com/specialistvlad/pioconf/internal/buildenv"
	"github.com/specialistvlad/pioconf/internal/hook"
	"github.com/specialistvlad/pioconf/internal/watch"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varsFlag collects repeated -var KEY=VALUE flags.
type varsFlag map[string]string

func (v varsFlag) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+v[k])
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected KEY=VALUE, got %q", s)
	}
	v[strings.TrimSpace(key)] = val
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pioconf", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
pioconf - installs custom TFT_eSPI and LVGL configuration headers into the
PlatformIO library dependency cache before the firmware is built.

Usage:
  pioconf [options]

Run it from a PlatformIO pre-build script, for example:
  env.AddPreAction("buildprog", env.VerboseAction(
      "pioconf -project-dir $PROJECT_DIR -env $PIOENV", "Installing custom configs"))

Options:
`)
		flagSet.PrintDefaults()
	}

	vars := varsFlag{}
	projectDirFlag := flagSet.String("project-dir", envOr(buildenv.KeyProjectDir, "."), "Project root directory. Defaults to $PROJECT_DIR or the current directory.")
	envFlag := flagSet.String("env", os.Getenv(buildenv.KeyProfile), "Build environment (PlatformIO env). Defaults to $PIOENV, then platformio.ini default_envs.")
	eFlag := flagSet.String("e", "", "Build environment (shorthand).")
	targetFlag := flagSet.String("target", hook.TargetProgram, "Build target whose pre-build actions run.")
	flagSet.Var(vars, "var", "Extra build environment entry as KEY=VALUE. Repeatable.")
	watchFlag := flagSet.Bool("watch", false, "Keep running and re-install whenever a custom configuration file changes.")
	debounceFlag := flagSet.Duration("debounce", watch.DefaultDebounce, "Quiet period before re-installing in watch mode.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}

	env := *envFlag
	if *eFlag != "" {
		env = *eFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ProjectDir: *projectDirFlag,
		Env:        env,
		Target:     *targetFlag,
		Vars:       vars,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		Watch:      *watchFlag,
		Debounce:   *debounceFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
