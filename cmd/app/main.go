package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"quill/internal/config"
	"quill/internal/engine"
	"quill/internal/queue"
	"quill/internal/repl"
)

var (
	// Version is the current version of the quill binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath  string
	scriptsPath string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// engine config
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.StringVar(&scriptsPath, "scripts", "", "Script directory (overrides the configured path)")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(logLevel),
	}
	logWriter := configureLogWriter()
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if scriptsPath != "" {
		cfg.ScriptsPath = scriptsPath
	}

	eng := engine.New(cfg)
	if err := eng.LoadScripts(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load scripts: %v\n", err)
		os.Exit(1)
	}
	if cfg.WatchReload {
		watcher, err := eng.Watch()
		if err != nil {
			slog.Warn("script watching unavailable", slog.Any("error", err))
		} else {
			defer watcher.Close()
		}
	}

	taskName := flag.Arg(0)
	if taskName == "" {
		repl.Start(eng, os.Stdin, os.Stdout)
		return
	}

	q, err := eng.RunTask(taskName, flag.Args()[1:]...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q.OnStop(func() {
		if queue.ActiveCount() == 0 {
			cancel()
		}
	})
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configureLogWriter() *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("quill version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: quill [options] <task> [defs...]

Options:
  -config <path>     Path to a TOML configuration file.
  -scripts <path>    Script directory (overrides the configured path).
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Quill loads the YAML script containers under the scripts directory and runs
the named task container on its heartbeat until every queue completes.

Examples:
  quill                             Start the interactive shell
  quill -log-level=debug my_task    Run my_task with debug logging enabled
  quill my_task one two             Run my_task with <[1]> and <[2]> defined

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
