// OttoBrew: a brewery catalog of recipes and ingredients.
//
// Usage:
//
//	ottobrew [-config file] [-data file] [-verbose] [-quiet] [command ...]
//
// With no command the interactive shell starts. A command given on the
// command line runs once with literal arguments, e.g.
//
//	ottobrew add ingredient "Lúpulo Cascade | Fornecedor B | 15.99 | 12/2025 | 50"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottobrew/internal/config"
	"github.com/hammamikhairi/ottobrew/internal/conversation"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/repository"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file (default: ottobrew.yaml in . or ~/.config/ottobrew)")
	dataFile := flag.String("data", "", "catalog file, overrides data_file (use \":memory:\" for a scratch catalog)")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}

	logLevel := cfg.Level()
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the shell stays clean.
	logOut, closeLog := openLog(cfg.LogFile)
	defer closeLog()

	// Redirect Go's default log package to the same output so third-party
	// libraries don't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, location := openStore(cfg, log)
	repo, err := repository.Open(ctx, store, log,
		repository.WithCorruptionPolicy(cfg.CorruptionPolicy()),
		repository.WithRollbackOnSaveFailure(cfg.RollbackOnSaveFailure),
	)
	if err != nil {
		log.Error("opening catalog: %v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if flag.NArg() > 0 {
		out := plainOutput{
			printf: func(format string, a ...interface{}) { fmt.Fprintf(os.Stdout, format, a...) },
			errorf: func(format string, a ...interface{}) { fmt.Fprintf(os.Stderr, format, a...) },
		}
		app := newCLIApp(repo, out, nil, log)
		return app.runOnce(ctx, strings.Join(flag.Args(), " "))
	}

	return runShell(ctx, cancel, repo, location, log)
}

// runShell hands the terminal to Bubble Tea and runs the command loop in
// the background.
func runShell(ctx context.Context, cancel context.CancelFunc, repo *repository.Repository, location string, log *logger.Logger) int {
	ui := display.NewUI(repo, location)
	lines := conversation.ChanSource(ui.InputChan())
	prompter := conversation.NewPrompter(lines, func(format string, a ...interface{}) {
		ui.PrintChat(fmt.Sprintf(format, a...))
	}, log)
	app := newCLIApp(repo, ui, prompter, log)

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Catalog: " + location))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx, lines)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
		cancel()
		return 1
	}
	cancel()
	return 0
}

// openStore picks the catalog backend and returns it with a label for the
// status bar.
func openStore(cfg *config.Config, log *logger.Logger) (domain.SnapshotStore, string) {
	if cfg.InMemory() {
		log.Info("using in-memory catalog; nothing will be written to disk")
		return storage.NewMemoryStore(log), "in-memory"
	}
	fs := storage.NewFileStore(cfg.DataFile, log)
	return fs, filepath.Base(fs.Path())
}

// openLog opens the log destination. "stderr" or an empty path logs to the
// console; a file that cannot be opened falls back to stderr.
func openLog(path string) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return os.Stderr, func() {}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { f.Close() }
}
