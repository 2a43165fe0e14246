package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/snake/internal/config"
	"github.com/tomz197/snake/internal/input"
	"github.com/tomz197/snake/internal/loop"
	gameconfig "github.com/tomz197/snake/internal/loop/config"
	"github.com/tomz197/snake/internal/persist"
	"github.com/tomz197/snake/internal/snake"
)

var version = "dev"

func main() {
	printBoard := flag.Bool("print", false, "print the leaderboard stored in this executable and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	switch {
	case *showVersion:
		fmt.Println(version)
		return
	case *printBoard:
		if err := printLeaderboard(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "snake: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(1)
	}
}

func printLeaderboard(w io.Writer) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	table, err := persist.ReadTable(exe)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, loop.RenderLeaderboard(table))
	return err
}

// newLogger opens the log destination. The terminal is in raw mode while
// the game runs, so without a log file everything is discarded.
func newLogger(s config.Settings) (*log.Logger, func() error, error) {
	if s.LogFile == "" {
		logger := log.New(io.Discard)
		logger.SetLevel(s.LogLevel)
		return logger, func() error { return nil }, nil
	}
	f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           s.LogLevel,
		Prefix:          "snake",
		ReportTimestamp: true,
	})
	return logger, f.Close, nil
}

func run() (err error) {
	settings, problems := config.Load(config.Settings{
		Tick:        gameconfig.TickRate,
		BordersKill: gameconfig.BordersKill,
		LogLevel:    log.InfoLevel,
	})
	logger, closeLog, err := newLogger(settings)
	if err != nil {
		return err
	}
	defer closeLog()
	for _, p := range problems {
		logger.Warn("ignoring malformed setting", "err", p)
	}

	// Deferred before raw mode, so the save runs after the terminal is
	// restored, panics included.
	store, err := persist.Open(persist.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("open leaderboard: %w", err)
	}
	defer func() {
		if ferr := store.Flush(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("save leaderboard: %w", ferr))
		}
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close leaderboard", "err", cerr)
		}
	}()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	c := loop.NewController(loop.Options{
		Table: store.Table(),
		Game: snake.Config{
			Playground:    gameconfig.Playground,
			BordersKill:   settings.BordersKill,
			InitialLength: gameconfig.InitialLength,
			Step:          gameconfig.Step,
		},
		Tick:   settings.Tick,
		Logger: logger,
	})
	logger.Info("game started", "tick", settings.Tick, "borders_kill", settings.BordersKill)

	stream := input.StartStream(bufio.NewReader(os.Stdin))
	return loop.Run(ctx, c, stream, os.Stdout, loop.RunOptions{})
}
