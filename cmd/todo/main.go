package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"git.sr.ht/~jakintosh/todo/internal/config"
	"git.sr.ht/~jakintosh/todo/internal/logging"
	"git.sr.ht/~jakintosh/todo/internal/store"
	"git.sr.ht/~jakintosh/todo/internal/tui"
	"git.sr.ht/~jakintosh/todo/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "todo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, rest, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	command := "serve"
	if len(rest) > 0 {
		command = rest[0]
	}

	// the terminal view owns the screen, so it only logs to a file
	var logOut io.Writer = os.Stderr
	if command == "tui" {
		logOut = io.Discard
	}
	logger, closeLog, err := logging.New(cfg.LoggingOptions(), logOut)
	if err != nil {
		return err
	}
	defer closeLog()

	// Initialize Store
	slot, closeSlot, err := openSlot(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeSlot()

	adapter, err := store.NewAdapter(slot, cfg.Storage.Key, logger)
	if err != nil {
		return err
	}
	tasks := store.NewTaskStore(adapter)
	if err := adapter.LoadErr(); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	logger.Debug("store ready", "driver", cfg.Storage.Driver, "key", adapter.Key(), "tasks", tasks.Len())

	switch command {
	case "serve":
		return serve(cfg.Addr, tasks, logger)
	case "tui":
		_, err := tea.NewProgram(tui.New(tasks), tea.WithAltScreen()).Run()
		return err
	default:
		return fmt.Errorf("unknown command %q (want serve or tui)", command)
	}
}

func serve(addr string, tasks *store.TaskStore, logger *log.Logger) error {
	srv, err := web.NewServer(tasks, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	logger.Info("starting server", "addr", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func openSlot(cfg config.StorageConfig) (store.Slot, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemorySlot(), func() error { return nil }, nil
	default:
		slot, err := store.NewSQLiteSlot(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
		}
		return slot, slot.Close, nil
	}
}
