package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/hnreader/internal/app"
	"github.com/abelbrown/hnreader/internal/config"
	"github.com/abelbrown/hnreader/internal/coord"
	"github.com/abelbrown/hnreader/internal/fetch"
	"github.com/abelbrown/hnreader/internal/logging"
	"github.com/abelbrown/hnreader/internal/model"
	"github.com/abelbrown/hnreader/internal/store"
	"github.com/abelbrown/hnreader/internal/ui"
	"github.com/abelbrown/hnreader/internal/work"
)

// fetchWorkers bounds concurrent category fetches.
const fetchWorkers = 4

type options struct {
	dataDir  string
	category string
	debug    bool
}

// newRootCommand creates the root command.
func newRootCommand(version string) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:           "hnreader",
		Short:         "Read Hacker News in the terminal",
		Long:          "hnreader browses the Hacker News front page categories and keeps a local list of favorite stories.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := model.ParseCategory(opts.category)
			if err != nil {
				return err
			}
			if opts.dataDir == "" {
				dir, err := defaultDataDir()
				if err != nil {
					return err
				}
				opts.dataDir = dir
			}
			return run(cmd.Context(), opts, cat)
		},
	}

	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory for favorites, config and logs (default ~/.hnreader)")
	cmd.Flags().StringVar(&opts.category, "category", "top", "initial category: top, new, best, ask, show, jobs")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	return cmd
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".hnreader"), nil
}

// run wires the components together and blocks until the UI exits.
func run(ctx context.Context, opts options, cat model.Category) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := os.MkdirAll(opts.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := logging.Init(opts.dataDir, opts.debug); err != nil {
		// Not fatal; logging helpers are no-ops without a logger.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer logging.Close()

	// Without durable storage favorites cannot work, so this is fatal.
	dbPath := filepath.Join(opts.dataDir, "favorites.db")
	st, err := store.Open(dbPath)
	if err != nil {
		logging.Error("Failed to open favorites store", "error", err)
		return fmt.Errorf("failed to open favorites store: %w", err)
	}
	defer st.Close()
	if n, err := st.Count(); err == nil {
		logging.Info("Favorites store opened", "path", dbPath, "favorites", n)
	}

	cfg, err := config.Load(config.ConfigPath(opts.dataDir))
	if err != nil {
		logging.Warn("Using default config", "error", err)
	}

	pool := work.NewPool(fetchWorkers)
	pool.Start(ctx)
	defer pool.Stop()

	events := pool.Subscribe()
	defer pool.Unsubscribe(events)

	client := fetch.NewClient(fetch.DefaultOptions())
	coordinator := coord.New(client, pool)

	state := app.New(coordinator, st)
	if err := state.LoadFavorites(); err != nil {
		logging.Error("Failed to load favorites", "error", err)
		return err
	}
	state.SelectCategory(cat)

	p := tea.NewProgram(ui.NewApp(state, cfg, events, pool), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	if coordinator.Pending() {
		logging.Info("Exiting with a fetch in flight", "category", state.Category())
	}
	return nil
}
