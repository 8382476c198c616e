package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arjunpatel/ghboard/internal/config"
	"github.com/arjunpatel/ghboard/internal/discovery"
	"github.com/arjunpatel/ghboard/internal/edit"
	"github.com/arjunpatel/ghboard/internal/events"
	"github.com/arjunpatel/ghboard/internal/ghclient"
	"github.com/arjunpatel/ghboard/internal/store"
	"github.com/arjunpatel/ghboard/internal/sync"
	"github.com/arjunpatel/ghboard/internal/tui"
)

// exit codes per spec.md §6.
const (
	exitOK            = 0
	exitMissingToken  = 1
	exitInvalidConfig = 2
)

func defaultGhboardDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ghboard")
}

func defaultDBPath() string {
	return filepath.Join(defaultGhboardDir(), "tasks.db")
}

func runGhboard(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db")
	discoverOnly, _ := cmd.Flags().GetBool("discover")
	noUI, _ := cmd.Flags().GetBool("no-ui")

	if configPath == "" {
		fmt.Fprintln(os.Stderr, "ghboard: --config is required")
		os.Exit(exitInvalidConfig)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ghboard: invalid config: %v\n", err)
		os.Exit(exitInvalidConfig)
	}

	mockFetch := os.Getenv("MOCK_FETCH") == "1"
	token := resolveToken()
	needsNetwork := discoverOnly || !mockFetch
	if needsNetwork && token == "" {
		fmt.Fprintln(os.Stderr, "ghboard: GITHUB_TOKEN (or TOKEN) is required for this operation")
		os.Exit(exitMissingToken)
	}

	client := ghclient.New(token, ghclient.DefaultOptions())

	if discoverOnly {
		return runDiscover(cfg, client)
	}

	if err := os.MkdirAll(defaultGhboardDir(), 0o755); err != nil {
		return fmt.Errorf("create ghboard home: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	cache, err := discovery.Load(filepath.Join(defaultGhboardDir(), "discovery.json"))
	if err != nil {
		return fmt.Errorf("load discovery cache: %w", err)
	}

	engine := sync.NewEngine(client, cache)
	sink := events.NewSink(64)
	coord := edit.NewCoordinator(st, client, sink)

	if noUI {
		return runOnce(cfg, st, engine, mockFetch)
	}

	uistatePath := filepath.Join(defaultGhboardDir(), "uistate.json")
	model := tui.New(cfg, st, client, engine, coord, sink, uistatePath, false, mockFetch)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// runDiscover implements SPEC_FULL.md §7.1's --discover mode.
func runDiscover(cfg *config.Config, client *ghclient.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seen := map[string]bool{}
	for _, p := range cfg.Projects {
		key := p.OwnerType + ":" + p.Owner
		if seen[key] {
			continue
		}
		seen[key] = true

		projects, err := client.DiscoverOpenProjects(ctx, p.OwnerType, p.Owner)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ghboard: discover %s %s: %v\n", p.OwnerType, p.Owner, err)
			continue
		}
		fmt.Printf("%s/%s:\n", p.OwnerType, p.Owner)
		for _, proj := range projects {
			fmt.Printf("  #%-4d %s\n", proj.Number, proj.Title)
		}
	}
	return nil
}

// runOnce implements --no-ui: sync exactly once and print a summary.
func runOnce(cfg *config.Config, st *store.Store, engine *sync.Engine, mockFetch bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var result sync.FetchResult
	if mockFetch {
		result = sync.FetchResult{Rows: sync.GenerateMockTasks(cfg)}
	} else {
		r, err := engine.Fetch(ctx, cfg, false, func(done, total int, status string) {
			fmt.Printf("\r%s", status)
		})
		if err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		result = r
	}
	fmt.Println()

	if len(result.Rows) > 0 {
		if err := st.UpsertMany(ctx, result.Rows); err != nil {
			return fmt.Errorf("commit rows: %w", err)
		}
	}
	if result.Partial {
		fmt.Printf("ghboard: partial sync — %s\n", result.Message)
	}
	fmt.Printf("ghboard: synced %d item(s)\n", len(result.Rows))
	return nil
}
