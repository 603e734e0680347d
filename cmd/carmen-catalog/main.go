package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carmensoftware/carmen-catalog/internal/api"
	"github.com/carmensoftware/carmen-catalog/internal/cache"
	"github.com/carmensoftware/carmen-catalog/pkg/config"
	"github.com/carmensoftware/carmen-catalog/pkg/debug"
	"github.com/carmensoftware/carmen-catalog/pkg/ui"
	"github.com/carmensoftware/carmen-catalog/pkg/version"
)

// The client satisfies the UI's remote surface; keep the two in sync.
var _ ui.Service = (*api.Client)(nil)
var _ ui.Snapshot = (*cache.Store)(nil)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: XDG config dir)")
	baseURL := flag.String("base-url", "", "API base URL (overrides config and CARMEN_API_URL)")
	token := flag.String("token", "", "API bearer token (overrides config and CARMEN_API_TOKEN)")
	offline := flag.Bool("offline", false, "Browse the cached snapshot without contacting the API")
	debugFlag := flag.Bool("debug", false, "Write debug logs (same as CARMEN_DEBUG=1)")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *debugFlag {
		debug.Enable()
	}

	if *help {
		fmt.Println("Usage: carmen-catalog [options]")
		fmt.Println("\nA TUI browser and editor for the Carmen product classification tree.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("carmen-catalog %s\n", version.Version)
		os.Exit(0)
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	cfg = cfg.Resolve(*baseURL, *token)

	if !*offline && cfg.API.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "No API base URL configured.")
		fmt.Fprintln(os.Stderr, "Set it with --base-url, CARMEN_API_URL, or in "+config.ConfigPath())
		os.Exit(2)
	}

	client := api.NewClient(api.ClientOpts{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
	})

	var snap ui.Snapshot
	store, err := cache.Open(config.SnapshotPath())
	if err != nil {
		// The snapshot is an optimization; run without it.
		debug.Error(err, "snapshot store unavailable")
	} else {
		snap = store
		defer store.Close()
	}

	if *offline && snap == nil {
		fmt.Fprintln(os.Stderr, "Offline mode requires a cached snapshot, and none could be opened.")
		os.Exit(2)
	}

	debug.Log("starting carmen-catalog %s (offline=%v)", version.Version, *offline)

	m := ui.NewModel(client, snap, cfg, *offline, ui.DefaultTheme(lipgloss.DefaultRenderer()))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
