// Command pipescope is an interactive terminal explorer for data-pipeline
// dependency graphs. It loads a manifest artifact, lays the graph out in
// layers, and lets you navigate, search, filter, and run nodes without
// leaving the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"pipescope/internal/runstore"
	"pipescope/pkg/config"
	"pipescope/pkg/layout"
	"pipescope/pkg/loader"
	"pipescope/pkg/ui"
	"pipescope/pkg/watcher"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pipescope:", err)
		os.Exit(1)
	}
}

func run() error {
	projectDir := flag.String("project-dir", ".", "pipeline project directory")
	manifestPath := flag.String("manifest", "", "manifest path (default <project-dir>/target/manifest.json)")
	configPath := flag.String("config", "", "config file (default XDG location)")
	noWatch := flag.Bool("no-watch", false, "disable artifact file watching")
	flag.Parse()

	// Debug logging goes to a file, never to the terminal we draw on.
	if logPath := os.Getenv("PIPESCOPE_LOG"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; pipescope is interactive only")
	}

	var (
		cfg config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	dir, err := filepath.Abs(*projectDir)
	if err != nil {
		return err
	}
	manifest := *manifestPath
	if manifest == "" {
		manifest = filepath.Join(dir, "target", "manifest.json")
	}

	g, err := loader.LoadManifest(manifest, loader.ParseOptions{
		WarningHandler: func(msg string) { log.Printf("manifest: %s", msg) },
	})
	if err != nil {
		return err
	}
	if g.Len() == 0 {
		return fmt.Errorf("manifest %s defines no nodes", manifest)
	}

	l, err := layout.Compute(g)
	if err != nil {
		return fmt.Errorf("cannot lay out graph: %w", err)
	}

	store := runstore.New(dir)
	if err := store.Reload(g); err != nil {
		log.Printf("initial status load: %v", err)
	}

	var w *watcher.Watcher
	if !*noWatch {
		w, err = watcher.New(store.ArtifactPath())
		if err != nil {
			log.Printf("watcher setup: %v", err)
		} else if err := w.Start(); err != nil {
			log.Printf("watcher start: %v", err)
			w = nil
		}
	}

	m := ui.New(g, l, store, w, cfg, dir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
