// Package cli implements the medilogctl operator commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"medilog/internal/core"
	"medilog/internal/journal"
)

var dataDir string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "medilogctl",
	Short: "Inspect and maintain a medilog data directory",
	Long:  "Operator tooling for medilog: list persons, records and medications, and run the legacy medication migration against a data directory.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (default: $MEDILOG_DATA_DIR or .)")
}

func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if env := os.Getenv("MEDILOG_DATA_DIR"); env != "" {
		return env
	}
	return "."
}

// discoverPersons lists the person identifiers whose record files exist in
// the data directory, taken from each file's own entity field.
func discoverPersons(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "medilog_*.json"))
	if err != nil {
		return nil, err
	}
	var persons []string
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var doc struct {
			Entity string `json:"entity"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil || doc.Entity == "" {
			continue
		}
		persons = append(persons, doc.Entity)
	}
	sort.Strings(persons)
	return persons, nil
}

// openService loads every discovered person plus any extra requested ones.
// Loading all known stores matters: the one-shot migration runs during
// Setup and must see every record file before the marker is written.
func openService(ctx context.Context, extra []string) (*core.Service, error) {
	dir := resolveDataDir()
	persons, err := discoverPersons(dir)
	if err != nil {
		return nil, fmt.Errorf("discover persons: %w", err)
	}
	known := make(map[string]bool, len(persons))
	for _, p := range persons {
		known[p] = true
	}
	for _, p := range extra {
		if !known[p] {
			persons = append(persons, p)
			known[p] = true
		}
	}
	coordinator := core.NewCoordinator(dir, persons)
	if err := coordinator.Setup(ctx); err != nil {
		return nil, fmt.Errorf("setup %s: %w", dir, err)
	}
	opts := []core.ServiceOption{}
	if j, err := journal.Open(); err == nil {
		opts = append(opts, core.WithAuditRecorder(core.NewJournalAuditRecorder(j, nil)))
	}
	return core.NewService(coordinator, opts...), nil
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func splitPersons(s string) []string {
	var persons []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			persons = append(persons, p)
		}
	}
	return persons
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
