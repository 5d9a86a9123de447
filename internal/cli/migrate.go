package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"medilog/internal/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the legacy medication migration for a data directory",
		Long:  "Loads every person record file, maps free-text medication names onto catalog entries and rewrites the files. Safe to re-run: a marker file makes the migration a no-op once it has completed.",
		Run:   runMigrate,
	}
	cmd.Flags().String("persons", "", "Additional person ids to load, comma-separated (record files are always discovered)")
	RootCmd.AddCommand(cmd)
}

func runMigrate(cmd *cobra.Command, args []string) {
	dir := resolveDataDir()
	personsFlag, _ := cmd.Flags().GetString("persons")

	// Always load every discovered store: the marker is written once, so a
	// partial run would strand legacy fields in the files it skipped.
	persons, err := discoverPersons(dir)
	if err != nil {
		exitErr("discover persons", err)
	}
	known := make(map[string]bool, len(persons))
	for _, p := range persons {
		known[p] = true
	}
	for _, p := range splitPersons(personsFlag) {
		if !known[p] {
			persons = append(persons, p)
			known[p] = true
		}
	}

	// Setup runs the migration itself when the marker is absent.
	coordinator := core.NewCoordinator(dir, persons)
	if err := coordinator.Setup(cmd.Context()); err != nil {
		exitErr("migrate", err)
	}
	if core.MigrationComplete(dir) {
		fmt.Println("migration complete")
	} else {
		fmt.Println("migration did not run")
	}
}
