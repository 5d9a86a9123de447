package cli

import (
	"github.com/spf13/cobra"

	"medilog/internal/journal"
)

func init() {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent service operations from the journal",
		Run:   runJournal,
	}
	cmd.Flags().IntP("limit", "l", 20, "Max entries")
	RootCmd.AddCommand(cmd)
}

func runJournal(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := journal.Open()
	if err != nil {
		exitErr("open journal", err)
	}
	defer func() { _ = j.Close() }()

	entries, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		exitErr("read journal", err)
	}
	printJSON(entries)
}
