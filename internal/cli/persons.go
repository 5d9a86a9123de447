package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "persons",
		Short: "List tracked persons with their most recent record",
		Run:   runPersons,
	}

	RootCmd.AddCommand(cmd)
}

func runPersons(cmd *cobra.Command, args []string) {
	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	printJSON(svc.PersonList(cmd.Context()))
}
