package cli

import (
	"time"

	"github.com/spf13/cobra"

	"medilog/internal/core"
)

func init() {
	list := &cobra.Command{
		Use:   "records <person>",
		Short: "List a person's observation records, newest first",
		Args:  cobra.ExactArgs(1),
		Run:   runRecords,
	}
	RootCmd.AddCommand(list)

	add := &cobra.Command{
		Use:   "add-record <person>",
		Short: "Add an observation record for a person",
		Args:  cobra.ExactArgs(1),
		Run:   runAddRecord,
	}
	add.Flags().String("datetime", "", "Observation time, RFC 3339 (default: now)")
	add.Flags().Float64("temperature", 0, "Body temperature")
	add.Flags().String("medication", "", "Medication id from the catalog")
	add.Flags().Float64("amount", 1, "Medication amount")
	add.Flags().String("note", "", "Free-form note")
	RootCmd.AddCommand(add)

	del := &cobra.Command{
		Use:   "delete-record <person> <record-id>",
		Short: "Delete one of a person's records",
		Args:  cobra.ExactArgs(2),
		Run:   runDeleteRecord,
	}
	RootCmd.AddCommand(del)
}

func runRecords(cmd *cobra.Command, args []string) {
	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	printJSON(svc.Records(cmd.Context(), args[0]))
}

func runAddRecord(cmd *cobra.Command, args []string) {
	person := args[0]
	datetime, _ := cmd.Flags().GetString("datetime")
	if datetime == "" {
		datetime = time.Now().Format(time.RFC3339)
	}

	in := core.RecordInput{PersonID: person, Datetime: datetime}
	if cmd.Flags().Changed("temperature") {
		v, _ := cmd.Flags().GetFloat64("temperature")
		in.Temperature = &v
	}
	if cmd.Flags().Changed("medication") {
		v, _ := cmd.Flags().GetString("medication")
		in.MedicationID = &v
	}
	if cmd.Flags().Changed("amount") {
		v, _ := cmd.Flags().GetFloat64("amount")
		in.MedicationAmount = &v
	}
	if cmd.Flags().Changed("note") {
		v, _ := cmd.Flags().GetString("note")
		in.Note = &v
	}

	svc, err := openService(cmd.Context(), []string{person})
	if err != nil {
		exitErr("open data dir", err)
	}
	if err := svc.AddOrUpdateRecord(cmd.Context(), in); err != nil {
		exitErr("add record", err)
	}
	printJSON(svc.Records(cmd.Context(), person))
}

func runDeleteRecord(cmd *cobra.Command, args []string) {
	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	if err := svc.DeleteRecord(cmd.Context(), args[0], args[1]); err != nil {
		exitErr("delete record", err)
	}
}
