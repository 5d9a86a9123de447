package cli

import (
	"github.com/spf13/cobra"

	"medilog/internal/core"
)

func init() {
	list := &cobra.Command{
		Use:   "medications",
		Short: "List the medication catalog",
		Run:   runMedications,
	}
	RootCmd.AddCommand(list)

	add := &cobra.Command{
		Use:   "add-medication <name>",
		Short: "Add or update a catalog medication",
		Args:  cobra.ExactArgs(1),
		Run:   runAddMedication,
	}
	add.Flags().String("id", "", "Existing medication id to update")
	add.Flags().String("units", "", "Dose units, e.g. mg or ml")
	add.Flags().Bool("antipyretic", false, "Mark as fever-reducing")
	add.Flags().String("ingredient", "", "Active ingredient")
	RootCmd.AddCommand(add)

	del := &cobra.Command{
		Use:   "delete-medication <id>",
		Short: "Delete a catalog medication that no record references",
		Args:  cobra.ExactArgs(1),
		Run:   runDeleteMedication,
	}
	RootCmd.AddCommand(del)
}

func runMedications(cmd *cobra.Command, args []string) {
	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	printJSON(svc.Medications(cmd.Context()))
}

func runAddMedication(cmd *cobra.Command, args []string) {
	in := core.MedicationInput{Name: args[0]}
	in.ID, _ = cmd.Flags().GetString("id")
	in.IsAntipyretic, _ = cmd.Flags().GetBool("antipyretic")
	if cmd.Flags().Changed("units") {
		v, _ := cmd.Flags().GetString("units")
		in.Units = &v
	}
	if cmd.Flags().Changed("ingredient") {
		v, _ := cmd.Flags().GetString("ingredient")
		in.ActiveIngredient = &v
	}

	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	med, err := svc.AddOrUpdateMedication(cmd.Context(), in)
	if err != nil {
		exitErr("add medication", err)
	}
	printJSON(med)
}

func runDeleteMedication(cmd *cobra.Command, args []string) {
	svc, err := openService(cmd.Context(), nil)
	if err != nil {
		exitErr("open data dir", err)
	}
	if err := svc.DeleteMedication(cmd.Context(), args[0]); err != nil {
		exitErr("delete medication", err)
	}
}
