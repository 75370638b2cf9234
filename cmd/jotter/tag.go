package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag registry",
	}
	cmd.AddCommand(newTagListCmd(a), newTagRmCmd(a))
	return cmd
}

func newTagListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known tags in collation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer ws.Close()

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ws.Tags.List())
			}
			for _, t := range ws.Tags.List() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTagRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [name]",
		Short: "Remove a tag from the registry; notes keep it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer ws.Close()

			if !ws.Tags.Has(args[0]) {
				return errNotFound("tag", args[0])
			}
			ws.Tags.Remove(ctx, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Tag removed: %s\n", args[0])
			return nil
		},
	}
}
