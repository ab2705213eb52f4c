package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent snatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager(cmd.Context())
			if err != nil {
				return err
			}
			snatches, err := manager.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(snatches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snatches yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tNAME\tPROVIDER\tMETHOD")
			for _, s := range snatches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.SnatchedAt.Local().Format("2006-01-02 15:04"), s.Name, s.Provider, s.Method)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of snatches to show")
	return cmd
}
