package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPropersCommand(ctx *commandContext) *cobra.Command {
	var sinceFlag string

	cmd := &cobra.Command{
		Use:   "propers",
		Short: "List proper and repack releases",
		RunE: func(cmd *cobra.Command, args []string) error {
			since, err := parseSince(sinceFlag)
			if err != nil {
				return err
			}
			manager, err := ctx.ensureManager(cmd.Context())
			if err != nil {
				return err
			}

			propers := manager.FindPropers(cmd.Context(), since)
			if len(propers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No propers found")
				return nil
			}
			for _, p := range propers {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", p.Date.Format("2006-01-02 15:04"), p.Name, p.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Only list propers published after this date (YYYY-MM-DD)")
	return cmd
}

func parseSince(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	since, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q, expected YYYY-MM-DD", value)
	}
	return since, nil
}
