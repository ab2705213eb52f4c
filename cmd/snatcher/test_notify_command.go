package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Check the configured notifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager(cmd.Context())
			if err != nil {
				return err
			}
			if err := manager.TestNotifiers(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Notifiers OK")
			return nil
		},
	}
}
