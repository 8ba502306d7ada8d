package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRmCmd creates the rm command.
func NewRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <msgid>",
		Short: "Delete a message and every reply beneath it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			userID, err := requireActor(cmd, ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			msg, err := ctx.Service.ResolveMessage(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			report, err := ctx.Service.DeleteMessage(ctx.Ctx, msg.ID, userID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				payload := map[string]any{"id": msg.ID, "deleted": true, "report": report}
				return writeJSON(cmd.OutOrStdout(), payload)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", msg.ID, pluralize(report.Messages, "message"))
			return nil
		},
	}

	cmd.Flags().String("as", "", "participant deleting the message")
	return cmd
}
