package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInboxCmd creates the inbox command.
func NewInboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show threads started with you, newest first",
		Args:  cobra.NoArgs,
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
			entries, err := ctx.Service.Inbox(ctx.Ctx, userID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Inbox empty")
				return nil
			}
			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			for _, entry := range entries {
				fmt.Fprintln(out, f.message(entry.Message))
				for _, reply := range entry.Replies {
					fmt.Fprintf(out, "  └ %s\n", f.message(reply))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("as", "", "user whose inbox to show")
	return cmd
}
