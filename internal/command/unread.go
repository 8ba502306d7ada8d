package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUnreadCmd creates the unread command.
func NewUnreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Show unread messages, newest first",
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

			countOnly, _ := cmd.Flags().GetBool("count")
			if countOnly {
				count, err := ctx.Service.UnreadCount(ctx.Ctx, userID)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if ctx.JSONMode {
					return writeJSON(cmd.OutOrStdout(), map[string]int64{"unread": count})
				}
				fmt.Fprintln(cmd.OutOrStdout(), count)
				return nil
			}

			messages, err := ctx.Service.Unread(ctx.Ctx, userID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), messages)
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintln(out, "No unread messages")
				return nil
			}
			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			for _, msg := range messages {
				fmt.Fprintln(out, f.unread(msg))
			}
			return nil
		},
	}

	cmd.Flags().String("as", "", "receiving user")
	cmd.Flags().Bool("count", false, "print only the number of unread messages")
	return cmd
}
