package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConversationCmd creates the conversation command.
func NewConversationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversation <user> <user>",
		Aliases: []string{"between"},
		Short:   "Show every message between two users, oldest first",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			a, err := ctx.Service.ResolveUser(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			b, err := ctx.Service.ResolveUser(ctx.Ctx, args[1])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			messages, err := ctx.Service.Conversation(ctx.Ctx, a.ID, b.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), messages)
			}

			out := cmd.OutOrStdout()
			if len(messages) == 0 {
				fmt.Fprintf(out, "No messages between @%s and @%s\n", a.Username, b.Username)
				return nil
			}
			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			for _, msg := range messages {
				fmt.Fprintln(out, f.message(msg))
			}
			return nil
		},
	}

	return cmd
}
