package command

import (
	"github.com/spf13/cobra"
)

// NewThreadCmd creates the thread command.
func NewThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thread <msgid>",
		Short: "Show a message with every reply beneath it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			root, err := ctx.Service.ResolveMessage(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			thread, err := ctx.Service.Thread(ctx.Ctx, root.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), thread)
			}

			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			f.thread(cmd.OutOrStdout(), thread, 0)
			return nil
		},
	}

	return cmd
}
