package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReadCmd creates the read command.
func NewReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <msgid>...",
		Short: "Mark messages as read",
		Args:  cobra.MinimumNArgs(1),
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

			read := make([]string, 0, len(args))
			for _, ref := range args {
				msg, err := ctx.Service.ResolveMessage(ctx.Ctx, ref)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if _, err := ctx.Service.MarkRead(ctx.Ctx, msg.ID, userID); err != nil {
					return writeCommandError(cmd, err)
				}
				read = append(read, msg.ID)
			}

			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"read": read})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s read\n", pluralize(int64(len(read)), "message"))
			return nil
		},
	}

	cmd.Flags().String("as", "", "receiving user")
	return cmd
}
