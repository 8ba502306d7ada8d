package command

import (
	"fmt"

	"github.com/adamavenir/quill/internal/messaging"
	"github.com/spf13/cobra"
)

// NewReplyCmd creates the reply command.
func NewReplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply <msgid> <message>",
		Short: "Reply to a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			senderID, err := requireActor(cmd, ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			parent, err := ctx.Service.ResolveMessage(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			result, err := ctx.Service.Reply(ctx.Ctx, messaging.ReplyInput{
				ParentID: parent.ID,
				SenderID: senderID,
				Content:  joinContent(args[1:]),
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Replied to %s\n", result.Message.ID, parent.ID)
			return nil
		},
	}

	cmd.Flags().String("as", "", "sender")
	return cmd
}
