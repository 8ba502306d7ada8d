package command

import (
	"fmt"

	"github.com/adamavenir/quill/internal/messaging"
	"github.com/spf13/cobra"
)

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <user> <message>",
		Short: "Send a direct message",
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
			receiver, err := ctx.Service.ResolveUser(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			result, err := ctx.Service.SendMessage(ctx.Ctx, messaging.SendInput{
				SenderID:   senderID,
				ReceiverID: receiver.ID,
				Content:    joinContent(args[1:]),
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] Sent to @%s\n", result.Message.ID, receiver.Username)
			return nil
		},
	}

	cmd.Flags().String("as", "", "sender")
	return cmd
}
