package command

import (
	"fmt"

	"github.com/adamavenir/quill/internal/messaging"
	"github.com/spf13/cobra"
)

// NewEditCmd creates the edit command.
func NewEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <msgid> <message>",
		Short: "Edit a message; the previous content is archived",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			editorID, err := requireActor(cmd, ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			msg, err := ctx.Service.ResolveMessage(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}

			result, err := ctx.Service.EditMessage(ctx.Ctx, messaging.EditInput{
				MessageID: msg.ID,
				EditorID:  editorID,
				Content:   joinContent(args[1:]),
			})
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			if result.Archived == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No change to %s\n", msg.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Edited %s (previous version %s)\n", msg.ID, result.Archived.ID)
			return nil
		},
	}

	cmd.Flags().String("as", "", "editor")
	return cmd
}
