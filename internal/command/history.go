package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <msgid>",
		Short: "Show previous versions of an edited message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			msg, err := ctx.Service.ResolveMessage(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			history, err := ctx.Service.History(ctx.Ctx, msg.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				payload := map[string]any{"message": msg, "history": history}
				if history == nil {
					payload["history"] = []any{}
				}
				return writeJSON(cmd.OutOrStdout(), payload)
			}

			out := cmd.OutOrStdout()
			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if len(history) == 0 {
				fmt.Fprintf(out, "%s has never been edited\n", f.shortID(msg.ID))
				return nil
			}
			for i, entry := range history {
				editor := "unknown"
				if entry.EditedBy != nil {
					editor = f.name(*entry.EditedBy)
				}
				fmt.Fprintf(out, "v%d %s%s%s  %s  (replaced by %s %s)\n", i+1, dim, entry.ID, reset, entry.OldContent, editor, f.when(entry.ArchivedAt))
			}
			fmt.Fprintf(out, "now %s\n", msg.Content)
			return nil
		},
	}

	return cmd
}
