package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewNotificationsCmd creates the notifications command.
func NewNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notifications, newest first",
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
			unreadOnly, _ := cmd.Flags().GetBool("unread")
			notifications, err := ctx.Service.Notifications(ctx.Ctx, userID, unreadOnly)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), notifications)
			}

			out := cmd.OutOrStdout()
			if len(notifications) == 0 {
				fmt.Fprintln(out, "No notifications")
				return nil
			}
			f, err := newContextFormatter(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			for _, n := range notifications {
				marker := " "
				if !n.Read {
					marker = cyan + "*" + reset
				}
				fmt.Fprintf(out, "%s %s%s%s %s %s(%s, %s)%s\n", marker, dim, n.ID, reset, n.Text, dim, f.shortID(n.MessageID), f.when(n.CreatedAt), reset)
			}
			return nil
		},
	}

	cmd.Flags().String("as", "", "user whose notifications to show")
	cmd.Flags().Bool("unread", false, "only unread notifications")
	cmd.AddCommand(newNotificationsAckCmd())
	return cmd
}

func newNotificationsAckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ack <notification-id>",
		Short: "Mark a notification as read",
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
			notification, err := ctx.Service.MarkNotificationRead(ctx.Ctx, args[0], userID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), notification)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", notification.ID)
			return nil
		},
	}

	cmd.Flags().String("as", "", "notification target")
	return cmd
}
