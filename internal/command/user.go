package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUserCmd creates the user command group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserAddCmd(), newUserLsCmd(), newUserRmCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			user, err := ctx.Service.CreateUser(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created @%s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}

func newUserLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			users, err := ctx.Service.ListUsers(ctx.Ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				if users == nil {
					return writeJSON(cmd.OutOrStdout(), []any{})
				}
				return writeJSON(cmd.OutOrStdout(), users)
			}

			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users")
				return nil
			}
			for _, user := range users {
				unread, err := ctx.Service.UnreadCount(ctx.Ctx, user.ID)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				fmt.Fprintf(out, "@%s %s%s%s  %d unread\n", user.Username, dim, user.ID, reset, unread)
			}
			return nil
		},
	}
}

func newUserRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <user>",
		Short: "Delete a user with all of their messages, notifications and edit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			user, err := ctx.Service.ResolveUser(ctx.Ctx, args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			report, err := ctx.Service.DeleteUser(ctx.Ctx, user.ID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted @%s: %s, %s, %s\n",
				user.Username,
				pluralize(report.Messages, "message"),
				pluralize(report.Notifications, "notification"),
				pluralize(report.History, "archived edit"),
			)
			return nil
		},
	}
}
