package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "quill"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Quill - threaded direct messages",
		Long:          "Quill is a direct-messaging CLI with reply threads, notifications and edit history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("project", "", "project directory (defaults to the nearest .quill)")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")
	cmd.PersistentFlags().Bool("metrics", false, "print Prometheus metrics after the command")

	cmd.AddCommand(
		NewInitCmd(),
		NewUserCmd(),
		NewSendCmd(),
		NewReplyCmd(),
		NewEditCmd(),
		NewInboxCmd(),
		NewUnreadCmd(),
		NewReadCmd(),
		NewThreadCmd(),
		NewHistoryCmd(),
		NewNotificationsCmd(),
		NewConversationCmd(),
		NewRmCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
