package command

import (
	"fmt"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/db"
	"github.com/spf13/cobra"
)

type initResult struct {
	Initialized bool   `json:"initialized"`
	Path        string `json:"path"`
	DBPath      string `json:"db_path"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize quill in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			jsonMode, _ := cmd.Flags().GetBool("json")
			dir, _ := cmd.Flags().GetString("project")

			project, err := core.InitProject(dir, force)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			conn, err := db.OpenDatabase(project, 0)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := conn.Close(); err != nil {
				return writeCommandError(cmd, err)
			}

			result := initResult{Initialized: true, Path: project.Root, DBPath: project.DBPath}
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized quill in %s\n", project.Dir())
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "reinitialize, deleting the existing database")
	return cmd
}
