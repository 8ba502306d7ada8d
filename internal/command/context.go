package command

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CommandContext provides shared command resources.
type CommandContext struct {
	Ctx      context.Context
	DB       *sql.DB
	Project  core.Project
	Config   *core.Config
	Logger   *zap.Logger
	Service  *messaging.Service
	Registry *prometheus.Registry
	JSONMode bool

	metricsOut io.Writer
}

// GetContext resolves the project, config, logger and store for a command.
func GetContext(cmd *cobra.Command) (*CommandContext, error) {
	projectDir, _ := cmd.Flags().GetString("project")
	jsonMode, _ := cmd.Flags().GetBool("json")
	showMetrics, _ := cmd.Flags().GetBool("metrics")

	project, err := core.DiscoverProject(projectDir)
	if err != nil {
		return nil, err
	}
	config, err := core.LoadConfig(project)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := core.NewLogger(config.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	var conn *sql.DB
	if config.DBPath == "" || config.DBPath == project.DBPath {
		conn, err = db.OpenDatabase(project, config.BusyTimeout)
	} else {
		conn, err = db.Open(config.DBPath, config.BusyTimeout)
	}
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	service := messaging.New(conn, messaging.Options{
		Logger:               logger,
		Metrics:              messaging.NewMetrics(registry),
		NotificationTemplate: config.Notification.Template,
	})

	ctx := &CommandContext{
		Ctx:      cmd.Context(),
		DB:       conn,
		Project:  project,
		Config:   config,
		Logger:   logger,
		Service:  service,
		Registry: registry,
		JSONMode: jsonMode,
	}
	if ctx.Ctx == nil {
		ctx.Ctx = context.Background()
	}
	if showMetrics {
		ctx.metricsOut = cmd.OutOrStdout()
	}
	return ctx, nil
}

// Close releases the store and, with --metrics, prints the registry.
func (c *CommandContext) Close() error {
	_ = c.Logger.Sync()
	if c.metricsOut != nil {
		if err := writeMetrics(c.metricsOut, c.Registry); err != nil {
			_ = c.DB.Close()
			return err
		}
	}
	return c.DB.Close()
}

func writeMetrics(out io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(out, family); err != nil {
			return err
		}
	}
	return nil
}

// requireActor resolves the --as flag to a user.
func requireActor(cmd *cobra.Command, ctx *CommandContext) (string, error) {
	ref, _ := cmd.Flags().GetString("as")
	if ref == "" {
		return "", fmt.Errorf("--as is required")
	}
	user, err := ctx.Service.ResolveUser(ctx.Ctx, ref)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
