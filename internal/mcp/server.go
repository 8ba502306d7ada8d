package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adamavenir/quill/internal/core"
	"github.com/adamavenir/quill/internal/db"
	"github.com/adamavenir/quill/internal/messaging"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server exposes quill messaging as MCP tools over stdio. Every call acts as
// one user, fixed when the server starts.
type Server struct {
	server *mcp.Server
	dbConn *sql.DB
	logger *zap.Logger
	tools  *ToolContext
}

// NewServer opens the project store and registers tools acting as username.
func NewServer(projectPath, username, version string) (*Server, error) {
	project, err := core.DiscoverProject(projectPath)
	if err != nil {
		return nil, err
	}
	config, err := core.LoadConfig(project)
	if err != nil {
		return nil, err
	}
	logger, err := core.NewLogger(config.Log)
	if err != nil {
		return nil, err
	}
	logger = logger.Named("mcp")
	logger.Info("discovered project", zap.String("root", project.Root))

	dbConn, err := db.OpenDatabase(project, config.BusyTimeout)
	if err != nil {
		return nil, err
	}

	service := messaging.New(dbConn, messaging.Options{
		Logger:               logger,
		NotificationTemplate: config.Notification.Template,
	})
	user, err := service.ResolveUser(context.Background(), username)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("mcp user %q: %w", username, err)
	}
	logger.Info("acting as user", zap.String("user", user.ID), zap.String("username", user.Username))

	tools := &ToolContext{Service: service, UserID: user.ID}
	server := mcp.NewServer(&mcp.Implementation{Name: "quill", Version: version}, nil)
	RegisterTools(server, tools)

	return &Server{server: server, dbConn: dbConn, logger: logger, tools: tools}, nil
}

// Run serves MCP over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close shuts down the server.
func (s *Server) Close() error {
	if s.dbConn != nil {
		_ = s.dbConn.Close()
	}
	s.logger.Info("server closed")
	_ = s.logger.Sync()
	return nil
}
