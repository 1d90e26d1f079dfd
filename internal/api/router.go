// Package api exposes the CRUD, Gmail sync and agent endpoints over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/nakshatra-7/Email-Agent/internal/classifier"
	"github.com/nakshatra-7/Email-Agent/internal/database"
	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

// GmailService is the subset of the Gmail client the API uses
type GmailService interface {
	FetchAndStore(ctx context.Context, query string, maxResults int64) ([]*models.Email, error)
	Send(ctx context.Context, email *models.Email) (string, error)
	DownloadAttachment(ctx context.Context, gmailID, attachmentID, filename string) (string, error)
}

// AgentRunner triggers out-of-band agent ticks
type AgentRunner interface {
	RunOnce(ctx context.Context) (int, error)
}

// TextGatherer extracts attachment text for classifier input
type TextGatherer interface {
	Gather(ctx context.Context, email *models.Email) string
}

// Server holds the HTTP handler dependencies
type Server struct {
	db          *database.DB
	gmail       GmailService // nil when Gmail is not configured
	runner      AgentRunner
	classifier  classifier.Classifier
	attachments TextGatherer // nil when attachment extraction is disabled
	logger      *slog.Logger
}

// Deps dependencies for creating a server
type Deps struct {
	DB          *database.DB
	Gmail       GmailService
	Runner      AgentRunner
	Classifier  classifier.Classifier
	Attachments TextGatherer
	Logger      *slog.Logger
}

// NewServer creates the API server
func NewServer(deps Deps) *Server {
	return &Server{
		db:          deps.DB,
		gmail:       deps.Gmail,
		runner:      deps.Runner,
		classifier:  deps.Classifier,
		attachments: deps.Attachments,
		logger:      deps.Logger.With("component", "api"),
	}
}

// Router builds the gin engine with every endpoint registered
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/emails", s.handleCreateEmail)
		api.GET("/emails", s.handleListEmails)
		api.GET("/emails/:id", s.handleGetEmail)
		api.PATCH("/emails/:id", s.handleUpdateEmail)
		api.DELETE("/emails/:id", s.handleDeleteEmail)
		api.POST("/emails/:id/send", s.handleSendEmail)

		api.POST("/gmail/sync", s.handleGmailSync)
		api.GET("/gmail/messages", s.handleListSynced)
		api.GET("/gmail/attachments/:gmail_id/:attachment_id", s.handleDownloadAttachment)
		api.POST("/gmail/analyze/:id", s.handleAnalyzeEmail)

		api.POST("/agent/sync_once", s.handleSyncOnce)
		api.GET("/agent/events", s.handleListEvents)
		api.GET("/agent/actions", s.handleListActions)
	}

	return r
}
