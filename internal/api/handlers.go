package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nakshatra-7/Email-Agent/internal/classifier"
	"github.com/nakshatra-7/Email-Agent/internal/database"
	"github.com/nakshatra-7/Email-Agent/internal/policy"
	"github.com/nakshatra-7/Email-Agent/pkg/models"
)

type createEmailRequest struct {
	Subject     string             `json:"subject" binding:"required"`
	Body        string             `json:"body"`
	FromAddress string             `json:"from_address"`
	ToAddress   string             `json:"to_address"`
	Status      models.EmailStatus `json:"status"`
}

func emailResponse(email *models.Email) gin.H {
	resp := gin.H{
		"id":           email.ID,
		"subject":      email.Subject,
		"body":         email.Body,
		"snippet":      email.Snippet,
		"from_address": email.FromAddr,
		"to_address":   email.ToAddr,
		"status":       email.Status,
		"processed":    email.Processed,
		"created_at":   email.CreatedAt,
		"updated_at":   email.UpdatedAt,
	}
	if email.GmailID.Valid {
		resp["gmail_id"] = email.GmailID.String
	}
	if email.ThreadID.Valid {
		resp["thread_id"] = email.ThreadID.String
	}
	if email.ProcessedAt.Valid {
		resp["processed_at"] = email.ProcessedAt.Time
	}
	return resp
}

func (s *Server) handleCreateEmail(c *gin.Context) {
	var req createEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}

	email := &models.Email{
		Subject:  req.Subject,
		Body:     req.Body,
		FromAddr: req.FromAddress,
		ToAddr:   req.ToAddress,
		Status:   status,
	}
	if err := s.db.CreateEmail(c.Request.Context(), email); err != nil {
		s.logger.Error("failed to create email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create email"})
		return
	}

	c.JSON(http.StatusCreated, emailResponse(email))
}

func (s *Server) handleListEmails(c *gin.Context) {
	status := models.EmailStatus(c.Query("status"))

	emails, err := s.db.ListEmails(c.Request.Context(), status)
	if err != nil {
		s.logger.Error("failed to list emails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list emails"})
		return
	}

	resp := make([]gin.H, 0, len(emails))
	for _, email := range emails {
		resp = append(resp, emailResponse(email))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetEmail(c *gin.Context) {
	email, ok := s.emailByParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, emailResponse(email))
}

func (s *Server) handleUpdateEmail(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	var upd database.EmailUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email, err := s.db.UpdateEmail(c.Request.Context(), id, upd)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to update email", "email_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update email"})
		return
	}

	c.JSON(http.StatusOK, emailResponse(email))
}

func (s *Server) handleDeleteEmail(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}

	err := s.db.DeleteEmail(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return
	}
	if err != nil {
		s.logger.Error("failed to delete email", "email_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete email"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleSendEmail(c *gin.Context) {
	if s.gmail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gmail is not configured"})
		return
	}

	email, ok := s.emailByParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	sentID, err := s.gmail.Send(ctx, email)
	if err != nil {
		s.logger.Error("failed to send email", "email_id", email.ID, "error", err)
		_ = s.db.UpdateEmailStatus(ctx, email.ID, models.StatusFailed)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send email"})
		return
	}

	if err := s.db.UpdateEmailStatus(ctx, email.ID, models.StatusSent); err != nil {
		s.logger.Error("failed to update email status", "email_id", email.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"sent_id": sentID})
}

func (s *Server) handleGmailSync(c *gin.Context) {
	if s.gmail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gmail is not configured"})
		return
	}

	query := c.DefaultQuery("query", "in:inbox")
	maxResults, err := strconv.ParseInt(c.DefaultQuery("max_results", "10"), 10, 64)
	if err != nil || maxResults < 1 || maxResults > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_results must be between 1 and 50"})
		return
	}

	emails, err := s.gmail.FetchAndStore(c.Request.Context(), query, maxResults)
	if err != nil {
		s.logger.Error("gmail sync failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "gmail sync failed"})
		return
	}

	resp := make([]gin.H, 0, len(emails))
	for _, email := range emails {
		resp = append(resp, emailResponse(email))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListSynced(c *gin.Context) {
	status := models.EmailStatus(c.Query("status"))

	emails, err := s.db.ListSyncedEmails(c.Request.Context(), status)
	if err != nil {
		s.logger.Error("failed to list synced emails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list synced emails"})
		return
	}

	resp := make([]gin.H, 0, len(emails))
	for _, email := range emails {
		resp = append(resp, emailResponse(email))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDownloadAttachment(c *gin.Context) {
	if s.gmail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gmail is not configured"})
		return
	}

	gmailID := c.Param("gmail_id")
	attachmentID := c.Param("attachment_id")
	filename := c.Query("filename")

	path, err := s.gmail.DownloadAttachment(c.Request.Context(), gmailID, attachmentID, filename)
	if err != nil {
		s.logger.Error("failed to download attachment",
			"gmail_id", gmailID, "attachment_id", attachmentID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to download attachment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved_to": path})
}

// handleAnalyzeEmail classifies one stored email on demand and stores the
// result. The processed flag is left untouched, so the background loop
// still visits the email on its next tick.
func (s *Server) handleAnalyzeEmail(c *gin.Context) {
	if s.classifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier is not configured"})
		return
	}

	email, ok := s.emailByParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	body := email.Body
	if body == "" {
		body = email.Snippet
	}
	if s.attachments != nil {
		if text := s.attachments.Gather(ctx, email); text != "" {
			body += "\n\nAttachment excerpts:\n" + text
		}
	}

	classification, err := s.classifier.Classify(ctx, classifier.Input{
		Subject: email.Subject,
		Sender:  email.FromAddr,
		Body:    body,
	})
	if err != nil {
		s.logger.Error("classification failed", "email_id", email.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "classification failed"})
		return
	}

	actions := policy.Decide(classification)

	classificationJSON, err := json.Marshal(classification)
	if err != nil {
		s.logger.Error("failed to encode classification", "email_id", email.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode analysis"})
		return
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		s.logger.Error("failed to encode actions", "email_id", email.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode analysis"})
		return
	}

	if err := s.db.UpdateAnalysis(ctx, email.ID, string(classificationJSON), string(actionsJSON)); err != nil {
		s.logger.Error("failed to store analysis", "email_id", email.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store analysis"})
		return
	}

	resp := emailResponse(email)
	resp["classification"] = classification
	resp["actions"] = actions
	c.JSON(http.StatusOK, resp)
}

// handleSyncOnce triggers one out-of-band agent tick. It shares the tick
// mutex with the background loop, so the request blocks until any running
// tick finishes.
func (s *Server) handleSyncOnce(c *gin.Context) {
	processed, err := s.runner.RunOnce(c.Request.Context())
	if err != nil {
		s.logger.Error("sync_once failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "agent tick failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

func (s *Server) handleListEvents(c *gin.Context) {
	limit, ok := s.limitParam(c, 20)
	if !ok {
		return
	}

	emails, err := s.db.ListProcessed(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list processed emails", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list events"})
		return
	}

	events := make([]gin.H, 0, len(emails))
	for _, email := range emails {
		event := emailResponse(email)

		var classification models.Classification
		if email.Classification.Valid {
			if err := json.Unmarshal([]byte(email.Classification.String), &classification); err == nil {
				event["classification"] = classification
				event["urgency"] = classification.Urgency
				event["summary"] = classification.SuggestedSummary
				event["needs_reply"] = classification.NeedsReply
				event["contains_meeting"] = classification.ContainsMeeting
			}
		}

		var actions []models.Action
		if err := json.Unmarshal([]byte(email.Actions), &actions); err == nil {
			event["actions"] = actions
		}

		events = append(events, event)
	}

	c.JSON(http.StatusOK, events)
}

func (s *Server) handleListActions(c *gin.Context) {
	limit, ok := s.limitParam(c, 20)
	if !ok {
		return
	}

	events, err := s.db.ListActionEvents(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list action events", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list action events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (s *Server) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email id"})
		return 0, false
	}
	return id, true
}

func (s *Server) emailByParam(c *gin.Context) (*models.Email, bool) {
	id, ok := s.idParam(c)
	if !ok {
		return nil, false
	}

	email, err := s.db.GetEmailByID(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "email not found"})
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to get email", "email_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get email"})
		return nil, false
	}
	return email, true
}

func (s *Server) limitParam(c *gin.Context, def int) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return 0, false
	}
	return limit, true
}
