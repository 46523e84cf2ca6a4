package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/codedoctor/codedoctor/internal/services"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v57/github"
)

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Liveness answers GET probes on the webhook path
func (h *WebhookHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "Code Doctor API is listening for GitHub webhooks!")
}

// Handle receives GitHub webhook deliveries. The response is always
// 200: GitHub retries on timeout and error statuses, and processing
// happens after acknowledgment anyway.
func (h *WebhookHandler) Handle(c *gin.Context) {
	eventType := c.GetHeader("X-GitHub-Event")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.WithError(err).Errorf("Failed to read webhook body")
		c.Status(http.StatusOK)
		return
	}

	var payload github.PullRequestEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.WithError(err).Errorf("Failed to parse webhook payload")
		c.Status(http.StatusOK)
		return
	}

	if !h.webhookService.ShouldProcess(eventType, payload.GetAction()) {
		c.Status(http.StatusOK)
		return
	}

	repo := payload.GetRepo()
	pr := payload.GetPullRequest()

	event := &services.PullRequestEvent{
		Action:         payload.GetAction(),
		InstallationID: payload.GetInstallation().GetID(),
		RepoID:         repo.GetID(),
		RepoFullName:   repo.GetFullName(),
		Owner:          repo.GetOwner().GetLogin(),
		Repo:           repo.GetName(),
		Description:    repo.Description,
		URL:            repo.URL,
		HTMLURL:        repo.HTMLURL,
		IsPrivate:      repo.GetPrivate(),
		DefaultBranch:  repo.GetDefaultBranch(),
		Language:       repo.Language,
		StarsCount:     repo.GetStargazersCount(),
		ForksCount:     repo.GetForksCount(),
		PRNumber:       payload.GetNumber(),
		PRTitle:        pr.GetTitle(),
		PRAuthor:       pr.GetUser().GetLogin(),
		HeadSHA:        pr.GetHead().GetSHA(),
	}

	h.webhookService.HandleEvent(event)

	c.Status(http.StatusOK)
}
