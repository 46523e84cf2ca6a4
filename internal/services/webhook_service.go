package services

import (
	"context"
	"fmt"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/sirupsen/logrus"
)

// InstallationTokenSource exchanges an installation id for a
// short-lived access token
type InstallationTokenSource interface {
	GetInstallationToken(ctx context.Context, installationID int64) (string, error)
}

// PullRequestClient covers the GitHub calls the orchestrator makes
type PullRequestClient interface {
	FetchPullRequestFiles(ctx context.Context, token, owner, repo string, prNumber int) ([]*ChangedFile, error)
	PostReviewComment(ctx context.Context, token, owner, repo string, prNumber int, body string) error
}

// ReviewGenerator produces a raw, untrusted review for a prompt and a
// single file's changes
type ReviewGenerator interface {
	GenerateReview(ctx context.Context, evaluationPrompt, codeChanges string) (map[string]interface{}, error)
	Model() string
}

// AgentSelector picks the agents that apply to a repository and file type
type AgentSelector interface {
	SelectAgents(repositoryFullName, fileExtension string) ([]*models.Agent, error)
}

// EvaluationStore persists webhook-driven state
type EvaluationStore interface {
	UpsertEventMetadata(repo *models.Repository, pr *models.PullRequest) error
	PersistEvaluation(eval *models.Evaluation, run *models.EvaluationRun) error
	RecordFailedRun(run *models.EvaluationRun) error
	IsDuplicateRunErr(err error) bool
}

// PullRequestEvent is the typed payload the webhook receiver hands to
// the orchestrator
type PullRequestEvent struct {
	Action         string
	InstallationID int64

	RepoID        int64
	RepoFullName  string
	Owner         string
	Repo          string
	Description   *string
	URL           *string
	HTMLURL       *string
	IsPrivate     bool
	DefaultBranch string
	Language      *string
	StarsCount    int
	ForksCount    int

	PRNumber int
	PRTitle  string
	PRAuthor string
	HeadSHA  string
}

// reviewedActions are the pull_request actions that trigger processing
var reviewedActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
}

// WebhookService drives the review pipeline for pull request events:
// match agents per changed file, compile prompts, call the generator,
// normalize, persist, comment. Failures are isolated per file/agent.
type WebhookService struct {
	tokens       InstallationTokenSource
	client       PullRequestClient
	generator    ReviewGenerator
	agents       AgentSelector
	store        EvaluationStore
	prompts      *PromptService
	normalizer   *ReviewNormalizer
	modelVersion string
}

func NewWebhookService(
	tokens InstallationTokenSource,
	client PullRequestClient,
	generator ReviewGenerator,
	agents AgentSelector,
	store EvaluationStore,
	modelVersion string,
) *WebhookService {
	return &WebhookService{
		tokens:       tokens,
		client:       client,
		generator:    generator,
		agents:       agents,
		store:        store,
		prompts:      NewPromptService(),
		normalizer:   NewReviewNormalizer(),
		modelVersion: modelVersion,
	}
}

// ShouldProcess filters events. Only pull_request opened/synchronize
// goes through; everything else is acknowledged and dropped.
func (s *WebhookService) ShouldProcess(eventType, action string) bool {
	return eventType == "pull_request" && reviewedActions[action]
}

// HandleEvent spawns the processing chain for an accepted event. The
// caller has already acknowledged the webhook; the chain is detached
// and its panics are caught and logged instead of crashing the process.
func (s *WebhookService) HandleEvent(event *PullRequestEvent) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"repo": event.RepoFullName,
					"pr":   event.PRNumber,
				}).Errorf("Panic while processing webhook event: %v", r)
			}
		}()

		s.ProcessEvent(context.Background(), event)
	}()
}

// ProcessEvent runs the full pipeline for one pull request event
func (s *WebhookService) ProcessEvent(ctx context.Context, event *PullRequestEvent) {
	log := logger.WithFields(logrus.Fields{
		"repo": event.RepoFullName,
		"pr":   event.PRNumber,
		"sha":  event.HeadSHA,
	})

	token, err := s.tokens.GetInstallationToken(ctx, event.InstallationID)
	if err != nil {
		log.WithError(err).Errorf("Failed to get installation token")
		return
	}

	files, err := s.client.FetchPullRequestFiles(ctx, token, event.Owner, event.Repo, event.PRNumber)
	if err != nil {
		log.WithError(err).Errorf("Failed to fetch pull request files")
		return
	}

	// Metadata upsert is best-effort; file processing continues even
	// if it fails.
	if err := s.upsertMetadata(event); err != nil {
		log.WithError(err).Errorf("Failed to persist repository/PR metadata")
	}

	for _, file := range files {
		if file.Patch == "" {
			log.Debugf("Skipping file without patch: %s", file.Filename)
			continue
		}

		extension := GetFileExtension(file.Filename)

		matched, err := s.agents.SelectAgents(event.RepoFullName, extension)
		if err != nil {
			log.WithError(err).Errorf("Agent selection failed")
			return
		}

		if len(matched) == 0 {
			log.Infof("No agents configured for file %s", file.Filename)
			continue
		}

		for _, agent := range matched {
			s.reviewFileWithAgent(ctx, token, event, agent, file, extension)
		}
	}

	log.Infof("Finished processing pull request event")
}

func (s *WebhookService) upsertMetadata(event *PullRequestEvent) error {
	repo := &models.Repository{
		GithubRepoID:  event.RepoID,
		Owner:         event.Owner,
		Name:          event.Repo,
		Description:   event.Description,
		URL:           event.URL,
		HTMLURL:       event.HTMLURL,
		IsPrivate:     event.IsPrivate,
		DefaultBranch: event.DefaultBranch,
		Language:      event.Language,
		StarsCount:    event.StarsCount,
		ForksCount:    event.ForksCount,
	}

	pr := &models.PullRequest{
		GithubRepoID: event.RepoID,
		PRNumber:     event.PRNumber,
		Title:        event.PRTitle,
		Author:       event.PRAuthor,
		HeadSHA:      event.HeadSHA,
	}

	return s.store.UpsertEventMetadata(repo, pr)
}

// reviewFileWithAgent runs one agent against one changed file. The
// generator call, the persistence and the comment post are each
// isolated so one failure does not prevent the others.
func (s *WebhookService) reviewFileWithAgent(ctx context.Context, token string, event *PullRequestEvent, agent *models.Agent, file *ChangedFile, extension string) {
	log := logger.WithFields(logrus.Fields{
		"repo":  event.RepoFullName,
		"pr":    event.PRNumber,
		"agent": agent.Name,
		"file":  file.Filename,
	})

	variables := s.prompts.DefaultVariableValues(
		file.Patch,
		extension,
		fmt.Sprintf("Repository: %s, PR: #%d", event.RepoFullName, event.PRNumber),
	)
	compiledPrompt := s.prompts.ReplaceVariables(agent.PromptHTML, variables)

	raw, err := s.generator.GenerateReview(ctx, compiledPrompt, file.Patch)
	if err != nil {
		log.WithError(err).Errorf("Review generation failed")
		s.recordFailure(event, agent, err)
		return
	}
	if raw == nil {
		log.Warnf("Review generator returned nothing, skipping agent for this file")
		return
	}

	review := s.normalizer.Normalize(raw)

	eval := &models.Evaluation{
		GithubRepoID:      event.RepoID,
		PRNumber:          event.PRNumber,
		AgentID:           agent.ID,
		Review:            *review,
		EvaluationModel:   s.generator.Model(),
		EvaluationVersion: s.modelVersion,
	}
	run := &models.EvaluationRun{
		GithubRepoID: event.RepoID,
		PRNumber:     event.PRNumber,
		AgentID:      agent.ID,
		HeadSHA:      event.HeadSHA,
		Status:       models.RunStatusSuccess,
	}

	if err := s.store.PersistEvaluation(eval, run); err != nil {
		if s.store.IsDuplicateRunErr(err) {
			log.Warnf("Evaluation run already recorded for this head SHA")
		} else {
			log.WithError(err).Errorf("Failed to persist evaluation")
		}
		// Comment posting is still attempted; a stored evaluation with
		// a missing comment and vice versa are both accepted end states.
	}

	comment := FormatReviewComment(review, agent.Name)
	if err := s.client.PostReviewComment(ctx, token, event.Owner, event.Repo, event.PRNumber, comment); err != nil {
		log.WithError(err).Errorf("Failed to post review comment")
		return
	}

	log.Infof("Review comment posted")
}

func (s *WebhookService) recordFailure(event *PullRequestEvent, agent *models.Agent, cause error) {
	message := cause.Error()
	run := &models.EvaluationRun{
		GithubRepoID: event.RepoID,
		PRNumber:     event.PRNumber,
		AgentID:      agent.ID,
		HeadSHA:      event.HeadSHA,
		ErrorMessage: &message,
	}

	if err := s.store.RecordFailedRun(run); err != nil && !s.store.IsDuplicateRunErr(err) {
		logger.WithError(err).Errorf("Failed to record failed evaluation run")
	}
}
