package services

import (
	"context"
	"errors"
	"testing"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/stretchr/testify/assert"
)

type fakeTokenSource struct {
	calls int
	err   error
}

func (f *fakeTokenSource) GetInstallationToken(ctx context.Context, installationID int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "test-token", nil
}

type fakeGitHubClient struct {
	files        []*ChangedFile
	fetchErr     error
	postedBodies []string
	postErr      error
}

func (f *fakeGitHubClient) FetchPullRequestFiles(ctx context.Context, token, owner, repo string, prNumber int) ([]*ChangedFile, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.files, nil
}

func (f *fakeGitHubClient) PostReviewComment(ctx context.Context, token, owner, repo string, prNumber int, body string) error {
	f.postedBodies = append(f.postedBodies, body)
	return f.postErr
}

type fakeGenerator struct {
	prompts []string
	result  map[string]interface{}
	err     error
}

func (f *fakeGenerator) GenerateReview(ctx context.Context, evaluationPrompt, codeChanges string) (map[string]interface{}, error) {
	f.prompts = append(f.prompts, evaluationPrompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeGenerator) Model() string {
	return "test-model"
}

type fakeSelector struct {
	agents []*models.Agent
	calls  int
	err    error
}

func (f *fakeSelector) SelectAgents(repositoryFullName, fileExtension string) ([]*models.Agent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.agents, nil
}

type fakeStore struct {
	metadataCalls int
	evaluations   []*models.Evaluation
	successRuns   []*models.EvaluationRun
	failedRuns    []*models.EvaluationRun
	persistErr    error
	duplicateErr  error
}

func (f *fakeStore) UpsertEventMetadata(repo *models.Repository, pr *models.PullRequest) error {
	f.metadataCalls++
	return nil
}

func (f *fakeStore) PersistEvaluation(eval *models.Evaluation, run *models.EvaluationRun) error {
	if f.persistErr != nil {
		return f.persistErr
	}
	f.evaluations = append(f.evaluations, eval)
	f.successRuns = append(f.successRuns, run)
	return nil
}

func (f *fakeStore) RecordFailedRun(run *models.EvaluationRun) error {
	f.failedRuns = append(f.failedRuns, run)
	return nil
}

func (f *fakeStore) IsDuplicateRunErr(err error) bool {
	return f.duplicateErr != nil && errors.Is(err, f.duplicateErr)
}

func testEvent() *PullRequestEvent {
	return &PullRequestEvent{
		Action:         "opened",
		InstallationID: 42,
		RepoID:         100,
		RepoFullName:   "acme/widgets",
		Owner:          "acme",
		Repo:           "widgets",
		DefaultBranch:  "main",
		PRNumber:       7,
		PRTitle:        "Add widget cache",
		PRAuthor:       "dev",
		HeadSHA:        "abc123",
	}
}

func testReviewResult() map[string]interface{} {
	return map[string]interface{}{
		"scores": map[string]interface{}{
			"correctness": float64(8),
			"security":    float64(6),
		},
		"overall_summary": "Looks fine",
	}
}

func newTestWebhookService(tokens *fakeTokenSource, client *fakeGitHubClient, generator *fakeGenerator, selector *fakeSelector, store *fakeStore) *WebhookService {
	return NewWebhookService(tokens, client, generator, selector, store, "v1")
}

func TestShouldProcess(t *testing.T) {
	service := newTestWebhookService(&fakeTokenSource{}, &fakeGitHubClient{}, &fakeGenerator{}, &fakeSelector{}, &fakeStore{})

	testCases := []struct {
		eventType string
		action    string
		expected  bool
	}{
		{"pull_request", "opened", true},
		{"pull_request", "synchronize", true},
		{"pull_request", "closed", false},
		{"pull_request", "labeled", false},
		{"push", "opened", false},
		{"issues", "opened", false},
	}

	for _, tc := range testCases {
		t.Run(tc.eventType+"/"+tc.action, func(t *testing.T) {
			assert.Equal(t, tc.expected, service.ShouldProcess(tc.eventType, tc.action))
		})
	}
}

func TestProcessEventHappyPath(t *testing.T) {
	agent := models.NewAgent("reviewer")
	agent.PromptHTML = "Review {code_chunk} as {file_type} ({context})"

	tokens := &fakeTokenSource{}
	client := &fakeGitHubClient{
		files: []*ChangedFile{
			{Filename: "main.go", Patch: "@@ -1,2 +1,3 @@\n+added line", Changes: 1},
		},
	}
	generator := &fakeGenerator{result: testReviewResult()}
	selector := &fakeSelector{agents: []*models.Agent{agent}}
	store := &fakeStore{}

	service := newTestWebhookService(tokens, client, generator, selector, store)
	service.ProcessEvent(context.Background(), testEvent())

	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, 1, store.metadataCalls)
	assert.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "+added line")
	assert.Contains(t, generator.prompts[0], "as go")
	assert.Contains(t, generator.prompts[0], "Repository: acme/widgets, PR: #7")

	assert.Len(t, store.evaluations, 1)
	eval := store.evaluations[0]
	assert.Equal(t, int64(100), eval.GithubRepoID)
	assert.Equal(t, 7, eval.PRNumber)
	assert.Equal(t, agent.ID, eval.AgentID)
	assert.Equal(t, 8, eval.Review.Scores.Correctness)
	assert.Equal(t, "test-model", eval.EvaluationModel)
	assert.Equal(t, "v1", eval.EvaluationVersion)

	assert.Len(t, store.successRuns, 1)
	assert.Equal(t, models.RunStatusSuccess, store.successRuns[0].Status)
	assert.Equal(t, "abc123", store.successRuns[0].HeadSHA)

	assert.Len(t, client.postedBodies, 1)
	assert.Contains(t, client.postedBodies[0], "**Reviewed by: reviewer**")
	assert.Contains(t, client.postedBodies[0], "Looks fine")
	assert.Empty(t, store.failedRuns)
}

func TestProcessEventSkipsFilesWithoutPatch(t *testing.T) {
	client := &fakeGitHubClient{
		files: []*ChangedFile{
			{Filename: "image.png", Patch: ""},
		},
	}
	generator := &fakeGenerator{result: testReviewResult()}
	selector := &fakeSelector{agents: []*models.Agent{models.NewAgent("reviewer")}}
	store := &fakeStore{}

	service := newTestWebhookService(&fakeTokenSource{}, client, generator, selector, store)
	service.ProcessEvent(context.Background(), testEvent())

	assert.Equal(t, 0, selector.calls, "files without a patch should not reach agent selection")
	assert.Empty(t, generator.prompts)
	assert.Empty(t, client.postedBodies)
}

func TestProcessEventNoMatchingAgents(t *testing.T) {
	client := &fakeGitHubClient{
		files: []*ChangedFile{
			{Filename: "main.go", Patch: "+x"},
		},
	}
	generator := &fakeGenerator{result: testReviewResult()}
	store := &fakeStore{}

	service := newTestWebhookService(&fakeTokenSource{}, client, generator, &fakeSelector{}, store)
	service.ProcessEvent(context.Background(), testEvent())

	assert.Empty(t, generator.prompts)
	assert.Empty(t, client.postedBodies)
	assert.Equal(t, 1, store.metadataCalls, "metadata should be stored even when no agents match")
}

func TestProcessEventGeneratorFailureRecordsRun(t *testing.T) {
	agent := models.NewAgent("reviewer")
	agent.PromptHTML = "{code_chunk}"

	client := &fakeGitHubClient{
		files: []*ChangedFile{
			{Filename: "a.go", Patch: "+a"},
			{Filename: "b.go", Patch: "+b"},
		},
	}
	generator := &fakeGenerator{err: errors.New("model overloaded")}
	selector := &fakeSelector{agents: []*models.Agent{agent}}
	store := &fakeStore{}

	service := newTestWebhookService(&fakeTokenSource{}, client, generator, selector, store)
	service.ProcessEvent(context.Background(), testEvent())

	// Both files are still attempted; each failure is recorded.
	assert.Len(t, generator.prompts, 2)
	assert.Len(t, store.failedRuns, 2)
	assert.Equal(t, "model overloaded", *store.failedRuns[0].ErrorMessage)
	assert.Empty(t, client.postedBodies)
	assert.Empty(t, store.evaluations)
}

func TestProcessEventDuplicateRunStillComments(t *testing.T) {
	agent := models.NewAgent("reviewer")
	agent.PromptHTML = "{code_chunk}"

	duplicate := errors.New("unique constraint")
	client := &fakeGitHubClient{
		files: []*ChangedFile{
			{Filename: "main.go", Patch: "+x"},
		},
	}
	store := &fakeStore{persistErr: duplicate, duplicateErr: duplicate}

	service := newTestWebhookService(
		&fakeTokenSource{},
		client,
		&fakeGenerator{result: testReviewResult()},
		&fakeSelector{agents: []*models.Agent{agent}},
		store,
	)
	service.ProcessEvent(context.Background(), testEvent())

	assert.Len(t, client.postedBodies, 1, "a duplicate run should not block the comment")
	assert.Empty(t, store.failedRuns)
}

func TestProcessEventTokenFailureStopsPipeline(t *testing.T) {
	tokens := &fakeTokenSource{err: errors.New("bad credentials")}
	client := &fakeGitHubClient{}
	store := &fakeStore{}

	service := newTestWebhookService(tokens, client, &fakeGenerator{}, &fakeSelector{}, store)
	service.ProcessEvent(context.Background(), testEvent())

	assert.Equal(t, 0, store.metadataCalls)
	assert.Empty(t, client.postedBodies)
}
