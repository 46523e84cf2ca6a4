package services

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubAppService authenticates as a GitHub App and talks to the
// GitHub REST API on behalf of an installation.
type GitHubAppService struct {
	appID      string
	privateKey *rsa.PrivateKey
	apiBaseURL string
	httpClient *http.Client
}

// ChangedFile is one changed file of a pull request
type ChangedFile struct {
	Filename string `json:"filename"`
	Patch    string `json:"patch"`
	Changes  int    `json:"changes"`
}

func NewGitHubAppService() (*GitHubAppService, error) {
	cfg := config.AppConfig.GitHub
	if cfg.AppID == "" {
		return nil, fmt.Errorf("GITHUB_APP_ID is not configured")
	}

	keyData, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GitHub App private key: %w", err)
	}

	return &GitHubAppService{
		appID:      cfg.AppID,
		privateKey: privateKey,
		apiBaseURL: cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// GenerateAppJWT builds the short-lived app assertion. Issued-at is
// backdated 60s to absorb clock skew; expiry is 9 minutes, the maximum
// GitHub accepts is 10.
func (s *GitHubAppService) GenerateAppJWT() (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(9 * time.Minute)),
		Issuer:    s.appID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.privateKey)
}

// GetInstallationToken exchanges the app assertion for an installation
// access token. HTTP and network errors propagate untouched; there is
// no retry at this layer.
func (s *GitHubAppService) GetInstallationToken(ctx context.Context, installationID int64) (string, error) {
	appJWT, err := s.GenerateAppJWT()
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", s.apiBaseURL, installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+appJWT)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("installation token exchange returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return "", fmt.Errorf("failed to unmarshal installation token response: %w", err)
	}

	return tokenResponse.Token, nil
}

// FetchPullRequestFiles lists the changed files of a pull request
func (s *GitHubAppService) FetchPullRequestFiles(ctx context.Context, token, owner, repo string, prNumber int) ([]*ChangedFile, error) {
	client := s.createAuthenticatedClient(ctx, token)

	var files []*ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		commitFiles, resp, err := client.PullRequests.ListFiles(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, err
		}

		for _, file := range commitFiles {
			files = append(files, &ChangedFile{
				Filename: file.GetFilename(),
				Patch:    file.GetPatch(),
				Changes:  file.GetChanges(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// PostReviewComment creates a new PR review with the given Markdown
// body. Each agent's comment is posted as its own review.
func (s *GitHubAppService) PostReviewComment(ctx context.Context, token, owner, repo string, prNumber int, body string) error {
	client := s.createAuthenticatedClient(ctx, token)

	review := &github.PullRequestReviewRequest{
		Body:  github.String(body),
		Event: github.String("COMMENT"),
	}

	_, _, err := client.PullRequests.CreateReview(ctx, owner, repo, prNumber, review)
	return err
}

// createAuthenticatedClient creates a GitHub client with the provided token
func (s *GitHubAppService) createAuthenticatedClient(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return github.NewClient(tc)
}

// FormatReviewComment renders an evaluation as the Markdown body of a
// PR review comment.
func FormatReviewComment(review *models.CodeReview, agentName string) string {
	scoreLine := func(label string, score int) string {
		return fmt.Sprintf("- **%s**: %d/10 %s", label, score, scoreEmoji(score))
	}

	var items []string
	if review.Justification.Correctness != "" {
		items = append(items, "- **✅ Correctness:** "+review.Justification.Correctness)
	}
	if review.Justification.Security != "" {
		items = append(items, "- **🔐 Security:** "+review.Justification.Security)
	}
	if review.Justification.Maintainability != "" {
		items = append(items, "- **🛠 Maintainability:** "+review.Justification.Maintainability)
	}
	if review.Justification.Clarity != "" {
		items = append(items, "- **✍️ Clarity:** "+review.Justification.Clarity)
	}
	if review.Justification.ProductionReadiness != "" {
		items = append(items, "- **🚀 Production Readiness:** "+review.Justification.ProductionReadiness)
	}
	if review.OverallSummary != "" {
		items = append(items, "- **📄 Overall:** "+review.OverallSummary)
	}

	summary := "No review details available."
	if len(items) > 0 {
		summary = strings.Join(items, "\n\n")
	}

	body := fmt.Sprintf(`## 🧠 Automated Code Review

### 📊 Summary Scores
%s
%s
%s
%s
%s

---

### 📋 Review Summary
%s`,
		scoreLine("Correctness", review.Scores.Correctness),
		scoreLine("Security", review.Scores.Security),
		scoreLine("Maintainability", review.Scores.Maintainability),
		scoreLine("Clarity", review.Scores.Clarity),
		scoreLine("Production Readiness", review.Scores.ProductionReadiness),
		summary,
	)

	if agentName != "" {
		body = fmt.Sprintf("**Reviewed by: %s**\n\n%s", agentName, body)
	}

	return body
}

// PatchSummary carries the added lines of a unified diff patch and
// the start line of its first hunk's + side.
type PatchSummary struct {
	StartLine  int
	AddedLines []string
}

var hunkStartPattern = regexp.MustCompile(`\+(\d+)`)

// ParsePatch extracts the added lines from a unified diff patch
func ParsePatch(patch string) *PatchSummary {
	summary := &PatchSummary{}

	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "@@") {
			if match := hunkStartPattern.FindStringSubmatch(line); match != nil {
				if start, err := strconv.Atoi(match[1]); err == nil {
					summary.StartLine = start
				}
			}
		}

		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			summary.AddedLines = append(summary.AddedLines, line[1:])
		}
	}

	return summary
}

func scoreEmoji(score int) string {
	if score >= 8 {
		return "🟢"
	}
	if score >= 5 {
		return "🟡"
	}
	return "🔴"
}
