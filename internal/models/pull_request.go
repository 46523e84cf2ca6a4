package models

import (
	"time"
)

// PullRequest is identified by (github repo id, PR number). Each new
// webhook event for the same number overwrites title/author/head SHA.
type PullRequest struct {
	ID           int64     `json:"id"`
	GithubRepoID int64     `json:"githubRepoId"`
	PRNumber     int       `json:"prNumber"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	HeadSHA      string    `json:"headSha"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
