package models

import (
	"time"
)

// Evaluation run statuses
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// EvaluationRun is an idempotency/audit record of an evaluation
// attempt. The (repo, PR, agent, head SHA) tuple is unique at the
// storage layer; a duplicate insert surfaces as a conflict error so
// callers can detect repeated processing of the same commit.
type EvaluationRun struct {
	ID           int64     `json:"id"`
	GithubRepoID int64     `json:"githubRepoId"`
	PRNumber     int       `json:"prNumber"`
	AgentID      string    `json:"agentId"`
	HeadSHA      string    `json:"headSha"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage"`
	CreatedAt    time.Time `json:"createdAt"`
}
