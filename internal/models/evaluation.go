package models

import (
	"time"
)

// ReviewScores holds the five per-dimension scores, each in [0, 10]
type ReviewScores struct {
	Correctness         int `json:"correctness"`
	Security            int `json:"security"`
	Maintainability     int `json:"maintainability"`
	Clarity             int `json:"clarity"`
	ProductionReadiness int `json:"production_readiness"`
}

// ReviewJustification holds the per-dimension free-text reasoning
type ReviewJustification struct {
	Correctness         string `json:"correctness"`
	Security            string `json:"security"`
	Maintainability     string `json:"maintainability"`
	Clarity             string `json:"clarity"`
	ProductionReadiness string `json:"production_readiness"`
}

// CodeReview is the canonical evaluation schema. A normalized review
// always has all score fields, all justification fields and a summary,
// so downstream code never needs nil checks.
type CodeReview struct {
	Scores         ReviewScores        `json:"scores"`
	Justification  ReviewJustification `json:"justification"`
	OverallSummary string              `json:"overall_summary"`
}

// Evaluation is one persisted scored review outcome for a specific
// file change by a specific agent. Rows are immutable once written.
type Evaluation struct {
	ID                int64      `json:"id"`
	GithubRepoID      int64      `json:"githubRepoId"`
	PRNumber          int        `json:"prNumber"`
	AgentID           string     `json:"agentId"`
	Review            CodeReview `json:"review"`
	EvaluationModel   string     `json:"evaluationModel"`
	EvaluationVersion string     `json:"evaluationVersion"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Review is the dashboard read model: an evaluation joined with agent,
// repository and pull request metadata.
type Review struct {
	ID                int64               `json:"id"`
	AgentID           string              `json:"agentId"`
	AgentName         string              `json:"agentName"`
	AgentDescription  *string             `json:"agentDescription"`
	Repository        string              `json:"repository"`
	PRNumber          int                 `json:"prNumber"`
	PRTitle           *string             `json:"prTitle"`
	PRAuthor          *string             `json:"prAuthor"`
	Scores            ReviewScores        `json:"scores"`
	Reasons           ReviewJustification `json:"reasons"`
	OverallSummary    *string             `json:"overallSummary"`
	EvaluationModel   *string             `json:"evaluationModel"`
	EvaluationVersion *string             `json:"evaluationVersion"`
	CreatedAt         time.Time           `json:"createdAt"`
}

// ReviewFilters narrows review listings
type ReviewFilters struct {
	AgentID   string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

// ReviewStats aggregates review quality metrics for the dashboard
type ReviewStats struct {
	TotalReviews  int               `json:"totalReviews"`
	AverageScores AverageScores     `json:"averageScores"`
	TrendData     []TrendPoint      `json:"trendData"`
	AgentStats    []AgentComparison `json:"agentComparison"`
}

// AverageScores are per-dimension averages across the filtered set
type AverageScores struct {
	Correctness         float64 `json:"correctness"`
	Security            float64 `json:"security"`
	Maintainability     float64 `json:"maintainability"`
	Clarity             float64 `json:"clarity"`
	ProductionReadiness float64 `json:"productionReadiness"`
}

// TrendPoint is one of the last 50 evaluations, oldest to newest
type TrendPoint struct {
	Index       int     `json:"index"`
	Helpfulness float64 `json:"helpfulness"`
}

// AgentComparison compares agents by mean score and volume
type AgentComparison struct {
	AgentID     string  `json:"agentId"`
	AgentName   string  `json:"agentName"`
	AvgScore    float64 `json:"avgScore"`
	ReviewCount int     `json:"reviewCount"`
}
