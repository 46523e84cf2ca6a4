package repositories

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertEvaluation(t *testing.T, db *sql.DB, repo *EvaluationRepository, eval *models.Evaluation) {
	t.Helper()
	err := database.WithTransaction(db, func(tx *sql.Tx) error {
		return repo.InsertTx(tx, eval)
	})
	require.NoError(t, err)
}

func testEvaluation(agentID string, score int) *models.Evaluation {
	return &models.Evaluation{
		GithubRepoID: 100,
		PRNumber:     7,
		AgentID:      agentID,
		Review: models.CodeReview{
			Scores: models.ReviewScores{
				Correctness:         score,
				Security:            score,
				Maintainability:     score,
				Clarity:             score,
				ProductionReadiness: score,
			},
			Justification: models.ReviewJustification{
				Correctness: "reason",
			},
			OverallSummary: "summary",
		},
		EvaluationModel:   "test-model",
		EvaluationVersion: "v1",
	}
}

func TestGetReviewsJoinsMetadata(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)
	agentRepo := NewAgentRepository(db)

	agent := models.NewAgent("Quality Agent")
	require.NoError(t, agentRepo.Create(agent))

	_, err := db.Exec(
		`INSERT INTO repositories (github_repo_id, owner, name) VALUES (?, ?, ?)`,
		100, "acme", "widgets",
	)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO pull_requests (github_repo_id, pr_number, title, author, head_sha) VALUES (?, ?, ?, ?, ?)`,
		100, 7, "Add cache", "dev", "abc123",
	)
	require.NoError(t, err)

	insertEvaluation(t, db, evalRepo, testEvaluation(agent.ID, 8))

	reviews, err := evalRepo.GetReviews(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	review := reviews[0]
	assert.Equal(t, "Quality Agent", review.AgentName)
	assert.Equal(t, "acme/widgets", review.Repository)
	require.NotNil(t, review.PRTitle)
	assert.Equal(t, "Add cache", *review.PRTitle)
	assert.Equal(t, 8, review.Scores.Correctness)
	assert.Equal(t, "reason", review.Reasons.Correctness)
}

func TestGetReviewsUnknownAgentFallback(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)

	insertEvaluation(t, db, evalRepo, testEvaluation("gone-agent", 5))

	reviews, err := evalRepo.GetReviews(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Unknown Agent", reviews[0].AgentName)
	assert.Nil(t, reviews[0].AgentDescription)
}

func TestGetReviewsFilterByAgent(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)

	insertEvaluation(t, db, evalRepo, testEvaluation("agent-a", 8))
	insertEvaluation(t, db, evalRepo, testEvaluation("agent-b", 3))

	reviews, err := evalRepo.GetReviews(&models.ReviewFilters{AgentID: "agent-a"})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "agent-a", reviews[0].AgentID)
}

func TestGetReviewsLimitAndOffset(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)

	for i := 0; i < 5; i++ {
		insertEvaluation(t, db, evalRepo, testEvaluation(fmt.Sprintf("agent-%d", i), i))
	}

	reviews, err := evalRepo.GetReviews(&models.ReviewFilters{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	reviews, err = evalRepo.GetReviews(&models.ReviewFilters{Limit: 10, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestGetReviewStats(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)

	insertEvaluation(t, db, evalRepo, testEvaluation("agent-a", 8))
	insertEvaluation(t, db, evalRepo, testEvaluation("agent-a", 6))
	insertEvaluation(t, db, evalRepo, testEvaluation("agent-b", 4))

	stats, err := evalRepo.GetReviewStats(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalReviews)
	assert.InDelta(t, 6.0, stats.AverageScores.Correctness, 0.001)

	require.Len(t, stats.TrendData, 3)
	assert.Equal(t, 1, stats.TrendData[0].Index)
	assert.Equal(t, 3, stats.TrendData[2].Index)

	require.Len(t, stats.AgentStats, 2)
	// Highest average first.
	assert.Equal(t, "agent-a", stats.AgentStats[0].AgentID)
	assert.InDelta(t, 7.0, stats.AgentStats[0].AvgScore, 0.001)
	assert.Equal(t, 2, stats.AgentStats[0].ReviewCount)
	assert.Equal(t, "agent-b", stats.AgentStats[1].AgentID)
}

func TestGetReviewStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	evalRepo := NewEvaluationRepository(db)

	stats, err := evalRepo.GetReviewStats(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageScores.Correctness)
	assert.Empty(t, stats.TrendData)
	assert.Empty(t, stats.AgentStats)
}
