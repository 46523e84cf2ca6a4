package repositories

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory database with the full schema applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// In-memory databases are per connection
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func insertRun(db *sql.DB, repo *EvaluationRunRepository, run *models.EvaluationRun) error {
	return database.WithTransaction(db, func(tx *sql.Tx) error {
		return repo.InsertTx(tx, run)
	})
}

func TestEvaluationRunDuplicateDetection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRunRepository(db)

	run := &models.EvaluationRun{
		GithubRepoID: 100,
		PRNumber:     7,
		AgentID:      "agent-1",
		HeadSHA:      "abc123",
		Status:       models.RunStatusSuccess,
	}

	require.NoError(t, insertRun(db, repo, run))

	// Same natural key again conflicts.
	err := insertRun(db, repo, run)
	require.Error(t, err)
	assert.True(t, IsDuplicateRunErr(err), "a repeated run insert should be recognized as a duplicate")

	// A different head SHA is a fresh run.
	fresh := *run
	fresh.HeadSHA = "def456"
	assert.NoError(t, insertRun(db, repo, &fresh))
}

func TestEvaluationRunRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEvaluationRunRepository(db)

	message := "model overloaded"
	run := &models.EvaluationRun{
		GithubRepoID: 100,
		PRNumber:     7,
		AgentID:      "agent-1",
		HeadSHA:      "abc123",
		Status:       models.RunStatusFailed,
		ErrorMessage: &message,
	}
	require.NoError(t, insertRun(db, repo, run))

	stored, err := repo.GetByNaturalKey(100, 7, "agent-1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Equal(t, message, *stored.ErrorMessage)
}

func TestIsDuplicateRunErrOnOtherErrors(t *testing.T) {
	assert.False(t, IsDuplicateRunErr(nil))
	assert.False(t, IsDuplicateRunErr(errors.New("plain error")))
	assert.False(t, IsDuplicateRunErr(sql.ErrNoRows))
}
