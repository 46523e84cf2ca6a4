package repositories

import (
	"database/sql"
	"errors"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/mattn/go-sqlite3"
)

type EvaluationRunRepository struct {
	db *sql.DB
}

func NewEvaluationRunRepository(db *sql.DB) *EvaluationRunRepository {
	return &EvaluationRunRepository{db: db}
}

// InsertTx appends one run record. The (repo, PR, agent, head SHA) key
// is unique, so inserting the same attempt twice fails with a conflict
// error that IsDuplicateRunErr recognizes.
func (r *EvaluationRunRepository) InsertTx(tx *sql.Tx, run *models.EvaluationRun) error {
	query := `
		INSERT INTO evaluation_runs (github_repo_id, pr_number, agent_id, head_sha, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		run.GithubRepoID, run.PRNumber, run.AgentID, run.HeadSHA,
		run.Status, run.ErrorMessage,
	)

	return err
}

func (r *EvaluationRunRepository) GetByNaturalKey(githubRepoID int64, prNumber int, agentID, headSHA string) (*models.EvaluationRun, error) {
	query := `
		SELECT id, github_repo_id, pr_number, agent_id, head_sha, status, error_message, created_at
		FROM evaluation_runs
		WHERE github_repo_id = ? AND pr_number = ? AND agent_id = ? AND head_sha = ?
	`

	var run models.EvaluationRun
	err := r.db.QueryRow(query, githubRepoID, prNumber, agentID, headSHA).Scan(
		&run.ID, &run.GithubRepoID, &run.PRNumber, &run.AgentID, &run.HeadSHA,
		&run.Status, &run.ErrorMessage, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// IsDuplicateRunErr reports whether err is the unique-constraint
// violation raised by a repeated run insert for the same head SHA.
func IsDuplicateRunErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
