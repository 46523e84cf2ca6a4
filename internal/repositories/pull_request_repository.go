package repositories

import (
	"database/sql"

	"github.com/codedoctor/codedoctor/internal/models"
)

type PullRequestRepository struct {
	db *sql.DB
}

func NewPullRequestRepository(db *sql.DB) *PullRequestRepository {
	return &PullRequestRepository{db: db}
}

// UpsertTx inserts a pull request or, on conflict on (repo, number),
// refreshes title, author and head SHA to the latest event state.
func (r *PullRequestRepository) UpsertTx(tx *sql.Tx, pr *models.PullRequest) error {
	query := `
		INSERT INTO pull_requests (github_repo_id, pr_number, title, author, head_sha)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (github_repo_id, pr_number) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			head_sha = excluded.head_sha,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := tx.Exec(query, pr.GithubRepoID, pr.PRNumber, pr.Title, pr.Author, pr.HeadSHA)
	return err
}

func (r *PullRequestRepository) GetByRepoAndNumber(githubRepoID int64, prNumber int) (*models.PullRequest, error) {
	query := `
		SELECT id, github_repo_id, pr_number, title, author, head_sha, created_at, updated_at
		FROM pull_requests
		WHERE github_repo_id = ? AND pr_number = ?
	`

	var pr models.PullRequest
	err := r.db.QueryRow(query, githubRepoID, prNumber).Scan(
		&pr.ID, &pr.GithubRepoID, &pr.PRNumber, &pr.Title, &pr.Author, &pr.HeadSHA,
		&pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &pr, nil
}

func (r *PullRequestRepository) GetByRepositoryID(githubRepoID int64) ([]*models.PullRequest, error) {
	query := `
		SELECT id, github_repo_id, pr_number, title, author, head_sha, created_at, updated_at
		FROM pull_requests
		WHERE github_repo_id = ?
		ORDER BY pr_number DESC
	`

	rows, err := r.db.Query(query, githubRepoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pullRequests []*models.PullRequest
	for rows.Next() {
		var pr models.PullRequest
		err := rows.Scan(
			&pr.ID, &pr.GithubRepoID, &pr.PRNumber, &pr.Title, &pr.Author, &pr.HeadSHA,
			&pr.CreatedAt, &pr.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		pullRequests = append(pullRequests, &pr)
	}

	return pullRequests, rows.Err()
}
