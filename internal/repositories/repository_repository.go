package repositories

import (
	"database/sql"

	"github.com/codedoctor/codedoctor/internal/models"
)

type RepositoryRepository struct {
	db *sql.DB
}

func NewRepositoryRepository(db *sql.DB) *RepositoryRepository {
	return &RepositoryRepository{db: db}
}

// UpsertTx inserts a repository or, on conflict on the GitHub id,
// refreshes every mutable metadata field. The GitHub id itself is
// never changed.
func (r *RepositoryRepository) UpsertTx(tx *sql.Tx, repo *models.Repository) error {
	query := `
		INSERT INTO repositories (
			github_repo_id, owner, name, description, url, html_url,
			is_private, default_branch, language, stars_count, forks_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (github_repo_id) DO UPDATE SET
			owner = excluded.owner,
			name = excluded.name,
			description = excluded.description,
			url = excluded.url,
			html_url = excluded.html_url,
			is_private = excluded.is_private,
			default_branch = excluded.default_branch,
			language = excluded.language,
			stars_count = excluded.stars_count,
			forks_count = excluded.forks_count,
			updated_at = CURRENT_TIMESTAMP
	`

	defaultBranch := repo.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	_, err := tx.Exec(query,
		repo.GithubRepoID, repo.Owner, repo.Name, repo.Description, repo.URL, repo.HTMLURL,
		repo.IsPrivate, defaultBranch, repo.Language, repo.StarsCount, repo.ForksCount,
	)

	return err
}

func (r *RepositoryRepository) GetByGithubID(githubRepoID int64) (*models.Repository, error) {
	query := selectRepositoryColumns + ` WHERE github_repo_id = ?`

	return scanRepository(r.db.QueryRow(query, githubRepoID))
}

func (r *RepositoryRepository) GetByFullName(fullName string) (*models.Repository, error) {
	query := selectRepositoryColumns + ` WHERE lower(owner || '/' || name) = lower(?)`

	return scanRepository(r.db.QueryRow(query, fullName))
}

// GetAll lists repositories, optionally with PR and review counts
func (r *RepositoryRepository) GetAll(includeStats bool) ([]*models.Repository, error) {
	if !includeStats {
		rows, err := r.db.Query(selectRepositoryColumns + ` ORDER BY created_at DESC`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var repos []*models.Repository
		for rows.Next() {
			repo, err := scanRepository(rows)
			if err != nil {
				return nil, err
			}
			repos = append(repos, repo)
		}
		return repos, rows.Err()
	}

	query := `
		SELECT
			r.id, r.github_repo_id, r.owner, r.name, r.description, r.url, r.html_url,
			r.is_private, r.default_branch, r.language, r.stars_count, r.forks_count,
			r.created_at, r.updated_at,
			COUNT(DISTINCT pr.id) AS pr_count,
			COUNT(DISTINCT ce.id) AS review_count
		FROM repositories r
		LEFT JOIN pull_requests pr ON r.github_repo_id = pr.github_repo_id
		LEFT JOIN code_evaluations ce ON r.github_repo_id = ce.github_repo_id
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []*models.Repository
	for rows.Next() {
		var repo models.Repository
		var prCount, reviewCount int
		err := rows.Scan(
			&repo.ID, &repo.GithubRepoID, &repo.Owner, &repo.Name, &repo.Description,
			&repo.URL, &repo.HTMLURL, &repo.IsPrivate, &repo.DefaultBranch, &repo.Language,
			&repo.StarsCount, &repo.ForksCount, &repo.CreatedAt, &repo.UpdatedAt,
			&prCount, &reviewCount,
		)
		if err != nil {
			return nil, err
		}
		repo.PRCount = &prCount
		repo.ReviewCount = &reviewCount
		repos = append(repos, &repo)
	}

	return repos, rows.Err()
}

const selectRepositoryColumns = `
	SELECT id, github_repo_id, owner, name, description, url, html_url,
		is_private, default_branch, language, stars_count, forks_count,
		created_at, updated_at
	FROM repositories`

func scanRepository(row rowScanner) (*models.Repository, error) {
	var repo models.Repository
	err := row.Scan(
		&repo.ID, &repo.GithubRepoID, &repo.Owner, &repo.Name, &repo.Description,
		&repo.URL, &repo.HTMLURL, &repo.IsPrivate, &repo.DefaultBranch, &repo.Language,
		&repo.StarsCount, &repo.ForksCount, &repo.CreatedAt, &repo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &repo, nil
}
