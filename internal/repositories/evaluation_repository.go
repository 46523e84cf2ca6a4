package repositories

import (
	"database/sql"

	"github.com/codedoctor/codedoctor/internal/models"
)

type EvaluationRepository struct {
	db *sql.DB
}

func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// InsertTx appends one evaluation row. Evaluations are never updated
// or deleted; history is the reviewable record.
func (r *EvaluationRepository) InsertTx(tx *sql.Tx, eval *models.Evaluation) error {
	query := `
		INSERT INTO code_evaluations (
			github_repo_id, pr_number, agent_id,
			correctness_score, security_score, maintainability_score,
			clarity_score, production_readiness_score,
			correctness_reason, security_reason, maintainability_reason,
			clarity_reason, production_readiness_reason,
			overall_summary, evaluation_model, evaluation_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query,
		eval.GithubRepoID, eval.PRNumber, eval.AgentID,
		eval.Review.Scores.Correctness, eval.Review.Scores.Security, eval.Review.Scores.Maintainability,
		eval.Review.Scores.Clarity, eval.Review.Scores.ProductionReadiness,
		eval.Review.Justification.Correctness, eval.Review.Justification.Security, eval.Review.Justification.Maintainability,
		eval.Review.Justification.Clarity, eval.Review.Justification.ProductionReadiness,
		eval.Review.OverallSummary, eval.EvaluationModel, eval.EvaluationVersion,
	)

	return err
}

// GetReviews lists evaluations joined with agent, repository and pull
// request metadata, newest first.
func (r *EvaluationRepository) GetReviews(filters *models.ReviewFilters) ([]*models.Review, error) {
	query := `
		SELECT
			ce.id, ce.agent_id,
			COALESCE(a.name, 'Unknown Agent') AS agent_name,
			a.description AS agent_description,
			COALESCE(r.owner || '/' || r.name, '') AS repository,
			ce.pr_number, pr.title AS pr_title, pr.author AS pr_author,
			ce.correctness_score, ce.security_score, ce.maintainability_score,
			ce.clarity_score, ce.production_readiness_score,
			ce.correctness_reason, ce.security_reason, ce.maintainability_reason,
			ce.clarity_reason, ce.production_readiness_reason,
			ce.overall_summary, ce.evaluation_model, ce.evaluation_version,
			ce.created_at
		FROM code_evaluations ce
		LEFT JOIN agents a ON ce.agent_id = a.id
		LEFT JOIN repositories r ON ce.github_repo_id = r.github_repo_id
		LEFT JOIN pull_requests pr ON ce.github_repo_id = pr.github_repo_id
			AND ce.pr_number = pr.pr_number
		WHERE 1=1
	`

	var params []interface{}
	query, params = appendReviewFilters(query, params, filters, "ce")

	query += ` ORDER BY ce.created_at DESC`

	if filters != nil && filters.Limit > 0 {
		query += ` LIMIT ?`
		params = append(params, filters.Limit)

		if filters.Offset > 0 {
			query += ` OFFSET ?`
			params = append(params, filters.Offset)
		}
	}

	rows, err := r.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		var review models.Review
		var reasons [5]sql.NullString
		err := rows.Scan(
			&review.ID, &review.AgentID, &review.AgentName, &review.AgentDescription,
			&review.Repository, &review.PRNumber, &review.PRTitle, &review.PRAuthor,
			&review.Scores.Correctness, &review.Scores.Security, &review.Scores.Maintainability,
			&review.Scores.Clarity, &review.Scores.ProductionReadiness,
			&reasons[0], &reasons[1], &reasons[2], &reasons[3], &reasons[4],
			&review.OverallSummary, &review.EvaluationModel, &review.EvaluationVersion,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		review.Reasons = models.ReviewJustification{
			Correctness:         reasons[0].String,
			Security:            reasons[1].String,
			Maintainability:     reasons[2].String,
			Clarity:             reasons[3].String,
			ProductionReadiness: reasons[4].String,
		}
		reviews = append(reviews, &review)
	}

	return reviews, rows.Err()
}

// GetReviewStats aggregates totals, per-dimension averages, the
// last-50 trend (oldest to newest) and a per-agent comparison.
func (r *EvaluationRepository) GetReviewStats(filters *models.ReviewFilters) (*models.ReviewStats, error) {
	stats := &models.ReviewStats{
		TrendData:  []models.TrendPoint{},
		AgentStats: []models.AgentComparison{},
	}

	statsQuery := `
		SELECT
			COUNT(*),
			COALESCE(AVG(correctness_score), 0),
			COALESCE(AVG(security_score), 0),
			COALESCE(AVG(maintainability_score), 0),
			COALESCE(AVG(clarity_score), 0),
			COALESCE(AVG(production_readiness_score), 0)
		FROM code_evaluations ce
		WHERE 1=1
	`

	var params []interface{}
	statsQuery, params = appendReviewFilters(statsQuery, params, filters, "ce")

	err := r.db.QueryRow(statsQuery, params...).Scan(
		&stats.TotalReviews,
		&stats.AverageScores.Correctness,
		&stats.AverageScores.Security,
		&stats.AverageScores.Maintainability,
		&stats.AverageScores.Clarity,
		&stats.AverageScores.ProductionReadiness,
	)
	if err != nil {
		return nil, err
	}

	trendQuery := `
		SELECT
			(correctness_score + security_score + maintainability_score +
			 clarity_score + production_readiness_score) / 5.0 AS helpfulness
		FROM code_evaluations ce
		WHERE 1=1
	`
	trendQuery, trendParams := appendReviewFilters(trendQuery, nil, filters, "ce")
	trendQuery += ` ORDER BY ce.created_at DESC LIMIT 50`

	trendRows, err := r.db.Query(trendQuery, trendParams...)
	if err != nil {
		return nil, err
	}
	defer trendRows.Close()

	var helpfulness []float64
	for trendRows.Next() {
		var h float64
		if err := trendRows.Scan(&h); err != nil {
			return nil, err
		}
		helpfulness = append(helpfulness, h)
	}
	if err := trendRows.Err(); err != nil {
		return nil, err
	}

	// Rows come newest first; the trend is reported oldest to newest
	for i := len(helpfulness) - 1; i >= 0; i-- {
		stats.TrendData = append(stats.TrendData, models.TrendPoint{
			Index:       len(helpfulness) - i,
			Helpfulness: helpfulness[i],
		})
	}

	agentQuery := `
		SELECT
			ce.agent_id,
			COALESCE(a.name, 'Unknown Agent') AS agent_name,
			AVG((ce.correctness_score + ce.security_score + ce.maintainability_score +
			     ce.clarity_score + ce.production_readiness_score) / 5.0) AS avg_score,
			COUNT(*) AS review_count
		FROM code_evaluations ce
		LEFT JOIN agents a ON ce.agent_id = a.id
		WHERE 1=1
	`
	agentQuery, agentParams := appendReviewFilters(agentQuery, nil, filters, "ce")
	agentQuery += ` GROUP BY ce.agent_id, a.name ORDER BY avg_score DESC`

	agentRows, err := r.db.Query(agentQuery, agentParams...)
	if err != nil {
		return nil, err
	}
	defer agentRows.Close()

	for agentRows.Next() {
		var cmp models.AgentComparison
		if err := agentRows.Scan(&cmp.AgentID, &cmp.AgentName, &cmp.AvgScore, &cmp.ReviewCount); err != nil {
			return nil, err
		}
		stats.AgentStats = append(stats.AgentStats, cmp)
	}

	return stats, agentRows.Err()
}

func appendReviewFilters(query string, params []interface{}, filters *models.ReviewFilters, alias string) (string, []interface{}) {
	if filters == nil {
		return query, params
	}

	if filters.AgentID != "" {
		query += ` AND ` + alias + `.agent_id = ?`
		params = append(params, filters.AgentID)
	}
	if filters.StartDate != "" {
		query += ` AND DATE(` + alias + `.created_at) >= ?`
		params = append(params, filters.StartDate)
	}
	if filters.EndDate != "" {
		query += ` AND DATE(` + alias + `.created_at) <= ?`
		params = append(params, filters.EndDate)
	}

	return query, params
}
