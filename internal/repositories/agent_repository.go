package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/pkg/logger"
)

type AgentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

func (r *AgentRepository) Create(agent *models.Agent) error {
	variables, err := json.Marshal(agent.Variables)
	if err != nil {
		return err
	}
	dimensions, err := json.Marshal(agent.EvaluationDimensions)
	if err != nil {
		return err
	}
	settings, err := json.Marshal(agent.Settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agents (id, name, description, prompt_html, variables, evaluation_dimensions, settings)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		agent.ID, agent.Name, agent.Description, agent.PromptHTML,
		string(variables), string(dimensions), string(settings),
	)

	return err
}

func (r *AgentRepository) GetByID(id string) (*models.Agent, error) {
	query := `SELECT id, name, description, prompt_html, variables, evaluation_dimensions, settings, created_at, updated_at FROM agents WHERE id = ?`

	row := r.db.QueryRow(query, id)
	return scanAgent(row)
}

// GetAll returns every agent in creation order, newest first
func (r *AgentRepository) GetAll() ([]*models.Agent, error) {
	query := `SELECT id, name, description, prompt_html, variables, evaluation_dimensions, settings, created_at, updated_at FROM agents ORDER BY created_at DESC`

	return r.queryAgents(query)
}

// GetEnabled returns enabled agents in creation order. The enabled
// flag lives inside the settings JSON column.
func (r *AgentRepository) GetEnabled() ([]*models.Agent, error) {
	query := `
		SELECT id, name, description, prompt_html, variables, evaluation_dimensions, settings, created_at, updated_at
		FROM agents
		WHERE json_extract(settings, '$.enabled') = 1 OR json_extract(settings, '$.enabled') = true
		ORDER BY created_at ASC
	`

	return r.queryAgents(query)
}

func (r *AgentRepository) Update(agent *models.Agent) error {
	variables, err := json.Marshal(agent.Variables)
	if err != nil {
		return err
	}
	dimensions, err := json.Marshal(agent.EvaluationDimensions)
	if err != nil {
		return err
	}
	settings, err := json.Marshal(agent.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE agents SET
			name = ?, description = ?, prompt_html = ?,
			variables = ?, evaluation_dimensions = ?, settings = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err = r.db.Exec(query,
		agent.Name, agent.Description, agent.PromptHTML,
		string(variables), string(dimensions), string(settings),
		agent.ID,
	)

	return err
}

func (r *AgentRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AgentRepository) queryAgents(query string, args ...interface{}) ([]*models.Agent, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*models.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	return agents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAgent(row rowScanner) (*models.Agent, error) {
	var agent models.Agent
	var variables, dimensions, settings string

	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Description, &agent.PromptHTML,
		&variables, &dimensions, &settings,
		&agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	agent.Variables = parseJSONStrings(variables, models.DefaultAgentVariables)

	agent.EvaluationDimensions = models.DefaultEvaluationDimensions()
	if dimensions != "" {
		if err := json.Unmarshal([]byte(dimensions), &agent.EvaluationDimensions); err != nil {
			logger.WithError(err).Warnf("Failed to parse evaluation dimensions for agent %s", agent.ID)
			agent.EvaluationDimensions = models.DefaultEvaluationDimensions()
		}
	}

	parsed := models.DefaultAgentSettings()
	if settings != "" {
		if err := json.Unmarshal([]byte(settings), &parsed); err != nil {
			logger.WithError(err).Warnf("Failed to parse settings for agent %s", agent.ID)
			parsed = models.DefaultAgentSettings()
		}
	}
	agent.Settings = models.NormalizeSettings(&parsed)

	return &agent, nil
}

func parseJSONStrings(value string, defaultValue []string) []string {
	if value == "" {
		return append([]string{}, defaultValue...)
	}

	var parsed []string
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return append([]string{}, defaultValue...)
	}
	if parsed == nil {
		return []string{}
	}
	return parsed
}
