package repositories

import (
	"database/sql"
	"strings"

	"github.com/codedoctor/codedoctor/pkg/database"
)

// AgentRepoMappingRepository maintains the agent_repositories table,
// a mirror of each agent's settings.repositories list kept for
// efficient per-repository lookup.
type AgentRepoMappingRepository struct {
	db *sql.DB
}

func NewAgentRepoMappingRepository(db *sql.DB) *AgentRepoMappingRepository {
	return &AgentRepoMappingRepository{db: db}
}

// GetRepositoriesForAgent returns the full names mapped to an agent
func (r *AgentRepoMappingRepository) GetRepositoriesForAgent(agentID string) ([]string, error) {
	query := `SELECT repository_full_name FROM agent_repositories WHERE agent_id = ? ORDER BY created_at ASC`

	rows, err := r.db.Query(query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// GetAgentIDsForRepository returns the agent ids mapped to a repository
func (r *AgentRepoMappingRepository) GetAgentIDsForRepository(repositoryFullName string) ([]string, error) {
	query := `SELECT agent_id FROM agent_repositories WHERE repository_full_name = ?`

	rows, err := r.db.Query(query, repositoryFullName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// SetRepositoriesForAgent replaces the mappings for an agent in one
// transaction. Empty or whitespace-only names are dropped.
func (r *AgentRepoMappingRepository) SetRepositoriesForAgent(agentID string, repositoryFullNames []string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM agent_repositories WHERE agent_id = ?`, agentID); err != nil {
			return err
		}

		for _, name := range repositoryFullNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO agent_repositories (agent_id, repository_full_name) VALUES (?, ?)`,
				agentID, name,
			); err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteForAgent removes all mappings for an agent
func (r *AgentRepoMappingRepository) DeleteForAgent(agentID string) error {
	_, err := r.db.Exec(`DELETE FROM agent_repositories WHERE agent_id = ?`, agentID)
	return err
}
