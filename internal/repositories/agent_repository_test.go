package repositories

import (
	"database/sql"
	"testing"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db)

	agent := models.NewAgent("Security Agent")
	agent.Description = "Looks for injection issues"
	agent.PromptHTML = "Review {code_chunk} for security problems"
	agent.Settings.FileTypeFilters = []string{"go", "ts"}
	agent.Settings.Repositories = []string{"acme/widgets"}

	require.NoError(t, repo.Create(agent))

	stored, err := repo.GetByID(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.Name, stored.Name)
	assert.Equal(t, agent.Description, stored.Description)
	assert.Equal(t, agent.PromptHTML, stored.PromptHTML)
	assert.Equal(t, agent.Variables, stored.Variables)
	assert.Equal(t, []string{"go", "ts"}, stored.Settings.FileTypeFilters)
	assert.Equal(t, []string{"acme/widgets"}, stored.Settings.Repositories)
	assert.True(t, stored.Settings.Enabled)
}

func TestAgentRepositoryGetEnabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db)

	enabled := models.NewAgent("enabled")
	require.NoError(t, repo.Create(enabled))

	disabled := models.NewAgent("disabled")
	disabled.Settings.Enabled = false
	require.NoError(t, repo.Create(disabled))

	agents, err := repo.GetEnabled()
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "enabled", agents[0].Name)
}

func TestAgentRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db)

	agent := models.NewAgent("original")
	require.NoError(t, repo.Create(agent))

	agent.Name = "renamed"
	agent.Settings.Enabled = false
	require.NoError(t, repo.Update(agent))

	stored, err := repo.GetByID(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Name)
	assert.False(t, stored.Settings.Enabled)
}

func TestAgentRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db)

	agent := models.NewAgent("ephemeral")
	require.NoError(t, repo.Create(agent))
	require.NoError(t, repo.Delete(agent.ID))

	_, err := repo.GetByID(agent.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Deleting again reports the missing row.
	assert.ErrorIs(t, repo.Delete(agent.ID), sql.ErrNoRows)
}
