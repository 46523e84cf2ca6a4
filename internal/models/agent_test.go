package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAgentDefaults(t *testing.T) {
	agent := NewAgent("Code Quality")

	assert.NotEmpty(t, agent.ID)
	assert.Equal(t, "Code Quality", agent.Name)
	assert.Equal(t, DefaultAgentVariables, agent.Variables)

	assert.True(t, agent.Settings.Enabled)
	assert.Equal(t, 6, agent.Settings.SeverityThreshold)
	assert.Empty(t, agent.Settings.FileTypeFilters)
	assert.Empty(t, agent.Settings.Repositories)

	assert.True(t, agent.EvaluationDimensions.Relevance)
	assert.True(t, agent.EvaluationDimensions.Helpfulness)
}

func TestNewAgentVariablesAreIndependent(t *testing.T) {
	agent := NewAgent("one")
	agent.Variables[0] = "{custom}"

	assert.Equal(t, "{code_chunk}", DefaultAgentVariables[0], "mutating an agent must not change the defaults")
}

func TestNormalizeSettings(t *testing.T) {
	testCases := []struct {
		name        string
		input       *AgentSettings
		expected    AgentSettings
		description string
	}{
		{
			name:        "Nil settings get full defaults",
			input:       nil,
			expected:    DefaultAgentSettings(),
			description: "Missing settings should fall back to the defaults",
		},
		{
			name:  "Threshold below range resets to default",
			input: &AgentSettings{Enabled: true, SeverityThreshold: 0},
			expected: AgentSettings{
				Enabled:           true,
				SeverityThreshold: 6,
				FileTypeFilters:   []string{},
				Repositories:      []string{},
			},
			description: "A zero threshold should reset to 6",
		},
		{
			name:  "Threshold above range resets to default",
			input: &AgentSettings{Enabled: true, SeverityThreshold: 15},
			expected: AgentSettings{
				Enabled:           true,
				SeverityThreshold: 6,
				FileTypeFilters:   []string{},
				Repositories:      []string{},
			},
			description: "A threshold above 10 should reset to 6",
		},
		{
			name: "Valid settings pass through",
			input: &AgentSettings{
				Enabled:           false,
				SeverityThreshold: 3,
				FileTypeFilters:   []string{"go"},
				Repositories:      []string{"acme/widgets"},
			},
			expected: AgentSettings{
				Enabled:           false,
				SeverityThreshold: 3,
				FileTypeFilters:   []string{"go"},
				Repositories:      []string{"acme/widgets"},
			},
			description: "In-range settings should not be modified",
		},
		{
			name:  "Nil slices become empty slices",
			input: &AgentSettings{Enabled: true, SeverityThreshold: 5},
			expected: AgentSettings{
				Enabled:           true,
				SeverityThreshold: 5,
				FileTypeFilters:   []string{},
				Repositories:      []string{},
			},
			description: "Nil filter slices should serialize as empty arrays, not null",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeSettings(tc.input), tc.description)
		})
	}
}
