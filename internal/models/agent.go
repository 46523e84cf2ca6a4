package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAgentVariables are the placeholder slots every new agent starts with.
var DefaultAgentVariables = []string{"{code_chunk}", "{file_type}", "{context}"}

// Agent represents a configured review persona with a prompt template
// and repository/file-type scoping filters
type Agent struct {
	ID                   string               `json:"id"`
	Name                 string               `json:"name"`
	Description          string               `json:"description"`
	PromptHTML           string               `json:"promptHtml"`
	Variables            []string             `json:"variables"`
	EvaluationDimensions EvaluationDimensions `json:"evaluationDimensions"`
	Settings             AgentSettings        `json:"settings"`
	CreatedAt            time.Time            `json:"createdAt"`
	UpdatedAt            time.Time            `json:"updatedAt"`
}

// EvaluationDimensions are informational toggles surfaced by the dashboard
type EvaluationDimensions struct {
	Relevance     bool `json:"relevance"`
	Accuracy      bool `json:"accuracy"`
	Actionability bool `json:"actionability"`
	Clarity       bool `json:"clarity"`
	Helpfulness   bool `json:"helpfulness"`
}

// AgentSettings controls whether and where an agent runs
type AgentSettings struct {
	Enabled           bool     `json:"enabled"`
	SeverityThreshold int      `json:"severityThreshold"`
	FileTypeFilters   []string `json:"fileTypeFilters"`
	Repositories      []string `json:"repositories"`
}

// NewAgent creates a new Agent with a generated UUID and default settings
func NewAgent(name string) *Agent {
	return &Agent{
		ID:                   uuid.New().String(),
		Name:                 name,
		Variables:            append([]string{}, DefaultAgentVariables...),
		EvaluationDimensions: DefaultEvaluationDimensions(),
		Settings:             DefaultAgentSettings(),
	}
}

// DefaultAgentSettings returns the settings applied to agents created
// without an explicit settings record
func DefaultAgentSettings() AgentSettings {
	return AgentSettings{
		Enabled:           true,
		SeverityThreshold: 6,
		FileTypeFilters:   []string{},
		Repositories:      []string{},
	}
}

// DefaultEvaluationDimensions returns all dimensions enabled
func DefaultEvaluationDimensions() EvaluationDimensions {
	return EvaluationDimensions{
		Relevance:     true,
		Accuracy:      true,
		Actionability: true,
		Clarity:       true,
		Helpfulness:   true,
	}
}

// NormalizeSettings fills missing sub-fields of a partially supplied
// settings record. Every place settings are read or written goes
// through this so defaults are applied exactly once.
func NormalizeSettings(s *AgentSettings) AgentSettings {
	if s == nil {
		return DefaultAgentSettings()
	}

	normalized := *s
	if normalized.SeverityThreshold < 1 || normalized.SeverityThreshold > 10 {
		normalized.SeverityThreshold = 6
	}
	if normalized.FileTypeFilters == nil {
		normalized.FileTypeFilters = []string{}
	}
	if normalized.Repositories == nil {
		normalized.Repositories = []string{}
	}
	return normalized
}
