package services

import (
	"errors"
	"strings"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/repositories"
	"github.com/codedoctor/codedoctor/pkg/logger"
)

type AgentService struct {
	agentRepo   *repositories.AgentRepository
	mappingRepo *repositories.AgentRepoMappingRepository
}

func NewAgentService(agentRepo *repositories.AgentRepository, mappingRepo *repositories.AgentRepoMappingRepository) *AgentService {
	return &AgentService{
		agentRepo:   agentRepo,
		mappingRepo: mappingRepo,
	}
}

func (s *AgentService) GetAllAgents() ([]*models.Agent, error) {
	return s.agentRepo.GetAll()
}

func (s *AgentService) GetAgentByID(id string) (*models.Agent, error) {
	if id == "" {
		return nil, errors.New("agent ID is required")
	}
	return s.agentRepo.GetByID(id)
}

// CreateAgent stores a new agent. Settings are normalized before the
// write and the repositories list is mirrored into the mapping table.
func (s *AgentService) CreateAgent(agent *models.Agent) error {
	if agent.ID == "" || agent.Name == "" {
		return errors.New("agent ID and name are required")
	}

	if len(agent.Variables) == 0 {
		agent.Variables = append([]string{}, models.DefaultAgentVariables...)
	}
	agent.Settings = models.NormalizeSettings(&agent.Settings)

	if err := s.agentRepo.Create(agent); err != nil {
		return err
	}

	return s.mappingRepo.SetRepositoriesForAgent(agent.ID, agent.Settings.Repositories)
}

func (s *AgentService) UpdateAgent(agent *models.Agent) error {
	if agent.ID == "" || agent.Name == "" {
		return errors.New("agent ID and name are required")
	}

	agent.Settings = models.NormalizeSettings(&agent.Settings)

	if err := s.agentRepo.Update(agent); err != nil {
		return err
	}

	return s.mappingRepo.SetRepositoriesForAgent(agent.ID, agent.Settings.Repositories)
}

func (s *AgentService) DeleteAgent(id string) error {
	if id == "" {
		return errors.New("agent ID is required")
	}

	if err := s.agentRepo.Delete(id); err != nil {
		return err
	}

	return s.mappingRepo.DeleteForAgent(id)
}

// SelectAgents returns the enabled agents whose repository and
// file-type filters both match, in creation order. Database errors
// propagate; an empty result is not an error.
func (s *AgentService) SelectAgents(repositoryFullName, fileExtension string) ([]*models.Agent, error) {
	enabled, err := s.agentRepo.GetEnabled()
	if err != nil {
		return nil, err
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	logger.Debugf("Checking %d enabled agent(s) for repo %s, file type %q", len(enabled), repositoryFullName, fileExtension)

	return MatchAgents(enabled, repositoryFullName, fileExtension), nil
}

// MatchAgents filters agents by repository and file-type scope.
// Repository entries match the candidate full name case-insensitively
// and only on exact equality; file filters are compared dot-stripped
// and lower-cased. An empty filter set matches everything.
func MatchAgents(agents []*models.Agent, repositoryFullName, fileExtension string) []*models.Agent {
	var matched []*models.Agent

	for _, agent := range agents {
		if !agent.Settings.Enabled {
			continue
		}
		if !repositoryFilterMatches(agent.Settings.Repositories, repositoryFullName) {
			logger.Debugf("Agent %q repository filter does not match %s", agent.Name, repositoryFullName)
			continue
		}
		if !fileTypeFilterMatches(agent.Settings.FileTypeFilters, fileExtension) {
			logger.Debugf("Agent %q file type filter does not match %q", agent.Name, fileExtension)
			continue
		}
		matched = append(matched, agent)
	}

	return matched
}

func repositoryFilterMatches(repositories []string, fullName string) bool {
	if len(repositories) == 0 {
		return true
	}

	candidate := strings.ToLower(strings.TrimSpace(fullName))
	for _, repo := range repositories {
		if strings.ToLower(strings.TrimSpace(repo)) == candidate {
			return true
		}
	}

	return false
}

func fileTypeFilterMatches(filters []string, extension string) bool {
	if len(filters) == 0 {
		return true
	}

	normalized := normalizeExtension(extension)
	for _, filter := range filters {
		if normalizeExtension(filter) == normalized {
			return true
		}
	}

	return false
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// GetFileExtension returns the substring after the last '.' of a
// filename, or "" when there is none.
func GetFileExtension(filename string) string {
	lastDot := strings.LastIndex(filename, ".")
	if lastDot == -1 || lastDot == len(filename)-1 {
		return ""
	}
	return filename[lastDot+1:]
}
