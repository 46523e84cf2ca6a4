package services

import (
	"errors"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/repositories"
)

type RepositoryService struct {
	repoRepo    *repositories.RepositoryRepository
	mappingRepo *repositories.AgentRepoMappingRepository
	agentRepo   *repositories.AgentRepository
}

func NewRepositoryService(
	repoRepo *repositories.RepositoryRepository,
	mappingRepo *repositories.AgentRepoMappingRepository,
	agentRepo *repositories.AgentRepository,
) *RepositoryService {
	return &RepositoryService{
		repoRepo:    repoRepo,
		mappingRepo: mappingRepo,
		agentRepo:   agentRepo,
	}
}

func (s *RepositoryService) GetAllRepositories(includeStats bool) ([]*models.Repository, error) {
	return s.repoRepo.GetAll(includeStats)
}

func (s *RepositoryService) GetRepositoryByGithubID(githubRepoID int64) (*models.Repository, error) {
	if githubRepoID <= 0 {
		return nil, errors.New("github repository ID is required")
	}
	return s.repoRepo.GetByGithubID(githubRepoID)
}

func (s *RepositoryService) GetRepositoryByFullName(fullName string) (*models.Repository, error) {
	if fullName == "" {
		return nil, errors.New("repository full name is required")
	}
	return s.repoRepo.GetByFullName(fullName)
}

// RepositoryWithAgents pairs a repository with the agents assigned to it
type RepositoryWithAgents struct {
	*models.Repository
	Agents []AssignedAgent `json:"agents"`
}

// AssignedAgent is the slim agent view returned by repository listings
type AssignedAgent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// GetRepositoriesWithAgents lists repositories together with the
// agents whose repository filter names them
func (s *RepositoryService) GetRepositoriesWithAgents() ([]*RepositoryWithAgents, error) {
	repos, err := s.repoRepo.GetAll(false)
	if err != nil {
		return nil, err
	}

	result := make([]*RepositoryWithAgents, 0, len(repos))
	for _, repo := range repos {
		agentIDs, err := s.mappingRepo.GetAgentIDsForRepository(repo.FullName())
		if err != nil {
			return nil, err
		}

		entry := &RepositoryWithAgents{Repository: repo, Agents: []AssignedAgent{}}
		for _, agentID := range agentIDs {
			agent, err := s.agentRepo.GetByID(agentID)
			if err != nil {
				continue
			}
			entry.Agents = append(entry.Agents, AssignedAgent{
				ID:      agent.ID,
				Name:    agent.Name,
				Enabled: agent.Settings.Enabled,
			})
		}
		result = append(result, entry)
	}

	return result, nil
}
