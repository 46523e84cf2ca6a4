package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/services"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/gin-gonic/gin"
)

type RepositoryHandler struct {
	repositoryService *services.RepositoryService
}

func NewRepositoryHandler(repositoryService *services.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{
		repositoryService: repositoryService,
	}
}

// ListRepositories returns repositories seen by webhook events,
// optionally with PR/review counts
func (h *RepositoryHandler) ListRepositories(c *gin.Context) {
	includeStats := c.Query("includeStats") == "true"

	repos, err := h.repositoryService.GetAllRepositories(includeStats)
	if err != nil {
		logger.WithError(err).Errorf("Failed to fetch repositories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repositories"})
		return
	}

	if repos == nil {
		repos = []*models.Repository{}
	}
	c.JSON(http.StatusOK, repos)
}

// ListRepositoriesWithAgents returns repositories with assigned agents
func (h *RepositoryHandler) ListRepositoriesWithAgents(c *gin.Context) {
	repos, err := h.repositoryService.GetRepositoriesWithAgents()
	if err != nil {
		logger.WithError(err).Errorf("Failed to fetch repositories with agents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repositories with agents"})
		return
	}

	c.JSON(http.StatusOK, repos)
}

// GetRepositoryByGithubID returns one repository by its GitHub id
func (h *RepositoryHandler) GetRepositoryByGithubID(c *gin.Context) {
	githubRepoID, err := strconv.ParseInt(c.Param("githubRepoId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GitHub repository ID"})
		return
	}

	repo, err := h.repositoryService.GetRepositoryByGithubID(githubRepoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
			return
		}
		logger.WithError(err).Errorf("Failed to fetch repository")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repository"})
		return
	}

	c.JSON(http.StatusOK, repo)
}

// GetRepositoryByFullName returns one repository by "owner/name"
func (h *RepositoryHandler) GetRepositoryByFullName(c *gin.Context) {
	fullName := strings.TrimPrefix(c.Param("fullName"), "/")
	if fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Repository full name is required"})
		return
	}

	repo, err := h.repositoryService.GetRepositoryByFullName(fullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found"})
			return
		}
		logger.WithError(err).Errorf("Failed to fetch repository")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch repository"})
		return
	}

	c.JSON(http.StatusOK, repo)
}
