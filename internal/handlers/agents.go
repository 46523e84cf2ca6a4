package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/services"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	agentService *services.AgentService
}

func NewAgentHandler(agentService *services.AgentService) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
	}
}

// ListAgents returns all configured agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	agents, err := h.agentService.GetAllAgents()
	if err != nil {
		logger.WithError(err).Errorf("Failed to fetch agents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agents"})
		return
	}

	if agents == nil {
		agents = []*models.Agent{}
	}
	c.JSON(http.StatusOK, agents)
}

// GetAgent returns one agent by id
func (h *AgentHandler) GetAgent(c *gin.Context) {
	agent, err := h.agentService.GetAgentByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		logger.WithError(err).Errorf("Failed to fetch agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agent"})
		return
	}

	c.JSON(http.StatusOK, agent)
}

// CreateAgent stores a new agent
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var agent models.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent payload"})
		return
	}

	if agent.ID == "" || agent.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Agent ID and name are required"})
		return
	}

	existing, err := h.agentService.GetAgentByID(agent.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.WithError(err).Errorf("Failed to check existing agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Agent with this ID already exists"})
		return
	}

	if err := h.agentService.CreateAgent(&agent); err != nil {
		logger.WithError(err).Errorf("Failed to create agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		return
	}

	created, err := h.agentService.GetAgentByID(agent.ID)
	if err != nil {
		logger.WithError(err).Errorf("Failed to reload created agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateAgent replaces an existing agent
func (h *AgentHandler) UpdateAgent(c *gin.Context) {
	id := c.Param("id")

	var agent models.Agent
	if err := c.ShouldBindJSON(&agent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agent payload"})
		return
	}

	if id != agent.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Agent ID mismatch"})
		return
	}

	if _, err := h.agentService.GetAgentByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		logger.WithError(err).Errorf("Failed to fetch agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		return
	}

	if err := h.agentService.UpdateAgent(&agent); err != nil {
		logger.WithError(err).Errorf("Failed to update agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		return
	}

	updated, err := h.agentService.GetAgentByID(id)
	if err != nil {
		logger.WithError(err).Errorf("Failed to reload updated agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update agent"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteAgent removes an agent and its repository mappings
func (h *AgentHandler) DeleteAgent(c *gin.Context) {
	if err := h.agentService.DeleteAgent(c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		logger.WithError(err).Errorf("Failed to delete agent")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete agent"})
		return
	}

	c.Status(http.StatusNoContent)
}
