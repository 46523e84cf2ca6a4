package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/services"
	"github.com/codedoctor/codedoctor/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// ListReviews returns evaluations with optional filters:
// agentId, startDate, endDate, limit, offset
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	filters := parseReviewFilters(c)

	reviews, err := h.reviewService.GetReviews(filters)
	if err != nil {
		logger.WithError(err).Errorf("Failed to fetch reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	if reviews == nil {
		reviews = []*models.Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

// GetReviewStats returns aggregated review quality metrics
func (h *ReviewHandler) GetReviewStats(c *gin.Context) {
	filters := parseReviewFilters(c)

	stats, err := h.reviewService.GetReviewStats(filters)
	if err != nil {
		logger.WithError(err).Errorf("Failed to fetch review statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportReviews streams the filtered reviews as an xlsx workbook
func (h *ReviewHandler) ExportReviews(c *gin.Context) {
	filters := parseReviewFilters(c)

	filename := "reviews-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.reviewService.ExportReviews(filters, c.Writer); err != nil {
		logger.WithError(err).Errorf("Failed to export reviews")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export reviews"})
		return
	}
}

func parseReviewFilters(c *gin.Context) *models.ReviewFilters {
	filters := &models.ReviewFilters{
		AgentID:   c.Query("agentId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	if limit := c.Query("limit"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			filters.Limit = parsed
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if parsed, err := strconv.Atoi(offset); err == nil && parsed > 0 {
			filters.Offset = parsed
		}
	}

	return filters
}
