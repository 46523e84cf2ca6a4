package services

import (
	"fmt"
	"io"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type ReviewService struct {
	evalRepo *repositories.EvaluationRepository
}

func NewReviewService(evalRepo *repositories.EvaluationRepository) *ReviewService {
	return &ReviewService{
		evalRepo: evalRepo,
	}
}

func (s *ReviewService) GetReviews(filters *models.ReviewFilters) ([]*models.Review, error) {
	return s.evalRepo.GetReviews(filters)
}

func (s *ReviewService) GetReviewStats(filters *models.ReviewFilters) (*models.ReviewStats, error) {
	return s.evalRepo.GetReviewStats(filters)
}

// ExportReviews writes the filtered reviews as an xlsx workbook
func (s *ReviewService) ExportReviews(filters *models.ReviewFilters, w io.Writer) error {
	reviews, err := s.evalRepo.GetReviews(filters)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Reviews"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{
		"ID", "Agent", "Repository", "PR", "Title", "Author",
		"Correctness", "Security", "Maintainability", "Clarity", "Production Readiness",
		"Overall Summary", "Model", "Created At",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, review := range reviews {
		values := []interface{}{
			review.ID,
			review.AgentName,
			review.Repository,
			review.PRNumber,
			stringOrEmpty(review.PRTitle),
			stringOrEmpty(review.PRAuthor),
			review.Scores.Correctness,
			review.Scores.Security,
			review.Scores.Maintainability,
			review.Scores.Clarity,
			review.Scores.ProductionReadiness,
			stringOrEmpty(review.OverallSummary),
			stringOrEmpty(review.EvaluationModel),
			review.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write reviews export: %w", err)
	}

	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
