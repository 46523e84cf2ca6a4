package services

import (
	"database/sql"

	"github.com/codedoctor/codedoctor/internal/models"
	"github.com/codedoctor/codedoctor/internal/repositories"
	"github.com/codedoctor/codedoctor/pkg/database"
)

// EvaluationService owns all webhook-driven writes. Repository and PR
// metadata go in one transaction per event; each evaluation+run pair
// gets its own transaction so one agent's failure cannot roll back a
// sibling's.
type EvaluationService struct {
	db       *sql.DB
	repoRepo *repositories.RepositoryRepository
	prRepo   *repositories.PullRequestRepository
	evalRepo *repositories.EvaluationRepository
	runRepo  *repositories.EvaluationRunRepository
}

func NewEvaluationService(
	db *sql.DB,
	repoRepo *repositories.RepositoryRepository,
	prRepo *repositories.PullRequestRepository,
	evalRepo *repositories.EvaluationRepository,
	runRepo *repositories.EvaluationRunRepository,
) *EvaluationService {
	return &EvaluationService{
		db:       db,
		repoRepo: repoRepo,
		prRepo:   prRepo,
		evalRepo: evalRepo,
		runRepo:  runRepo,
	}
}

// UpsertEventMetadata stores the repository and pull request state
// carried by a webhook event
func (s *EvaluationService) UpsertEventMetadata(repo *models.Repository, pr *models.PullRequest) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.repoRepo.UpsertTx(tx, repo); err != nil {
			return err
		}
		return s.prRepo.UpsertTx(tx, pr)
	})
}

// PersistEvaluation appends one evaluation together with its run
// record. A duplicate run for the same head SHA surfaces as a conflict
// error (see IsDuplicateRunErr) and rolls back the pair.
func (s *EvaluationService) PersistEvaluation(eval *models.Evaluation, run *models.EvaluationRun) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if err := s.evalRepo.InsertTx(tx, eval); err != nil {
			return err
		}
		return s.runRepo.InsertTx(tx, run)
	})
}

// RecordFailedRun stores a failed attempt so that the run ledger keeps
// the full history of what was tried for a head SHA
func (s *EvaluationService) RecordFailedRun(run *models.EvaluationRun) error {
	run.Status = models.RunStatusFailed
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		return s.runRepo.InsertTx(tx, run)
	})
}

// IsDuplicateRunErr reports whether err is the evaluation-run
// unique-key conflict
func (s *EvaluationService) IsDuplicateRunErr(err error) bool {
	return repositories.IsDuplicateRunErr(err)
}
