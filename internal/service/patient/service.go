package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MCTHIAS/CathPed/internal/model"
	"github.com/MCTHIAS/CathPed/internal/repository"
	apperrors "github.com/MCTHIAS/CathPed/pkg/errors"
)

// Reconciler is the slice of the intake service the patient workflow
// needs: sync before listing, mirror after deleting.
type Reconciler interface {
	Sync(ctx context.Context) int
	MirrorDelete(ctx context.Context, fullName string) bool
}

type PatientService interface {
	ListPatients(ctx context.Context, search string) ([]*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	GetSummary(ctx context.Context, id uuid.UUID) (*model.PatientSummary, error)
	SubmitCaseEvaluation(ctx context.Context, patientID uuid.UUID, req *model.CreateCaseEvaluationRequest) (*model.CaseEvaluation, error)
	SubmitAuthorization(ctx context.Context, patientID uuid.UUID, req *model.CreateAuthorizationRequest) (*model.Authorization, error)
	SubmitProcedureExecution(ctx context.Context, patientID uuid.UUID, req *model.CreateProcedureExecutionRequest) (*model.ProcedureExecution, error)
	SubmitFollowUp(ctx context.Context, patientID uuid.UUID, req *model.CreateFollowUpRequest) (*model.FollowUp, error)
}

type Service struct {
	repo       repository.PatientRepository
	stages     repository.StageRepository
	reconciler Reconciler
	logger     zerolog.Logger
}

func NewService(repo repository.PatientRepository, stages repository.StageRepository, reconciler Reconciler, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		stages:     stages,
		reconciler: reconciler,
		logger:     logger,
	}
}

// ListPatients reconciles with the intake sheet and then returns the
// current patient set, optionally filtered by a case-insensitive name
// substring.
func (s *Service) ListPatients(ctx context.Context, search string) ([]*model.Patient, error) {
	newEntries := s.reconciler.Sync(ctx)
	if newEntries > 0 {
		s.logger.Info().Int("new_patients", newEntries).Msg("patients added before listing")
	}

	patients, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// DeletePatient removes the patient and all stage sub-records in one
// transaction, then mirrors the deletion to the intake sheet. The local
// delete stands regardless of the mirror outcome.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("patient", err)
		}
		return fmt.Errorf("failed to get patient: %w", err)
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	s.logger.Info().Str("patient", patient.FullName).Msg("patient removed from database")

	if !s.reconciler.MirrorDelete(ctx, patient.FullName) {
		s.logger.Warn().Str("patient", patient.FullName).Msg("intake sheet row was not removed")
	}

	return nil
}

// GetSummary returns the patient and whichever stage sub-records exist.
func (s *Service) GetSummary(ctx context.Context, id uuid.UUID) (*model.PatientSummary, error) {
	patient, err := s.getPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &model.PatientSummary{Patient: patient}

	if summary.CaseEvaluation, err = s.stages.GetCaseEvaluation(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to load case evaluation: %w", err)
	}
	if summary.Authorization, err = s.stages.GetAuthorization(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to load authorization: %w", err)
	}
	if summary.ProcedureExecution, err = s.stages.GetProcedureExecution(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to load procedure execution: %w", err)
	}
	if summary.FollowUp, err = s.stages.GetFollowUp(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to load follow up: %w", err)
	}

	summary.DeriveStages()
	return summary, nil
}

func (s *Service) SubmitCaseEvaluation(ctx context.Context, patientID uuid.UUID, req *model.CreateCaseEvaluationRequest) (*model.CaseEvaluation, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	evaluationDate, err := parseISODate(req.EvaluationDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid evaluation date", err)
	}

	ce := &model.CaseEvaluation{
		Base:                  model.Base{ID: uuid.New()},
		PatientID:             patientID,
		EvaluationDate:        evaluationDate,
		Diagnosis:             req.Diagnosis,
		Severity:              req.Severity,
		ProcedureRequested:    req.ProcedureRequested,
		Requester:             req.Requester,
		OPMENeeded:            req.OPMENeeded,
		SpecialOPME:           req.SpecialOPME,
		PreviousComplications: req.PreviousComplications,
	}

	if err := s.stages.CreateCaseEvaluation(ctx, ce); err != nil {
		return nil, fmt.Errorf("failed to save case evaluation: %w", err)
	}
	return ce, nil
}

func (s *Service) SubmitAuthorization(ctx context.Context, patientID uuid.UUID, req *model.CreateAuthorizationRequest) (*model.Authorization, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	schedulingDate, err := parseOptionalISODate(req.SchedulingDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid scheduling date", err)
	}
	executionDate, err := parseOptionalISODate(req.ExecutionDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid execution date", err)
	}

	a := &model.Authorization{
		Base:               model.Base{ID: uuid.New()},
		PatientID:          patientID,
		OPMEAuthorized:     req.OPMEAuthorized,
		SchedulingDate:     schedulingDate,
		ExecutionDate:      executionDate,
		ExecutionTime:      req.ExecutionTime,
		CancellationReason: req.CancellationReason,
	}

	if err := s.stages.CreateAuthorization(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save authorization: %w", err)
	}
	return a, nil
}

func (s *Service) SubmitProcedureExecution(ctx context.Context, patientID uuid.UUID, req *model.CreateProcedureExecutionRequest) (*model.ProcedureExecution, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	executionDate, err := parseISODate(req.ExecutionDate)
	if err != nil {
		return nil, apperrors.BadRequest("invalid execution date", err)
	}

	pe := &model.ProcedureExecution{
		Base:                  model.Base{ID: uuid.New()},
		PatientID:             patientID,
		ExecutionDate:         executionDate,
		MedicalReport:         req.MedicalReport,
		PatientInformed:       req.PatientInformed,
		PreviousComplications: req.PreviousComplications,
	}

	if err := s.stages.CreateProcedureExecution(ctx, pe); err != nil {
		return nil, fmt.Errorf("failed to save procedure execution: %w", err)
	}
	return pe, nil
}

func (s *Service) SubmitFollowUp(ctx context.Context, patientID uuid.UUID, req *model.CreateFollowUpRequest) (*model.FollowUp, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	f := &model.FollowUp{
		Base:                      model.Base{ID: uuid.New()},
		PatientID:                 patientID,
		PostProcedureComplication: req.PostProcedureComplication,
	}

	if err := s.stages.CreateFollowUp(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to save follow up: %w", err)
	}
	return f, nil
}

func (s *Service) getPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

func parseISODate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func parseOptionalISODate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseISODate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
