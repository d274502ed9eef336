package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MCTHIAS/CathPed/internal/model"
	"github.com/MCTHIAS/CathPed/internal/repository"
)

type stageRepository struct {
	BaseRepository
}

func NewStageRepository(db *sqlx.DB) repository.StageRepository {
	return &stageRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *stageRepository) CreateCaseEvaluation(ctx context.Context, ce *model.CaseEvaluation) error {
	query := `
		INSERT INTO case_evaluations (
			id, patient_id, evaluation_date, diagnosis, severity,
			procedure_requested, requester, opme_needed, special_opme,
			previous_complications, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	ce.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		ce.ID,
		ce.PatientID,
		ce.EvaluationDate,
		ce.Diagnosis,
		ce.Severity,
		ce.ProcedureRequested,
		ce.Requester,
		ce.OPMENeeded,
		ce.SpecialOPME,
		ce.PreviousComplications,
		ce.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case evaluation: %w", err)
	}
	return nil
}

func (r *stageRepository) CreateAuthorization(ctx context.Context, a *model.Authorization) error {
	query := `
		INSERT INTO authorizations (
			id, patient_id, opme_authorized, scheduling_date, execution_date,
			execution_time, cancellation_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	a.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.PatientID,
		a.OPMEAuthorized,
		a.SchedulingDate,
		a.ExecutionDate,
		a.ExecutionTime,
		a.CancellationReason,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create authorization: %w", err)
	}
	return nil
}

func (r *stageRepository) CreateProcedureExecution(ctx context.Context, pe *model.ProcedureExecution) error {
	query := `
		INSERT INTO procedure_executions (
			id, patient_id, execution_date, medical_report, patient_informed,
			previous_complications, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	pe.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		pe.ID,
		pe.PatientID,
		pe.ExecutionDate,
		pe.MedicalReport,
		pe.PatientInformed,
		pe.PreviousComplications,
		pe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create procedure execution: %w", err)
	}
	return nil
}

func (r *stageRepository) CreateFollowUp(ctx context.Context, f *model.FollowUp) error {
	query := `
		INSERT INTO follow_ups (
			id, patient_id, post_procedure_complications, created_at
		) VALUES ($1, $2, $3, $4)
	`
	f.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		f.ID,
		f.PatientID,
		f.PostProcedureComplication,
		f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create follow up: %w", err)
	}
	return nil
}

func (r *stageRepository) GetCaseEvaluation(ctx context.Context, patientID uuid.UUID) (*model.CaseEvaluation, error) {
	var ce model.CaseEvaluation
	err := r.db.GetContext(ctx, &ce, `SELECT * FROM case_evaluations WHERE patient_id = $1`, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case evaluation: %w", err)
	}
	return &ce, nil
}

func (r *stageRepository) GetAuthorization(ctx context.Context, patientID uuid.UUID) (*model.Authorization, error) {
	var a model.Authorization
	err := r.db.GetContext(ctx, &a, `SELECT * FROM authorizations WHERE patient_id = $1`, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization: %w", err)
	}
	return &a, nil
}

func (r *stageRepository) GetProcedureExecution(ctx context.Context, patientID uuid.UUID) (*model.ProcedureExecution, error) {
	var pe model.ProcedureExecution
	err := r.db.GetContext(ctx, &pe, `SELECT * FROM procedure_executions WHERE patient_id = $1`, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get procedure execution: %w", err)
	}
	return &pe, nil
}

func (r *stageRepository) GetFollowUp(ctx context.Context, patientID uuid.UUID) (*model.FollowUp, error) {
	var f model.FollowUp
	err := r.db.GetContext(ctx, &f, `SELECT * FROM follow_ups WHERE patient_id = $1`, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get follow up: %w", err)
	}
	return &f, nil
}
