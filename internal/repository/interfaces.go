package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/MCTHIAS/CathPed/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository handles intake record operations
	PatientRepository interface {
		// CreateBatch inserts all patients in a single transaction.
		CreateBatch(ctx context.Context, patients []*model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		ExistsByFullName(ctx context.Context, fullName string) (bool, error)
		// List returns all patients, optionally filtered by a
		// case-insensitive substring of the full name.
		List(ctx context.Context, search string) ([]*model.Patient, error)
		// DeleteCascade removes the patient and all of its stage
		// sub-records in one transaction.
		DeleteCascade(ctx context.Context, id uuid.UUID) error
	}

	// StageRepository handles the four workflow stage sub-records.
	// Get* methods return (nil, nil) when the stage has not been
	// submitted for the patient.
	StageRepository interface {
		CreateCaseEvaluation(ctx context.Context, ce *model.CaseEvaluation) error
		CreateAuthorization(ctx context.Context, a *model.Authorization) error
		CreateProcedureExecution(ctx context.Context, pe *model.ProcedureExecution) error
		CreateFollowUp(ctx context.Context, f *model.FollowUp) error

		GetCaseEvaluation(ctx context.Context, patientID uuid.UUID) (*model.CaseEvaluation, error)
		GetAuthorization(ctx context.Context, patientID uuid.UUID) (*model.Authorization, error)
		GetProcedureExecution(ctx context.Context, patientID uuid.UUID) (*model.ProcedureExecution, error)
		GetFollowUp(ctx context.Context, patientID uuid.UUID) (*model.FollowUp, error)
	}
)
