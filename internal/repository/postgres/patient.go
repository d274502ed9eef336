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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{BaseRepository: NewBaseRepository(db)}
}

const insertPatientQuery = `
	INSERT INTO patients (
		id, full_name, age, contact, referral_date, internment_type,
		location, procedure, diagnosis, condition_severity, submitter_email,
		created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

func (r *patientRepository) CreateBatch(ctx context.Context, patients []*model.Patient) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, p := range patients {
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now()
			}
			_, err := tx.ExecContext(ctx, insertPatientQuery,
				p.ID,
				p.FullName,
				p.Age,
				p.Contact,
				p.ReferralDate,
				p.InternmentType,
				p.Location,
				p.Procedure,
				p.Diagnosis,
				p.ConditionSeverity,
				p.SubmitterEmail,
				p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert patient %q: %w", p.FullName, err)
			}
		}
		return nil
	})
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) ExistsByFullName(ctx context.Context, fullName string) (bool, error) {
	query := `SELECT 1 FROM patients WHERE full_name = $1`
	var one int
	err := r.db.GetContext(ctx, &one, query, fullName)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up patient by name: %w", err)
	}
	return true, nil
}

func (r *patientRepository) List(ctx context.Context, search string) ([]*model.Patient, error) {
	patients := []*model.Patient{}
	if search == "" {
		query := `SELECT * FROM patients ORDER BY created_at`
		if err := r.db.SelectContext(ctx, &patients, query); err != nil {
			return nil, fmt.Errorf("failed to list patients: %w", err)
		}
		return patients, nil
	}

	query := `SELECT * FROM patients WHERE full_name ILIKE '%' || $1 || '%' ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &patients, query, search); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

// DeleteCascade removes the four stage sub-records and then the patient in
// one transaction, so a delete can never leave orphaned stage data.
func (r *patientRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{
			"case_evaluations",
			"authorizations",
			"procedure_executions",
			"follow_ups",
		} {
			query := fmt.Sprintf(`DELETE FROM %s WHERE patient_id = $1`, table)
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete patient: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}
