package intake

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MCTHIAS/CathPed/internal/model"
)

// Column layout of the form-response sheet. Column 0 is the submission
// timestamp, which is not stored.
const (
	colEmail = iota + 1
	colFullName
	colAge
	colContact
	colReferralDate
	colInternmentType
	colLocation
	colProcedure
	colDiagnosis
	colSeverity

	// minColumns is the smallest row that carries every required field.
	minColumns = 11
)

// parseRow validates and coerces one raw sheet row into a Patient. A row
// that fails here is skipped by the caller; it never aborts the batch and
// never produces a partial record.
func parseRow(cells []string) (*model.Patient, error) {
	if len(cells) < minColumns {
		return nil, fmt.Errorf("incomplete row: got %d of %d columns", len(cells), minColumns)
	}

	age, err := strconv.Atoi(strings.TrimSpace(cells[colAge]))
	if err != nil {
		return nil, fmt.Errorf("unparseable age %q: %w", cells[colAge], err)
	}

	fullName := strings.TrimSpace(cells[colFullName])
	if fullName == "" {
		return nil, fmt.Errorf("empty patient name")
	}

	return &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		FullName:          fullName,
		Age:               age,
		Contact:           strings.TrimSpace(cells[colContact]),
		ReferralDate:      ParseDate(cells[colReferralDate]),
		InternmentType:    strings.TrimSpace(cells[colInternmentType]),
		Location:          strings.TrimSpace(cells[colLocation]),
		Procedure:         strings.TrimSpace(cells[colProcedure]),
		Diagnosis:         strings.TrimSpace(cells[colDiagnosis]),
		ConditionSeverity: strings.TrimSpace(cells[colSeverity]),
		SubmitterEmail:    strings.TrimSpace(cells[colEmail]),
	}, nil
}
