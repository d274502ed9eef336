package model

import (
	"time"

	"github.com/google/uuid"
)

// CaseEvaluation records the clinical evaluation of an intake case.
// At most one exists per patient.
type CaseEvaluation struct {
	Base
	PatientID             uuid.UUID `db:"patient_id" json:"patient_id"`
	EvaluationDate        time.Time `db:"evaluation_date" json:"evaluation_date"`
	Diagnosis             string    `db:"diagnosis" json:"diagnosis"`
	Severity              string    `db:"severity" json:"severity"`
	ProcedureRequested    string    `db:"procedure_requested" json:"procedure_requested"`
	Requester             string    `db:"requester" json:"requester,omitempty"`
	OPMENeeded            bool      `db:"opme_needed" json:"opme_needed"`
	SpecialOPME           bool      `db:"special_opme" json:"special_opme"`
	PreviousComplications bool      `db:"previous_complications" json:"previous_complications"`
}

// Authorization records the OPME/procedure authorization decision.
type Authorization struct {
	Base
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	OPMEAuthorized     bool       `db:"opme_authorized" json:"opme_authorized"`
	SchedulingDate     *time.Time `db:"scheduling_date" json:"scheduling_date,omitempty"`
	ExecutionDate      *time.Time `db:"execution_date" json:"execution_date,omitempty"`
	ExecutionTime      string     `db:"execution_time" json:"execution_time,omitempty"`
	CancellationReason string     `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
}

// ProcedureExecution records the performed procedure.
type ProcedureExecution struct {
	Base
	PatientID             uuid.UUID `db:"patient_id" json:"patient_id"`
	ExecutionDate         time.Time `db:"execution_date" json:"execution_date"`
	MedicalReport         string    `db:"medical_report" json:"medical_report,omitempty"`
	PatientInformed       bool      `db:"patient_informed" json:"patient_informed"`
	PreviousComplications bool      `db:"previous_complications" json:"previous_complications"`
}

// FollowUp records the post-procedure follow-up.
type FollowUp struct {
	Base
	PatientID                 uuid.UUID `db:"patient_id" json:"patient_id"`
	PostProcedureComplication bool      `db:"post_procedure_complications" json:"post_procedure_complications"`
}

// Stage submission payloads. Dates arrive as form-style strings and are
// parsed at the service layer.

type CreateCaseEvaluationRequest struct {
	EvaluationDate        string `json:"evaluation_date" binding:"required,datetime=2006-01-02"`
	Diagnosis             string `json:"diagnosis" binding:"required"`
	Severity              string `json:"severity" binding:"required,severity"`
	ProcedureRequested    string `json:"procedure_requested" binding:"required"`
	Requester             string `json:"requester"`
	OPMENeeded            bool   `json:"opme_needed"`
	SpecialOPME           bool   `json:"special_opme"`
	PreviousComplications bool   `json:"previous_complications"`
}

type CreateAuthorizationRequest struct {
	OPMEAuthorized     bool   `json:"opme_authorized"`
	SchedulingDate     string `json:"scheduling_date" binding:"omitempty,datetime=2006-01-02"`
	ExecutionDate      string `json:"execution_date" binding:"omitempty,datetime=2006-01-02"`
	ExecutionTime      string `json:"execution_time" binding:"omitempty,datetime=15:04"`
	CancellationReason string `json:"cancellation_reason"`
}

type CreateProcedureExecutionRequest struct {
	ExecutionDate         string `json:"execution_date" binding:"required,datetime=2006-01-02"`
	MedicalReport         string `json:"medical_report"`
	PatientInformed       bool   `json:"patient_informed"`
	PreviousComplications bool   `json:"previous_complications"`
}

type CreateFollowUpRequest struct {
	PostProcedureComplication bool `json:"post_procedure_complications"`
}
