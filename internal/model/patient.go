package model

import (
	"time"
)

// Patient is the root workflow entity. One row is created per form
// response pulled from the intake spreadsheet; rows are never updated in
// place, only deleted by explicit user action.
type Patient struct {
	Base
	FullName          string     `db:"full_name" json:"full_name"`
	Age               int        `db:"age" json:"age"`
	Contact           string     `db:"contact" json:"contact"`
	ReferralDate      *time.Time `db:"referral_date" json:"referral_date,omitempty"`
	InternmentType    string     `db:"internment_type" json:"internment_type"`
	Location          string     `db:"location" json:"location"`
	Procedure         string     `db:"procedure" json:"procedure"`
	Diagnosis         string     `db:"diagnosis" json:"diagnosis"`
	ConditionSeverity string     `db:"condition_severity" json:"condition_severity"`
	SubmitterEmail    string     `db:"submitter_email" json:"submitter_email,omitempty"`
}

// StageStatus reports which workflow stages have been completed for a
// patient. Completion is derived purely from sub-record presence; there is
// no ordering requirement between stages.
type StageStatus struct {
	CaseEvaluationDone     bool `json:"case_evaluation_done"`
	AuthorizationDone      bool `json:"authorization_done"`
	ProcedureExecutionDone bool `json:"procedure_execution_done"`
	FollowUpDone           bool `json:"follow_up_done"`
}

// PatientSummary is the full picture of a patient: the intake record plus
// whichever stage sub-records exist. Absent stages are nil.
type PatientSummary struct {
	Patient            *Patient            `json:"patient"`
	CaseEvaluation     *CaseEvaluation     `json:"case_evaluation,omitempty"`
	Authorization      *Authorization      `json:"authorization,omitempty"`
	ProcedureExecution *ProcedureExecution `json:"procedure_execution,omitempty"`
	FollowUp           *FollowUp           `json:"follow_up,omitempty"`
	Stages             StageStatus         `json:"stages"`
}

// DeriveStages recomputes the stage predicates from sub-record presence.
func (s *PatientSummary) DeriveStages() {
	s.Stages = StageStatus{
		CaseEvaluationDone:     s.CaseEvaluation != nil,
		AuthorizationDone:      s.Authorization != nil,
		ProcedureExecutionDone: s.ProcedureExecution != nil,
		FollowUpDone:           s.FollowUp != nil,
	}
}
