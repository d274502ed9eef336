package patient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MCTHIAS/CathPed/internal/handler"
	"github.com/MCTHIAS/CathPed/internal/model"
	apperrors "github.com/MCTHIAS/CathPed/pkg/errors"
)

type fakePatientService struct {
	patients    []*model.Patient
	summary     *model.PatientSummary
	deleted     []uuid.UUID
	notFound    bool
	searchSeen  string
	caseEvalReq *model.CreateCaseEvaluationRequest
}

func (f *fakePatientService) ListPatients(ctx context.Context, search string) ([]*model.Patient, error) {
	f.searchSeen = search
	return f.patients, nil
}

func (f *fakePatientService) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if f.notFound {
		return apperrors.NotFound("patient", errors.New("no rows"))
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePatientService) GetSummary(ctx context.Context, id uuid.UUID) (*model.PatientSummary, error) {
	if f.notFound {
		return nil, apperrors.NotFound("patient", errors.New("no rows"))
	}
	return f.summary, nil
}

func (f *fakePatientService) SubmitCaseEvaluation(ctx context.Context, patientID uuid.UUID, req *model.CreateCaseEvaluationRequest) (*model.CaseEvaluation, error) {
	if f.notFound {
		return nil, apperrors.NotFound("patient", errors.New("no rows"))
	}
	f.caseEvalReq = req
	return &model.CaseEvaluation{Base: model.Base{ID: uuid.New()}, PatientID: patientID}, nil
}

func (f *fakePatientService) SubmitAuthorization(ctx context.Context, patientID uuid.UUID, req *model.CreateAuthorizationRequest) (*model.Authorization, error) {
	return &model.Authorization{Base: model.Base{ID: uuid.New()}, PatientID: patientID}, nil
}

func (f *fakePatientService) SubmitProcedureExecution(ctx context.Context, patientID uuid.UUID, req *model.CreateProcedureExecutionRequest) (*model.ProcedureExecution, error) {
	return &model.ProcedureExecution{Base: model.Base{ID: uuid.New()}, PatientID: patientID}, nil
}

func (f *fakePatientService) SubmitFollowUp(ctx context.Context, patientID uuid.UUID, req *model.CreateFollowUpRequest) (*model.FollowUp, error) {
	return &model.FollowUp{Base: model.Base{ID: uuid.New()}, PatientID: patientID}, nil
}

func setupRouter(svc *fakePatientService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListPatients(t *testing.T) {
	svc := &fakePatientService{patients: []*model.Patient{
		{Base: model.Base{ID: uuid.New()}, FullName: "Jane Doe", Age: 40},
	}}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/v1/patients?search=jane", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane", svc.searchSeen)

	resp := decodeResponse(t, w)
	assert.Equal(t, "success", resp.Status)
}

func TestDeletePatientInvalidID(t *testing.T) {
	svc := &fakePatientService{}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodDelete, "/api/v1/patients/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.deleted)
}

func TestDeletePatientNotFound(t *testing.T) {
	r := setupRouter(&fakePatientService{notFound: true})

	w := doRequest(r, http.MethodDelete, "/api/v1/patients/"+uuid.NewString(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "error", resp.Status)
}

func TestDeletePatient(t *testing.T) {
	svc := &fakePatientService{}
	r := setupRouter(svc)
	id := uuid.New()

	w := doRequest(r, http.MethodDelete, "/api/v1/patients/"+id.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{id}, svc.deleted)
}

func TestGetSummary(t *testing.T) {
	p := &model.Patient{Base: model.Base{ID: uuid.New()}, FullName: "Jane Doe"}
	summary := &model.PatientSummary{
		Patient:        p,
		CaseEvaluation: &model.CaseEvaluation{Base: model.Base{ID: uuid.New()}, PatientID: p.ID},
	}
	summary.DeriveStages()

	r := setupRouter(&fakePatientService{summary: summary})

	w := doRequest(r, http.MethodGet, "/api/v1/patients/"+p.ID.String()+"/summary", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"case_evaluation_done":true`)
	assert.Contains(t, w.Body.String(), `"authorization_done":false`)
}

func TestSubmitCaseEvaluation(t *testing.T) {
	svc := &fakePatientService{}
	r := setupRouter(svc)
	id := uuid.New()

	body := `{
		"evaluation_date": "2024-03-10",
		"diagnosis": "Confirmed stenosis",
		"severity": "Grave",
		"procedure_requested": "Catheterization",
		"opme_needed": true
	}`
	w := doRequest(r, http.MethodPost, "/api/v1/patients/"+id.String()+"/case-evaluation", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.caseEvalReq)
	assert.Equal(t, "2024-03-10", svc.caseEvalReq.EvaluationDate)
	assert.True(t, svc.caseEvalReq.OPMENeeded)
}

func TestSubmitCaseEvaluationRejectsBadPayload(t *testing.T) {
	svc := &fakePatientService{}
	r := setupRouter(svc)
	id := uuid.New()

	cases := map[string]string{
		"missing date":  `{"diagnosis": "x", "severity": "Leve", "procedure_requested": "y"}`,
		"bad date":      `{"evaluation_date": "10/03/2024", "diagnosis": "x", "severity": "Leve", "procedure_requested": "y"}`,
		"long severity": `{"evaluation_date": "2024-03-10", "diagnosis": "x", "severity": "` + strings.Repeat("a", 21) + `", "procedure_requested": "y"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/patients/"+id.String()+"/case-evaluation", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Nil(t, svc.caseEvalReq)
}

func TestSubmitAuthorizationEmptyDatesAllowed(t *testing.T) {
	r := setupRouter(&fakePatientService{})

	w := doRequest(r, http.MethodPost, "/api/v1/patients/"+uuid.NewString()+"/authorization", `{"opme_authorized": true}`)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitFollowUp(t *testing.T) {
	r := setupRouter(&fakePatientService{})

	w := doRequest(r, http.MethodPost, "/api/v1/patients/"+uuid.NewString()+"/follow-up", `{"post_procedure_complications": true}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "success", resp.Status)
}
