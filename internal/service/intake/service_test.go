package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MCTHIAS/CathPed/internal/model"
	"github.com/MCTHIAS/CathPed/pkg/metrics"
)

type fakeSource struct {
	rows      [][]string
	fetchErr  error
	deleted   []int64
	deleteErr error
}

func (f *fakeSource) Fetch(ctx context.Context) ([][]string, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

func (f *fakeSource) DeleteRow(ctx context.Context, rowIndex int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, rowIndex)
	return nil
}

type fakePatientRepo struct {
	byName    map[string]*model.Patient
	createErr error
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byName: make(map[string]*model.Patient)}
}

func (f *fakePatientRepo) CreateBatch(ctx context.Context, patients []*model.Patient) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Full name carries a unique constraint; a conflicting batch fails
	// as a whole, like the real transaction does.
	inBatch := make(map[string]struct{}, len(patients))
	for _, p := range patients {
		if _, ok := f.byName[p.FullName]; ok {
			return errors.New(`pq: duplicate key value violates unique constraint "patients_full_name_key"`)
		}
		if _, ok := inBatch[p.FullName]; ok {
			return errors.New(`pq: duplicate key value violates unique constraint "patients_full_name_key"`)
		}
		inBatch[p.FullName] = struct{}{}
	}
	for _, p := range patients {
		f.byName[p.FullName] = p
	}
	return nil
}

func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	for _, p := range f.byName {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakePatientRepo) ExistsByFullName(ctx context.Context, fullName string) (bool, error) {
	_, ok := f.byName[fullName]
	return ok, nil
}

func (f *fakePatientRepo) List(ctx context.Context, search string) ([]*model.Patient, error) {
	patients := make([]*model.Patient, 0, len(f.byName))
	for _, p := range f.byName {
		patients = append(patients, p)
	}
	return patients, nil
}

func (f *fakePatientRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeNotifier struct {
	notified [][]*model.Patient
	err      error
}

func (f *fakeNotifier) NotifyNewPatients(ctx context.Context, patients []*model.Patient) error {
	f.notified = append(f.notified, patients)
	return f.err
}

func newTestService(source Source, repo *fakePatientRepo, notifier Notifier) *Service {
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	return NewService(source, repo, notifier, m, zerolog.Nop())
}

func sheetRow(name, age string) []string {
	return []string{
		"2024/02/01 10:00:00",
		"submitter@example.com",
		name,
		age,
		"555-0100",
		"01/02/2024",
		"Elective",
		"City A",
		"Biopsy",
		"Cancer",
		"Severe",
	}
}

func TestSyncFetchFailureReturnsZero(t *testing.T) {
	source := &fakeSource{fetchErr: errors.New("credentials are not configured")}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	assert.Equal(t, 0, svc.Sync(context.Background()))
	assert.Empty(t, repo.byName)
}

func TestSyncEmptySheetReturnsZero(t *testing.T) {
	svc := newTestService(&fakeSource{}, newFakePatientRepo(), nil)
	assert.Equal(t, 0, svc.Sync(context.Background()))
}

func TestSyncDiscardsHeaderRow(t *testing.T) {
	source := &fakeSource{rows: [][]string{{"header"}}}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	assert.Equal(t, 0, svc.Sync(context.Background()))
	assert.Empty(t, repo.byName)
}

func TestSyncInsertsNewPatientOnce(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		{"a@x.com", "a@x.com", "Jane Doe", "40", "555-0100", "01/02/2024", "Elective", "City A", "Biopsy", "Cancer", "Severe"},
	}}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	assert.Equal(t, 1, svc.Sync(context.Background()))

	patient, ok := repo.byName["Jane Doe"]
	require.True(t, ok)
	assert.Equal(t, 40, patient.Age)
	require.NotNil(t, patient.ReferralDate)
	assert.Equal(t, 2024, patient.ReferralDate.Year())
	assert.Equal(t, 2, int(patient.ReferralDate.Month()))
	assert.Equal(t, 1, patient.ReferralDate.Day())

	// Second run over the identical sheet is idempotent.
	assert.Equal(t, 0, svc.Sync(context.Background()))
	assert.Len(t, repo.byName, 1)
}

func TestSyncSkipsInvalidRowsAndContinues(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Alice Smith", "30"),
		sheetRow("Bob Jones", "not-a-number"),
		sheetRow("Carol White", "55"),
		{"too", "short"},
	}}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	assert.Equal(t, 2, svc.Sync(context.Background()))
	assert.Contains(t, repo.byName, "Alice Smith")
	assert.Contains(t, repo.byName, "Carol White")
	assert.NotContains(t, repo.byName, "Bob Jones")
}

func TestSyncSkipsDuplicateNamesWithinOneFetch(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Jane Doe", "40"),
		sheetRow("Jane Doe", "40"),
		sheetRow("Carol White", "55"),
	}}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	// The repeated row must not poison the batch insert for the others.
	assert.Equal(t, 2, svc.Sync(context.Background()))
	assert.Contains(t, repo.byName, "Jane Doe")
	assert.Contains(t, repo.byName, "Carol White")

	// The duplicate rows stay in the sheet; later runs stay idempotent.
	assert.Equal(t, 0, svc.Sync(context.Background()))
	assert.Len(t, repo.byName, 2)
}

func TestSyncCommitFailureReturnsZero(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Alice Smith", "30"),
	}}
	repo := newFakePatientRepo()
	repo.createErr = errors.New("connection reset")

	svc := newTestService(source, repo, nil)

	assert.Equal(t, 0, svc.Sync(context.Background()))
}

func TestSyncNotifiesOnNewPatients(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Alice Smith", "30"),
	}}
	repo := newFakePatientRepo()
	notifier := &fakeNotifier{}

	svc := newTestService(source, repo, notifier)

	assert.Equal(t, 1, svc.Sync(context.Background()))
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "Alice Smith", notifier.notified[0][0].FullName)

	// Notifier failures never propagate.
	notifier.err = errors.New("smtp unreachable")
	source.rows = append(source.rows, sheetRow("Bob Jones", "41"))
	assert.Equal(t, 1, svc.Sync(context.Background()))
}

func TestMirrorDeleteMatchesTrimmedCaseFolded(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Alice Smith", "30"),
		sheetRow("  jane DOE  ", "40"),
	}}
	repo := newFakePatientRepo()

	svc := newTestService(source, repo, nil)

	assert.True(t, svc.MirrorDelete(context.Background(), "Jane Doe"))
	// Absolute sheet index, header included.
	assert.Equal(t, []int64{2}, source.deleted)
}

func TestMirrorDeleteNotFound(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"header"},
		sheetRow("Alice Smith", "30"),
	}}
	svc := newTestService(source, newFakePatientRepo(), nil)

	assert.False(t, svc.MirrorDelete(context.Background(), "Jane Doe"))
	assert.Empty(t, source.deleted)
}

func TestMirrorDeleteTransportFailures(t *testing.T) {
	svc := newTestService(&fakeSource{fetchErr: errors.New("boom")}, newFakePatientRepo(), nil)
	assert.False(t, svc.MirrorDelete(context.Background(), "Jane Doe"))

	source := &fakeSource{
		rows:      [][]string{{"header"}, sheetRow("Jane Doe", "40")},
		deleteErr: errors.New("quota exceeded"),
	}
	svc = newTestService(source, newFakePatientRepo(), nil)
	assert.False(t, svc.MirrorDelete(context.Background(), "Jane Doe"))
}
