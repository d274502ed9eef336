package intake

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MCTHIAS/CathPed/internal/model"
	"github.com/MCTHIAS/CathPed/internal/repository"
	"github.com/MCTHIAS/CathPed/pkg/metrics"
)

// Source is the external tabular system holding intake form responses.
type Source interface {
	// Fetch returns all rows of the intake range, header first.
	Fetch(ctx context.Context) ([][]string, error)
	// DeleteRow structurally removes the row at the zero-based index.
	DeleteRow(ctx context.Context, rowIndex int64) error
}

// Notifier is told about newly ingested patients. Implementations are
// best-effort; failures are logged and swallowed.
type Notifier interface {
	NotifyNewPatients(ctx context.Context, patients []*model.Patient) error
}

// Service is the reconciliation engine: it pulls intake rows from the
// external source, filters out already-known patients, inserts the rest,
// and mirrors local deletions back to the source.
type Service struct {
	source   Source
	patients repository.PatientRepository
	notifier Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(source Source, patients repository.PatientRepository, notifier Notifier, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		source:   source,
		patients: patients,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// Sync pulls all intake rows, skips invalid and already-known ones, and
// commits the remainder in a single transaction. It returns the number of
// patients staged for insert. Every failure mode below the call boundary
// degrades to 0: the external source is untrusted human input and a bad
// row or an unreachable API must never surface as a fault to the caller.
func (s *Service) Sync(ctx context.Context) int {
	start := time.Now()
	defer func() {
		s.metrics.SyncLatency.Observe(time.Since(start).Seconds())
	}()

	rows, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("intake fetch failed, skipping sync")
		s.metrics.SyncFailures.Inc()
		return 0
	}
	if len(rows) == 0 {
		s.logger.Debug().Msg("intake sheet is empty")
		return 0
	}

	// First row is the form header.
	rows = rows[1:]

	staged := make([]*model.Patient, 0)
	stagedNames := make(map[string]struct{})
	for i, row := range rows {
		patient, err := parseRow(row)
		if err != nil {
			s.logger.Warn().Err(err).Int("row", i+1).Msg("skipping invalid intake row")
			s.metrics.RowsSkipped.WithLabelValues("invalid").Inc()
			continue
		}

		// A resubmitted form repeats the name within one fetch. Only the
		// first such row may enter the batch, or the unique constraint
		// rejects the entire insert.
		if _, dup := stagedNames[patient.FullName]; dup {
			s.logger.Warn().Int("row", i+1).Str("patient", patient.FullName).Msg("skipping duplicate intake row")
			s.metrics.RowsSkipped.WithLabelValues("duplicate").Inc()
			continue
		}

		exists, err := s.patients.ExistsByFullName(ctx, patient.FullName)
		if err != nil {
			s.logger.Error().Err(err).Str("patient", patient.FullName).Msg("dedup lookup failed, skipping row")
			s.metrics.RowsSkipped.WithLabelValues("lookup_error").Inc()
			continue
		}
		if exists {
			continue
		}

		stagedNames[patient.FullName] = struct{}{}
		staged = append(staged, patient)
	}

	if len(staged) == 0 {
		return 0
	}

	if err := s.patients.CreateBatch(ctx, staged); err != nil {
		s.logger.Error().Err(err).Int("staged", len(staged)).Msg("intake batch insert failed")
		s.metrics.SyncFailures.Inc()
		return 0
	}

	s.metrics.PatientsSynced.Add(float64(len(staged)))
	s.logger.Info().Int("new_patients", len(staged)).Msg("intake sync completed")

	s.notify(ctx, staged)

	return len(staged)
}

func (s *Service) notify(ctx context.Context, patients []*model.Patient) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewPatients(ctx, patients); err != nil {
		s.logger.Warn().Err(err).Msg("intake notification failed")
	}
}

// MirrorDelete removes the external row whose name column matches
// fullName, comparing after trimming and case folding. It re-fetches the
// sheet rather than trusting a remembered index, because row positions
// shift as rows are removed. The fetch-then-delete gap is a known race
// window, accepted for this data volume.
func (s *Service) MirrorDelete(ctx context.Context, fullName string) bool {
	rows, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("mirror delete fetch failed")
		s.metrics.MirrorDeletes.WithLabelValues("fetch_error").Inc()
		return false
	}

	needle := foldName(fullName)
	for i, row := range rows {
		if len(row) <= colFullName || foldName(row[colFullName]) != needle {
			continue
		}

		if err := s.source.DeleteRow(ctx, int64(i)); err != nil {
			s.logger.Warn().Err(err).Int("row", i).Str("patient", fullName).Msg("mirror delete failed")
			s.metrics.MirrorDeletes.WithLabelValues("delete_error").Inc()
			return false
		}

		s.logger.Info().Int("row", i).Str("patient", fullName).Msg("mirrored deletion to intake sheet")
		s.metrics.MirrorDeletes.WithLabelValues("deleted").Inc()
		return true
	}

	s.logger.Info().Str("patient", fullName).Msg("patient not present in intake sheet")
	s.metrics.MirrorDeletes.WithLabelValues("not_found").Inc()
	return false
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
