package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/qareview/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueGroupKey returns a group key no other test uses, so tests sharing
// the container never see each other's events.
func UniqueGroupKey() domain.GroupKey {
	suffix := uniqueSuffix()
	return domain.GroupKey{
		EntityID:        "company-" + suffix,
		LogicalType:     "sfdr-" + suffix,
		ReportingPeriod: "2023",
	}
}

// UniqueSubjectID returns a fresh subject identifier.
func UniqueSubjectID() string {
	return "subject-" + uuid.New().String()
}

// SeedEvent inserts a review event with an explicit timestamp, bypassing the
// repository. Returns the inserted event.
func SeedEvent(t *testing.T, pool *pgxpool.Pool, subjectID string, key domain.GroupKey, status domain.QaStatus, at time.Time) domain.ReviewEvent {
	t.Helper()

	ev := domain.ReviewEvent{
		ID:             uuid.Must(uuid.NewV7()),
		SubjectID:      subjectID,
		GroupKey:       key,
		Status:         status,
		ReporterUserID: "seed-" + uniqueSuffix(),
		PayloadHash:    []byte(uuid.New().String()),
		RecordedAt:     at.UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO review_events
		    (id, subject_id, entity_id, logical_type, reporting_period, status,
		     reporter_user_id, comment, correlation_id, payload_hash, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, '', $8, $9)`,
		ev.ID, ev.SubjectID, key.EntityID, key.LogicalType, key.ReportingPeriod, string(status),
		ev.ReporterUserID, ev.PayloadHash, ev.RecordedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEvent insert: %v", err)
	}

	return ev
}

// SeedReport inserts a QA report. Returns the inserted report.
func SeedReport(t *testing.T, pool *pgxpool.Pool, subjectID, reporter string, active bool) domain.QaReport {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	r := domain.QaReport{
		ID:             uuid.Must(uuid.NewV7()),
		SubjectID:      subjectID,
		ReporterUserID: reporter,
		Active:         active,
		Content:        `{"comment":"seeded"}`,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO qa_reports (id, subject_id, reporter_user_id, active, content, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 1)`,
		r.ID, r.SubjectID, r.ReporterUserID, r.Active, r.Content, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedReport insert: %v", err)
	}

	return r
}
