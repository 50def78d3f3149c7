// Package qareport implements the QA report repository using PostgreSQL.
// Reports are never deleted; withdrawing a report flips its active flag.
package qareport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/qareview/internal/adapter/postgres"
	"github.com/heartmarshall/qareview/internal/domain"
)

// Repo provides QA report persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new QA report repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var columns = []string{
	"id", "subject_id", "reporter_user_id", "active", "content", "verdict",
	"created_at", "updated_at", "version",
}

var columnList = strings.Join(columns, ", ")

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const setLockTimeoutSQL = `SELECT set_config('lock_timeout', $1, true)`

const deactivateActiveSQL = `
UPDATE qa_reports
SET active = false, updated_at = now(), version = version + 1
WHERE subject_id = $1 AND reporter_user_id = $2 AND active`

var insertSQL = `
INSERT INTO qa_reports (id, subject_id, reporter_user_id, active, content, verdict, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, now(), now(), 1)
RETURNING ` + columnList

var getByIDSQL = `SELECT ` + columnList + ` FROM qa_reports WHERE id = $1`

var setActiveSQL = `
UPDATE qa_reports
SET active = $2, updated_at = now(), version = version + 1
WHERE id = $1 AND version = $3
RETURNING ` + columnList

const countActiveSQL = `
SELECT count(*) FROM qa_reports
WHERE active AND subject_id = ANY($1::text[])`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// LockPair takes the (subject, reporter) transaction-scoped advisory lock.
// A positive timeout bounds the wait; exceeding it fails with
// domain.ErrConcurrentModification. Must run inside a transaction.
func (r *Repo) LockPair(ctx context.Context, subjectID, reporterUserID string, timeout time.Duration) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if timeout > 0 {
		if _, err := q.Exec(ctx, setLockTimeoutSQL, fmt.Sprintf("%dms", timeout.Milliseconds())); err != nil {
			return postgres.MapError(err, "set lock_timeout", subjectID)
		}
	}

	key := "qa_report:" + subjectID + "\x1f" + reporterUserID
	if _, err := q.Exec(ctx, postgres.LockKey, key); err != nil {
		return postgres.MapError(err, "lock qa_report", subjectID)
	}
	return nil
}

// DeactivateActive marks every active report of the pair inactive and
// returns how many rows changed.
func (r *Repo) DeactivateActive(ctx context.Context, subjectID, reporterUserID string) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, deactivateActiveSQL, subjectID, reporterUserID)
	if err != nil {
		return 0, postgres.MapError(err, "deactivate qa_report", subjectID)
	}
	return int(tag.RowsAffected()), nil
}

// Insert persists a new report. A second active report for the same pair
// violates the partial unique index and maps to domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, report *domain.QaReport) (*domain.QaReport, error) {
	var verdict *string
	if report.Verdict != nil {
		v := string(*report.Verdict)
		verdict = &v
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL,
		report.ID, report.SubjectID, report.ReporterUserID, report.Active, report.Content, verdict,
	)
	stored, err := scanReport(row)
	if err != nil {
		return nil, postgres.MapError(err, "qa_report", report.ID.String())
	}
	return &stored, nil
}

// SetActive flips the active flag when the stored version still equals
// expectedVersion. A stale version yields domain.ErrConcurrentModification.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool, expectedVersion int) (*domain.QaReport, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, setActiveSQL, id, active, expectedVersion)

	stored, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("qa_report %s: version %d: %w", id, expectedVersion, domain.ErrConcurrentModification)
	}
	if err != nil {
		return nil, postgres.MapError(err, "qa_report", id.String())
	}
	return &stored, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a report by ID. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.QaReport, error) {
	report, err := scanReport(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, postgres.MapError(err, "qa_report", id.String())
	}
	return &report, nil
}

// ListActive returns the active reports of a subject, optionally limited to
// one reporter, newest first.
func (r *Repo) ListActive(ctx context.Context, subjectID string, reporterUserID *string) ([]domain.QaReport, error) {
	return r.Search(ctx, domain.ReportFilter{SubjectID: subjectID, ReporterUserID: reporterUserID})
}

// Search returns the reports of a subject matching filter, newest first.
func (r *Repo) Search(ctx context.Context, filter domain.ReportFilter) ([]domain.QaReport, error) {
	query := postgres.Builder().
		Select(columns...).
		From("qa_reports").
		Where(squirrel.Eq{"subject_id": filter.SubjectID})
	if filter.ReporterUserID != nil {
		query = query.Where(squirrel.Eq{"reporter_user_id": *filter.ReporterUserID})
	}
	if !filter.ShowInactive {
		query = query.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := query.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build qa_report search: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "search qa_reports", filter.SubjectID)
	}
	defer rows.Close()

	reports := []domain.QaReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan qa_report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "iterate qa_reports", filter.SubjectID)
	}
	return reports, nil
}

// CountActive returns the number of active reports across the subjects.
func (r *Repo) CountActive(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}

	var count int
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, countActiveSQL, subjectIDs).Scan(&count)
	if err != nil {
		return 0, postgres.MapError(err, "count qa_reports", "")
	}
	return count, nil
}

func scanReport(row pgx.Row) (domain.QaReport, error) {
	var (
		report  domain.QaReport
		verdict *string
	)
	err := row.Scan(
		&report.ID, &report.SubjectID, &report.ReporterUserID, &report.Active, &report.Content,
		&verdict, &report.CreatedAt, &report.UpdatedAt, &report.Version,
	)
	if err != nil {
		return domain.QaReport{}, err
	}
	if verdict != nil {
		v := domain.QaReportVerdict(*verdict)
		report.Verdict = &v
	}
	report.CreatedAt = report.CreatedAt.UTC()
	report.UpdatedAt = report.UpdatedAt.UTC()
	return report, nil
}
