// Package reviewevent implements the append-only review event store using
// PostgreSQL. Fixed lookups use raw SQL; filtered queue and search queries
// are built with squirrel.
package reviewevent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/qareview/internal/adapter/postgres"
	"github.com/heartmarshall/qareview/internal/domain"
)

// Repo provides review event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var columns = []string{
	"id", "subject_id", "entity_id", "logical_type", "reporting_period", "status",
	"reporter_user_id", "comment", "correlation_id", "payload_hash", "recorded_at",
}

var columnList = strings.Join(columns, ", ")

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

// appendSQL assigns recorded_at as max(clock, last + 1µs) so timestamps stay
// strictly increasing per subject. Callers must hold the subject lock.
var appendSQL = `
INSERT INTO review_events (` + columnList + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
        GREATEST(
            date_trunc('microseconds', clock_timestamp()),
            COALESCE((SELECT max(recorded_at) FROM review_events WHERE subject_id = $2), '-infinity'::timestamptz)
                + interval '1 microsecond'
        ))
RETURNING ` + columnList

var listBySubjectSQL = `
SELECT ` + columnList + `
FROM review_events
WHERE subject_id = $1
ORDER BY recorded_at DESC, id DESC`

var firstBySubjectAscSQL = `
SELECT ` + columnList + `
FROM review_events
WHERE subject_id = $1
ORDER BY recorded_at ASC, id ASC
LIMIT 1`

var firstBySubjectDescSQL = `
SELECT ` + columnList + `
FROM review_events
WHERE subject_id = $1
ORDER BY recorded_at DESC, id DESC
LIMIT 1`

const groupKeysCTE = `
WITH keys AS (
    SELECT * FROM unnest($1::text[], $2::text[], $3::text[]) AS k(entity_id, logical_type, reporting_period)
)`

var listByGroupKeysSQL = groupKeysCTE + `
SELECT ` + columnList + `
FROM review_events e
WHERE (e.entity_id, e.logical_type, e.reporting_period) IN (SELECT entity_id, logical_type, reporting_period FROM keys)
ORDER BY e.subject_id, e.recorded_at DESC, e.id DESC`

var latestByGroupKeysSQL = groupKeysCTE + `
SELECT DISTINCT ON (e.subject_id) ` + columnList + `
FROM review_events e
WHERE (e.entity_id, e.logical_type, e.reporting_period) IN (SELECT entity_id, logical_type, reporting_period FROM keys)
ORDER BY e.subject_id, e.recorded_at DESC, e.id DESC`

var latestBySubjectsSQL = `
SELECT DISTINCT ON (subject_id) ` + columnList + `
FROM review_events
WHERE subject_id = ANY($1::text[])
ORDER BY subject_id, recorded_at DESC, id DESC`

var findDuplicateSQL = `
SELECT ` + columnList + `
FROM review_events
WHERE subject_id = $1 AND payload_hash = $2
  AND recorded_at >= clock_timestamp() - $3::bigint * interval '1 microsecond'
ORDER BY recorded_at DESC, id DESC
LIMIT 1`

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Append inserts ev and returns the stored row with its assigned recorded_at.
// ev.RecordedAt is ignored.
func (r *Repo) Append(ctx context.Context, ev *domain.ReviewEvent) (*domain.ReviewEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, appendSQL,
		ev.ID, ev.SubjectID,
		ev.GroupKey.EntityID, ev.GroupKey.LogicalType, ev.GroupKey.ReportingPeriod,
		string(ev.Status), ev.ReporterUserID, ev.Comment, ev.CorrelationID, ev.PayloadHash,
	)

	stored, err := scanEvent(row)
	if err != nil {
		return nil, postgres.MapError(err, "review_event", ev.SubjectID)
	}
	return &stored, nil
}

// LockSubject takes the subject's transaction-scoped advisory lock. It must
// run inside a transaction; the lock is released on commit or rollback.
func (r *Repo) LockSubject(ctx context.Context, subjectID string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := q.Exec(ctx, postgres.LockKey, "review_event:"+subjectID); err != nil {
		return postgres.MapError(err, "lock review_event", subjectID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListBySubject returns the full history of a subject, newest first.
func (r *Repo) ListBySubject(ctx context.Context, subjectID string) ([]domain.ReviewEvent, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listBySubjectSQL, subjectID)
	if err != nil {
		return nil, postgres.MapError(err, "list review_events", subjectID)
	}
	return collectEvents(rows, subjectID)
}

// FirstBySubject returns the oldest (SortAsc) or newest (SortDesc) event of a
// subject. Returns domain.ErrNotFound if the subject has no events.
func (r *Repo) FirstBySubject(ctx context.Context, subjectID string, order domain.SortOrder) (*domain.ReviewEvent, error) {
	query := firstBySubjectDescSQL
	if order == domain.SortAsc {
		query = firstBySubjectAscSQL
	}

	ev, err := scanEvent(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, subjectID))
	if err != nil {
		return nil, postgres.MapError(err, "review_event", subjectID)
	}
	return &ev, nil
}

// ListByGroupKeys returns every event of every subject in the given groups.
func (r *Repo) ListByGroupKeys(ctx context.Context, keys []domain.GroupKey) ([]domain.ReviewEvent, error) {
	if len(keys) == 0 {
		return []domain.ReviewEvent{}, nil
	}
	entities, types, periods := splitKeys(keys)

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listByGroupKeysSQL, entities, types, periods)
	if err != nil {
		return nil, postgres.MapError(err, "list review_events by group", "")
	}
	return collectEvents(rows, "")
}

// LatestByGroupKeys returns the latest event of each subject in the given
// groups. This is the resolver's input.
func (r *Repo) LatestByGroupKeys(ctx context.Context, keys []domain.GroupKey) ([]domain.ReviewEvent, error) {
	if len(keys) == 0 {
		return []domain.ReviewEvent{}, nil
	}
	entities, types, periods := splitKeys(keys)

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, latestByGroupKeysSQL, entities, types, periods)
	if err != nil {
		return nil, postgres.MapError(err, "latest review_events by group", "")
	}
	return collectEvents(rows, "")
}

// LatestBySubjects returns the latest event of each known subject. Unknown
// subjects are absent from the result.
func (r *Repo) LatestBySubjects(ctx context.Context, subjectIDs []string) ([]domain.ReviewEvent, error) {
	if len(subjectIDs) == 0 {
		return []domain.ReviewEvent{}, nil
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, latestBySubjectsSQL, subjectIDs)
	if err != nil {
		return nil, postgres.MapError(err, "latest review_events by subject", "")
	}
	return collectEvents(rows, "")
}

// FindDuplicate returns the newest event of subjectID with the given payload
// hash recorded within window of the database clock. Returns
// domain.ErrNotFound if none.
func (r *Repo) FindDuplicate(ctx context.Context, subjectID string, hash []byte, window time.Duration) (*domain.ReviewEvent, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, findDuplicateSQL, subjectID, hash, window.Microseconds())

	ev, err := scanEvent(row)
	if err != nil {
		return nil, postgres.MapError(err, "duplicate review_event", subjectID)
	}
	return &ev, nil
}

// ListPending returns the subjects whose latest event is Pending, oldest
// first, ordered by (recorded_at, id).
func (r *Repo) ListPending(ctx context.Context, filter domain.QueueFilter, limit, offset int) ([]domain.ReviewEvent, error) {
	query := postgres.Builder().
		Select(columns...).
		FromSelect(latestPerSubject(groupPredicates(filter.EntityID, filter.LogicalType, filter.ReportingPeriod)), "latest").
		Where(squirrel.Eq{"status": string(domain.QaStatusPending)}).
		OrderBy("recorded_at ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending query: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "list pending review_events", "")
	}
	return collectEvents(rows, "")
}

// CountPending returns the number of subjects whose latest event is Pending.
func (r *Repo) CountPending(ctx context.Context, filter domain.QueueFilter) (int, error) {
	query := postgres.Builder().
		Select("count(*)").
		FromSelect(latestPerSubject(groupPredicates(filter.EntityID, filter.LogicalType, filter.ReportingPeriod)), "latest").
		Where(squirrel.Eq{"status": string(domain.QaStatusPending)})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build pending count query: %w", err)
	}

	var count int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "count pending review_events", "")
	}
	return count, nil
}

// Search returns events matching filter, newest first, together with the
// total number of matches. With onlyLatest, each subject contributes at most
// its latest event, and status/reporter filters apply to that event.
func (r *Repo) Search(ctx context.Context, filter domain.ReviewFilter, onlyLatest bool, limit, offset int) ([]domain.ReviewEvent, int, error) {
	base := postgres.Builder().Select(columns...)
	count := postgres.Builder().Select("count(*)")

	groupPreds := groupPredicates(filter.EntityID, filter.LogicalType, filter.ReportingPeriod)
	var eventPreds squirrel.And
	if filter.Status != nil {
		eventPreds = append(eventPreds, squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.ReporterUserID != nil {
		eventPreds = append(eventPreds, squirrel.Eq{"reporter_user_id": *filter.ReporterUserID})
	}

	if onlyLatest {
		base = base.FromSelect(latestPerSubject(groupPreds), "latest")
		count = count.FromSelect(latestPerSubject(groupPreds), "latest")
	} else {
		base = base.From("review_events").Where(groupPreds)
		count = count.From("review_events").Where(groupPreds)
	}
	if len(eventPreds) > 0 {
		base = base.Where(eventPreds)
		count = count.Where(eventPreds)
	}

	sql, args, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search count query: %w", err)
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "count review_events", "")
	}

	sql, args, err = base.
		OrderBy("recorded_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, "search review_events", "")
	}
	events, err := collectEvents(rows, "")
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// latestPerSubject selects the latest event of each subject matching preds.
// Group predicates may be pushed into the subquery since a subject never
// changes group.
func latestPerSubject(preds squirrel.And) squirrel.SelectBuilder {
	return squirrel.Select("DISTINCT ON (subject_id) " + columnList).
		From("review_events").
		Where(preds).
		OrderBy("subject_id", "recorded_at DESC", "id DESC")
}

func groupPredicates(entityID, logicalType, reportingPeriod *string) squirrel.And {
	preds := squirrel.And{}
	if entityID != nil {
		preds = append(preds, squirrel.Eq{"entity_id": *entityID})
	}
	if logicalType != nil {
		preds = append(preds, squirrel.Eq{"logical_type": *logicalType})
	}
	if reportingPeriod != nil {
		preds = append(preds, squirrel.Eq{"reporting_period": *reportingPeriod})
	}
	return preds
}

func splitKeys(keys []domain.GroupKey) (entities, types, periods []string) {
	entities = make([]string, len(keys))
	types = make([]string, len(keys))
	periods = make([]string, len(keys))
	for i, k := range keys {
		entities[i] = k.EntityID
		types[i] = k.LogicalType
		periods[i] = k.ReportingPeriod
	}
	return entities, types, periods
}

func scanEvent(row pgx.Row) (domain.ReviewEvent, error) {
	var (
		ev     domain.ReviewEvent
		status string
	)
	err := row.Scan(
		&ev.ID, &ev.SubjectID,
		&ev.GroupKey.EntityID, &ev.GroupKey.LogicalType, &ev.GroupKey.ReportingPeriod,
		&status, &ev.ReporterUserID, &ev.Comment, &ev.CorrelationID, &ev.PayloadHash, &ev.RecordedAt,
	)
	if err != nil {
		return domain.ReviewEvent{}, err
	}
	ev.Status = domain.QaStatus(status)
	ev.RecordedAt = ev.RecordedAt.UTC()
	return ev, nil
}

func collectEvents(rows pgx.Rows, id string) ([]domain.ReviewEvent, error) {
	defer rows.Close()

	events := []domain.ReviewEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review_event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "iterate review_events", id)
	}
	return events, nil
}
