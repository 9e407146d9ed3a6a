package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

const runTable = "extraction_run"

// fixed width so text ordering matches time ordering
const tsLayout = "2006-01-02T15:04:05.000000000Z"

var runColumns = []string{
	"id", "root_path", "status", "pages_total", "pages_failed", "token_count",
	"record_json", "assignments_json", "page_errors_json", "started_at", "finished_at",
}

type RunRepository interface {
	Save(ctx context.Context, run *entity.ExtractionRun) error
	Get(ctx context.Context, id string) (*entity.ExtractionRun, error)
	ListRecent(ctx context.Context, limit int) ([]entity.ExtractionRun, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Save(ctx context.Context, run *entity.ExtractionRun) error {
	assignments, err := json.Marshal(run.Assignments)
	if err != nil {
		return fmt.Errorf("marshal assignments: %w", err)
	}
	pageErrors, err := json.Marshal(run.PageErrors)
	if err != nil {
		return fmt.Errorf("marshal page errors: %w", err)
	}
	var rec any
	if len(run.Record) > 0 {
		rec = string(run.Record)
	}

	query, args := entsql.Dialect(r.db.Dialect).
		Insert(runTable).
		Columns(runColumns...).
		Values(
			run.ID, run.RootPath, run.Status, run.PagesTotal, run.PagesFailed, run.TokenCount,
			rec, string(assignments), string(pageErrors),
			run.StartedAt.UTC().Format(tsLayout), run.FinishedAt.UTC().Format(tsLayout),
		).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
		r.log.Error("extraction_run insert failed", "run_id", run.ID, "err", err)
		return common.NewAppError("DB_ERROR", "save run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	r.log.Info("extraction_run saved", "run_id", run.ID, "status", run.Status, "pages_failed", run.PagesFailed)
	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (*entity.ExtractionRun, error) {
	b := entsql.Dialect(r.db.Dialect)
	query, args := b.Select(runColumns...).
		From(b.Table(runTable)).
		Where(entsql.EQ("id", id)).
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "get run", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("run %s", id), common.ErrNotFound)
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if limit <= 0 {
		limit = 20
	}
	b := entsql.Dialect(r.db.Dialect)
	query, args := b.Select(runColumns...).
		From(b.Table(runTable)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list runs", fmt.Errorf("%w: %v", common.ErrDatabase, err))
	}
	defer rows.Close()

	var runs []entity.ExtractionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (*entity.ExtractionRun, error) {
	var (
		run                    entity.ExtractionRun
		rec, assigns, pageErrs sql.NullString
		startedAt, finishedAt  string
	)
	if err := rows.Scan(
		&run.ID, &run.RootPath, &run.Status, &run.PagesTotal, &run.PagesFailed, &run.TokenCount,
		&rec, &assigns, &pageErrs, &startedAt, &finishedAt,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if rec.Valid && rec.String != "" {
		run.Record = json.RawMessage(rec.String)
	}
	if assigns.Valid && assigns.String != "" {
		if err := json.Unmarshal([]byte(assigns.String), &run.Assignments); err != nil {
			return nil, fmt.Errorf("decode assignments: %w", err)
		}
	}
	if pageErrs.Valid && pageErrs.String != "" {
		if err := json.Unmarshal([]byte(pageErrs.String), &run.PageErrors); err != nil {
			return nil, fmt.Errorf("decode page errors: %w", err)
		}
	}
	var err error
	if run.StartedAt, err = time.Parse(tsLayout, startedAt); err != nil {
		return nil, fmt.Errorf("decode started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(tsLayout, finishedAt); err != nil {
		return nil, fmt.Errorf("decode finished_at: %w", err)
	}
	return &run, nil
}

// IsNotFound reports whether err is a missing-run error.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
