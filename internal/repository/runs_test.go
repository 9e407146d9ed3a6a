package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close(nil) })
	if err := HealthCheck(ctx, db, time.Second, nil); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestIsPostgresDSN(t *testing.T) {
	if !IsPostgresDSN("postgres://u@h/db") || !IsPostgresDSN("postgresql://u@h/db") {
		t.Fatal("postgres DSN not recognised")
	}
	if IsPostgresDSN("./labresults.db") {
		t.Fatal("file path treated as postgres")
	}
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t), nil)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &entity.ExtractionRun{
		ID: "run-1", RootPath: "/scans/a", Status: "OK", PagesTotal: 2, TokenCount: 40,
		Record:      json.RawMessage(`{"AST":"30"}`),
		Assignments: []entity.Assignment{{Field: "AST", KeyToken: "k", ValueKey: "v", Weight: 5, Value: "30"}},
		StartedAt:   base, FinishedAt: base.Add(time.Second),
	}
	second := &entity.ExtractionRun{
		ID: "run-2", RootPath: "/scans/b", Status: "PARTIAL", PagesTotal: 3, PagesFailed: 1,
		PageErrors: []entity.PageError{{PageID: "b/2.png", Message: "corrupt"}},
		StartedAt:  base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Second),
	}
	for _, r := range []*entity.ExtractionRun{first, second} {
		if err := repo.Save(ctx, r); err != nil {
			t.Fatalf("Save(%s) error = %v", r.ID, err)
		}
	}

	got, err := repo.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.RootPath != "/scans/a" || string(got.Record) != `{"AST":"30"}` || len(got.Assignments) != 1 || got.Assignments[0].Value != "30" {
		t.Fatalf("Get() = %+v", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Fatalf("StartedAt = %v, want %v", got.StartedAt, base)
	}

	runs, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Fatalf("ListRecent() = %+v, want run-2 first", runs)
	}
	if len(runs[0].PageErrors) != 1 || runs[0].Record != nil {
		t.Fatalf("run-2 = %+v", runs[0])
	}
}

func TestRunRepositoryGetMissing(t *testing.T) {
	repo := NewRunRepository(openTestDB(t), nil)
	_, err := repo.Get(context.Background(), "nope")
	if !IsNotFound(err) {
		t.Fatalf("Get() error = %v, want not found", err)
	}
}

func TestRunRepositoryDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t), nil)
	run := &entity.ExtractionRun{ID: "dup", Status: "OK", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, run); err == nil {
		t.Fatal("second Save() error = nil, want primary key violation")
	}
}
