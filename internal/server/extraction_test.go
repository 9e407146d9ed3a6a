package server

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/async"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/vocab"
)

type memRuns struct {
	mu      sync.Mutex
	runs    map[string]*entity.ExtractionRun
	saveErr error
}

func (m *memRuns) Save(_ context.Context, run *entity.ExtractionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs[run.ID] = run
	return nil
}

func (m *memRuns) Get(_ context.Context, id string) (*entity.ExtractionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, common.NewAppError("NOT_FOUND", "run "+id, common.ErrNotFound)
}

func (m *memRuns) ListRecent(context.Context, int) ([]entity.ExtractionRun, error) {
	return nil, nil
}

type fixture struct {
	client *ExtractionClient
	runs   *memRuns
	queue  *async.RunQueue
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "p1.png"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	engine := ocr.EngineFunc(func(context.Context, entity.Page) ([]entity.Word, error) {
		return []entity.Word{
			{Text: "AST", Confidence: 96, Box: entity.BoundingBox{Left: 10, Top: 10, Width: 4, Height: 4}, Index: 1},
			{Text: "3O", Confidence: 70, Box: entity.BoundingBox{Left: 15, Top: 12, Width: 4, Height: 4}, Index: 2},
		}, nil
	})
	runs := &memRuns{runs: map[string]*entity.ExtractionRun{}}
	proc, err := core.NewProcessor(nil, core.NewStages(common.LoadConfig(), engine, nil), record.DefaultSchema(), vocab.Default(), runs)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	queue := async.NewRunQueue(proc, nil)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterExtractionServer(srv, NewExtractionService(proc, runs, queue, true, nil))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{client: NewExtractionClient(conn), runs: runs, queue: queue, root: root}
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	st, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestExtractDirectory(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := f.client.ExtractDirectory(ctx, mustStruct(t, map[string]any{
		"root_path":    f.root,
		"date":         "2024-03-01",
		"intervention": "baseline",
	}))
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	m := out.AsMap()
	if m["status"] != "OK" {
		t.Fatalf("status = %v", m["status"])
	}
	rec := m["record"].(map[string]any)
	if rec["AST"] != "30" || rec["Date"] != "2024-03-01" || rec["Intervention"] != "baseline" {
		t.Fatalf("record = %v", rec)
	}
	if rec["ALT"] != nil {
		t.Fatalf("ALT = %v, want null", rec["ALT"])
	}
	if got := len(m["assignments"].([]any)); got != 1 {
		t.Fatalf("assignments = %d, want 1", got)
	}

	runID := m["run_id"].(string)
	run, err := f.client.GetRun(ctx, mustStruct(t, map[string]any{"run_id": runID}))
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.AsMap()["root_path"] != f.root {
		t.Fatalf("run = %v", run.AsMap())
	}
}

func TestExtractDirectoryInvalidArguments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  map[string]any
	}{
		{"missing root", map[string]any{}},
		{"bad date", map[string]any{"root_path": f.root, "date": "03/01/2024"}},
		{"empty directory", map[string]any{"root_path": t.TempDir()}},
		{"unknown override", map[string]any{"root_path": f.root, "overrides": map[string]any{"values": map[string]any{"LDL": "1"}}}},
		{"unknown range key", map[string]any{"root_path": f.root, "overrides": map[string]any{"ranges": map[string]any{"AST": map[string]any{"RangeMid": 1.0}}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.client.ExtractDirectory(ctx, mustStruct(t, tc.req))
			if status.Code(err) != codes.InvalidArgument {
				t.Fatalf("code = %v, want InvalidArgument (err %v)", status.Code(err), err)
			}
		})
	}
}

func TestExtractDirectoryReturnsRecordWhenHistorySaveFails(t *testing.T) {
	f := newFixture(t)
	f.runs.mu.Lock()
	f.runs.saveErr = errors.New("database is locked")
	f.runs.mu.Unlock()

	out, err := f.client.ExtractDirectory(context.Background(), mustStruct(t, map[string]any{"root_path": f.root}))
	if err != nil {
		t.Fatalf("ExtractDirectory() error = %v", err)
	}
	m := out.AsMap()
	if rec := m["record"].(map[string]any); rec["AST"] != "30" {
		t.Fatalf("record = %v", rec)
	}
	if msg, _ := m["history_error"].(string); !strings.Contains(msg, "database is locked") {
		t.Fatalf("history_error = %v", m["history_error"])
	}
}

func TestGetRunErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.GetRun(ctx, mustStruct(t, map[string]any{"run_id": "not-a-uuid"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
	}
	_, err = f.client.GetRun(ctx, mustStruct(t, map[string]any{"run_id": "7f1c7a52-3b3e-4a43-9a1e-0d5f0b7c2a11"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %v, want NotFound", status.Code(err))
	}
}

func TestSubmitDirectory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.client.SubmitDirectory(ctx, mustStruct(t, map[string]any{"root_path": f.root}))
	if err != nil {
		t.Fatalf("SubmitDirectory() error = %v", err)
	}
	m := out.AsMap()
	if m["status"] != "QUEUED" {
		t.Fatalf("status = %v", m["status"])
	}

	drain, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	f.queue.Shutdown(drain)

	run, err := f.runs.Get(ctx, m["run_id"].(string))
	if err != nil {
		t.Fatalf("queued run not stored: %v", err)
	}
	if run.Status != "OK" {
		t.Fatalf("run status = %s", run.Status)
	}
}

func TestSubmitDirectoryRejectsUnknownOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.SubmitDirectory(ctx, mustStruct(t, map[string]any{
		"root_path": f.root,
		"overrides": map[string]any{"values": map[string]any{"LDL": "1"}},
	}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %v, want InvalidArgument (err %v)", status.Code(err), err)
	}

	drain, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	f.queue.Shutdown(drain)
	f.runs.mu.Lock()
	defer f.runs.mu.Unlock()
	if len(f.runs.runs) != 0 {
		t.Fatalf("runs = %v, want nothing queued", f.runs.runs)
	}
}
