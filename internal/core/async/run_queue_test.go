package async

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/vocab"
)

type memRuns struct {
	mu   sync.Mutex
	runs map[string]*entity.ExtractionRun
}

func (m *memRuns) Save(_ context.Context, run *entity.ExtractionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memRuns) Get(_ context.Context, id string) (*entity.ExtractionRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, common.ErrNotFound
}

func (m *memRuns) ListRecent(context.Context, int) ([]entity.ExtractionRun, error) {
	return nil, nil
}

func astWords() []entity.Word {
	return []entity.Word{
		{Text: "AST", Confidence: 96, Box: entity.BoundingBox{Left: 10, Top: 10, Width: 4, Height: 4}, Index: 1},
		{Text: "30", Confidence: 96, Box: entity.BoundingBox{Left: 20, Top: 10, Width: 4, Height: 4}, Index: 2},
	}
}

func newQueueFixture(t *testing.T) (*core.Processor, *memRuns, string) {
	t.Helper()
	engine := ocr.EngineFunc(func(context.Context, entity.Page) ([]entity.Word, error) {
		return astWords(), nil
	})
	return newQueueFixtureWithEngine(t, engine)
}

func newQueueFixtureWithEngine(t *testing.T, engine ocr.Engine) (*core.Processor, *memRuns, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "p1.png"), []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	runs := &memRuns{runs: map[string]*entity.ExtractionRun{}}
	p, err := core.NewProcessor(nil, core.NewStages(common.LoadConfig(), engine, nil), record.DefaultSchema(), vocab.Default(), runs)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	return p, runs, root
}

func TestRunQueueProcessesJobs(t *testing.T) {
	p, runs, root := newQueueFixture(t)
	q := NewRunQueue(p, nil, WithWorkers(2), WithQueueSize(4))

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if err := q.Enqueue(context.Background(), Job{RunID: id, RootPath: root}); err != nil {
			t.Fatalf("Enqueue(%s) error = %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		run, err := runs.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("run %s not saved: %v", id, err)
		}
		if run.Status != "OK" {
			t.Fatalf("run %s status = %s", id, run.Status)
		}
	}
}

func TestRunQueueRejectsAfterShutdown(t *testing.T) {
	p, _, root := newQueueFixture(t)
	q := NewRunQueue(p, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{RunID: "late", RootPath: root})
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("Enqueue() error = %v, want ErrQueueClosed", err)
	}
}

func TestShutdownHonorsDeadlineWithBlockedEnqueue(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	engine := ocr.EngineFunc(func(ctx context.Context, _ entity.Page) ([]entity.Word, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return astWords(), nil
	})
	p, _, root := newQueueFixtureWithEngine(t, engine)
	q := NewRunQueue(p, nil, WithWorkers(1), WithQueueSize(1))

	if err := q.Enqueue(context.Background(), Job{RunID: "busy", RootPath: root}); err != nil {
		t.Fatalf("Enqueue(busy) error = %v", err)
	}
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first job")
	}
	if err := q.Enqueue(context.Background(), Job{RunID: "waiting", RootPath: root}); err != nil {
		t.Fatalf("Enqueue(waiting) error = %v", err)
	}

	blocked := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		blocked <- q.Enqueue(ctx, Job{RunID: "overflow", RootPath: root})
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	begin := time.Now()
	q.Shutdown(ctx)
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Fatalf("Shutdown() took %v with a 100ms deadline", elapsed)
	}

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrQueueClosed) {
			t.Fatalf("blocked Enqueue() error = %v, want ErrQueueClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Enqueue() did not return after Shutdown")
	}
}
