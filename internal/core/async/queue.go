package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one directory to be extracted under a pre-assigned run ID.
type Job struct {
	RunID       string
	RootPath    string
	Overrides   *entity.Overrides
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
