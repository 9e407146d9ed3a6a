package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/async"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
	"github.com/joseph-ayodele/labresults-extractor/internal/repository"
)

type ExtractionService struct {
	proc       *core.Processor
	runs       repository.RunRepository
	queue      async.Queue
	skipHidden bool
	logger     *slog.Logger
}

// NewExtractionService wires the service. queue may be nil, in which case
// SubmitDirectory is unavailable.
func NewExtractionService(proc *core.Processor, runs repository.RunRepository, queue async.Queue, skipHidden bool, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{proc: proc, runs: runs, queue: queue, skipHidden: skipHidden, logger: logger}
}

type directoryRequest struct {
	RootPath     string
	Date         string
	Intervention string
	Overrides    *entity.Overrides
}

type extractResponse struct {
	RunID       string              `json:"run_id"`
	Status      string              `json:"status"`
	Record      json.RawMessage     `json:"record"`
	Assignments []entity.Assignment `json:"assignments"`
	PageErrors  []entity.PageError  `json:"page_errors"`
	Skipped     []string            `json:"skipped"`

	HistoryError string `json:"history_error,omitempty"`
}

func (s *ExtractionService) ExtractDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := parseDirectoryRequest(req)
	if err != nil {
		s.logger.Error("invalid extract request", "error", err)
		return nil, err
	}

	s.logger.Info("starting directory extraction", "root", in.RootPath)
	res, col, err := s.proc.RunDirectory(ctx, in.RootPath, s.skipHidden, in.Overrides)
	if err != nil && res == nil {
		s.logger.Error("directory extraction failed", "root", in.RootPath, "error", err)
		return nil, common.ToStatus(err)
	}
	historyErr := ""
	if err != nil {
		s.logger.Warn("run not recorded in history", "run_id", res.RunID, "error", err)
		historyErr = err.Error()
	}

	raw, err := json.Marshal(res.Record)
	if err != nil {
		return nil, common.InternalErrorf("encode record: %v", err)
	}
	out := extractResponse{
		RunID:       res.RunID,
		Status:      string(res.Status),
		Record:      raw,
		Assignments: res.Assignments,
		PageErrors:  core.PageErrors(res.Pages),
		Skipped:     make([]string, 0, len(col.Skipped)),

		HistoryError: historyErr,
	}
	if out.Assignments == nil {
		out.Assignments = []entity.Assignment{}
	}
	if out.PageErrors == nil {
		out.PageErrors = []entity.PageError{}
	}
	for _, sk := range col.Skipped {
		out.Skipped = append(out.Skipped, sk.Path)
	}
	s.logger.Info("directory extraction completed", "run_id", res.RunID, "status", res.Status, "assignments", len(res.Assignments))
	return toStruct(out)
}

func (s *ExtractionService) SubmitDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.queue == nil {
		return nil, common.InternalError("background queue is not configured")
	}
	in, err := parseDirectoryRequest(req)
	if err != nil {
		return nil, err
	}

	if err := record.ValidateOverrides(s.proc.Schema(), in.Overrides); err != nil {
		return nil, common.ToStatus(err)
	}

	runID := uuid.NewString()
	job := async.Job{RunID: runID, RootPath: in.RootPath, Overrides: in.Overrides, SubmittedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		if errors.Is(err, async.ErrQueueClosed) {
			return nil, common.InternalError(err.Error())
		}
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"run_id": runID, "status": "QUEUED"})
}

func (s *ExtractionService) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.runs == nil {
		return nil, common.InternalError("run history is not configured")
	}
	id := strings.TrimSpace(stringField(req, "run_id"))
	if err := common.NewChecks().Check("run_id", id, common.NotBlank, common.IsUUID).Status(); err != nil {
		return nil, err
	}

	run, err := s.runs.Get(ctx, id)
	if err != nil {
		if !repository.IsNotFound(err) {
			s.logger.Error("get run failed", "run_id", id, "error", err)
		}
		return nil, common.ToStatus(err)
	}
	return toStruct(run)
}

func parseDirectoryRequest(req *structpb.Struct) (directoryRequest, error) {
	in := directoryRequest{
		RootPath:     strings.TrimSpace(stringField(req, "root_path")),
		Date:         strings.TrimSpace(stringField(req, "date")),
		Intervention: strings.TrimSpace(stringField(req, "intervention")),
	}
	checks := common.NewChecks().
		Check("root_path", in.RootPath, common.NotBlank).
		Check("date", in.Date, common.IsDate).
		Check("intervention", in.Intervention, common.MaxRunes(200))
	if err := checks.Status(); err != nil {
		return in, err
	}

	ov := &entity.Overrides{}
	if st := req.GetFields()["overrides"].GetStructValue(); st != nil {
		b, err := protojson.Marshal(st)
		if err != nil {
			return in, common.InvalidArgumentErrorf("overrides: %v", err)
		}
		if err := json.Unmarshal(b, ov); err != nil {
			return in, common.InvalidArgumentErrorf("overrides: %v", err)
		}
	}
	if in.Date != "" || in.Intervention != "" {
		if ov.Values == nil {
			ov.Values = map[string]string{}
		}
		if in.Date != "" {
			ov.Values["Date"] = in.Date
		}
		if in.Intervention != "" {
			ov.Values["Intervention"] = in.Intervention
		}
	}
	if len(ov.Values) > 0 || len(ov.Ranges) > 0 {
		in.Overrides = ov
	}
	return in, nil
}

func stringField(st *structpb.Struct, name string) string {
	return st.GetFields()[name].GetStringValue()
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

var _ ExtractionServer = (*ExtractionService)(nil)
