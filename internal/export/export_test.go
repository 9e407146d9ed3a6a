package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/labresults-extractor/constants"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
	"github.com/joseph-ayodele/labresults-extractor/internal/entity"
)

func sampleRecord(t *testing.T) record.Record {
	t.Helper()
	rec, err := record.NewAssembler(nil).Assemble(record.DefaultSchema(),
		[]entity.Assignment{{Field: "AST", Value: "30"}},
		&entity.Overrides{Values: map[string]string{"Date": "2024-03-01"}})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	return rec
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecord(t)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != len(rows[1]) {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "Date" || rows[1][0] != "2024-03-01" {
		t.Fatalf("first column = %q / %q", rows[0][0], rows[1][0])
	}
	if rows[0][1] != "Intervention" || rows[1][1] != "" {
		t.Fatalf("null cell rendered as %q", rows[1][1])
	}
	if rows[0][2] != "AST" || rows[1][2] != "30" || rows[1][3] != "8" {
		t.Fatalf("AST cells = %v", rows[1][2:5])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecord(t)); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"Date\": \"2024-03-01\"") {
		t.Fatalf("json = %s", buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m["AST"] != "30" || m["ALT"] != nil || m["IRON_FemaleRangeLow"] != 35.0 {
		t.Fatalf("decoded = %v", m)
	}
}

type stubRuns struct{ runs []entity.ExtractionRun }

func (s stubRuns) Save(context.Context, *entity.ExtractionRun) error { return nil }
func (s stubRuns) Get(context.Context, string) (*entity.ExtractionRun, error) {
	return nil, nil
}
func (s stubRuns) ListRecent(context.Context, int) ([]entity.ExtractionRun, error) {
	return s.runs, nil
}

func TestRecordsXLSX(t *testing.T) {
	schema := record.DefaultSchema()
	b, err := NewService(nil, nil).RecordsXLSX(schema, []record.Record{sampleRecord(t)})
	if err != nil {
		t.Fatalf("RecordsXLSX() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue(sheet, "A1"); got != "Date" {
		t.Fatalf("A1 = %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "C2"); got != "30" {
		t.Fatalf("C2 = %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "B2"); got != "" {
		t.Fatalf("B2 = %q, want empty", got)
	}
	if len(f.GetSheetList()) != 1 {
		t.Fatalf("sheets = %v", f.GetSheetList())
	}
}

func TestRunsXLSX(t *testing.T) {
	runs := stubRuns{runs: []entity.ExtractionRun{
		{ID: "r2", Record: json.RawMessage(`{"AST":"31"}`), StartedAt: time.Now()},
		{ID: "r1", Status: "FAILED"},
	}}
	b, err := NewService(runs, nil).RunsXLSX(context.Background(), record.DefaultSchema(), 10)
	if err != nil {
		t.Fatalf("RunsXLSX() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + one run", len(rows))
	}
	if rows[0][0] != "Run ID" || rows[1][0] != "r2" || rows[1][3] != "31" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestDebugReport(t *testing.T) {
	tokens := []entity.Token{
		{Word: entity.Word{Text: "AST"}, UniqueKey: "k", Candidates: []entity.FieldMatch{{Field: "AST"}}, Assignment: "v"},
		{Word: entity.Word{Text: "30"}, UniqueKey: "v", NumberScore: 0.8, Value: "30", Assignment: "k"},
		{Word: entity.Word{Text: "mg/dL"}, UniqueKey: "n"},
	}
	rep := BuildDebugReport("run", tokens, nil, nil, 0.6)
	want := []constants.TokenClass{constants.TokenClassFieldMatch, constants.TokenClassNumeric, constants.TokenClassNeither}
	for i, w := range want {
		if rep.Tokens[i].Class != w {
			t.Fatalf("tokens[%d].Class = %s, want %s", i, rep.Tokens[i].Class, w)
		}
	}
	var buf bytes.Buffer
	if err := WriteDebugReport(&buf, rep); err != nil {
		t.Fatalf("WriteDebugReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), `"assignments": []`) {
		t.Fatalf("report = %s", buf.String())
	}
}
