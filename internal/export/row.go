// Package export renders assembled rows as CSV, JSON or XLSX, plus a debug report.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joseph-ayodele/labresults-extractor/internal/common"
	"github.com/joseph-ayodele/labresults-extractor/internal/core/record"
)

// WriteCSV writes a header line of column names and one line of values; null cells are empty.
func WriteCSV(w io.Writer, rec record.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rec.Header()); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	if err := cw.Write(rec.Strings()); err != nil {
		return fmt.Errorf("csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the record as an indented object in column order after
// checking it against the schema's JSON Schema.
func WriteJSON(w io.Writer, rec record.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := common.ValidateJSONAgainstSchema(rec.Schema().JSONSchema(), b); err != nil {
		return err
	}
	out, err := indent(b)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func indent(b []byte) ([]byte, error) {
	var v json.RawMessage = b
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("indent record: %w", err)
	}
	return append(out, '\n'), nil
}
