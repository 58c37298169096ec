package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// ExportFileName is the attachment name suggested for CSV exports.
const ExportFileName = "export_data.csv"

// exportHeader is the first row of every export. The id column is never exported.
var exportHeader = []string{"name", "email"}

// ExportCSV serializes the page that List would return for params.
// Only the requested page is exported, mirroring the paginated table view.
func (s *Service) ExportCSV(ctx context.Context, params ListParams) ([]byte, error) {
	res, err := s.List(ctx, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteRecordsCSV(&buf, res.Items); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteRecordsCSV writes the export header and one (name, email) row per
// record. Rows end with CRLF.
func WriteRecordsCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write([]string{rec.Name, rec.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
