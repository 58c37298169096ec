package core

// service_import.go implements bulk CSV import.
//
// The whole file is held in memory and processed synchronously:
//  1. The upload is validated (attached, named, .csv extension) and waits
//     for an import slot
//  2. Bytes must be valid UTF-8; a leading BOM is stripped and CR or CRLF
//     line endings become LF
//  3. The first line is discarded as a header without inspection, even
//     when it is blank
//  4. Rows with at least two columns become records (name, email)
//  5. Shorter rows are skipped and counted, never rejected
//  6. All records are inserted in one transaction and committed once

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/roster/internal/logging"
)

// ImportCSV inserts one record per data row of the uploaded CSV file.
func (s *Service) ImportCSV(ctx context.Context, up *Upload) (result *ImportResult, err error) {
	defer func() { s.metrics.observe("import", err) }()

	if err := validateUpload(up); err != nil {
		return nil, err
	}

	if err := s.imports.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.imports.Release()

	recs, skipped, err := parseRecordsCSV(up.Data)
	if err != nil {
		return nil, err
	}

	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID, "file", up.FileName)

	var inserted int64
	err = s.withTx(ctx, func(tx Tx) error {
		if len(recs) == 0 {
			return nil
		}
		n, err := tx.InsertMany(ctx, recs)
		if err != nil {
			return fmt.Errorf("insert imported records: %w", err)
		}
		inserted = n
		return nil
	})
	if err != nil {
		logger.Error("import failed", "error", err)
		return nil, err
	}

	s.metrics.observeImport(int(inserted), skipped)
	logger.Info("import completed", "inserted", inserted, "skipped", skipped)

	return &ImportResult{
		ImportID: importID,
		Inserted: int(inserted),
		Skipped:  skipped,
	}, nil
}

// parseRecordsCSV decodes data and converts every row after the header into
// a NewRecord. Rows with fewer than two columns are counted as skipped.
func parseRecordsCSV(data []byte) ([]NewRecord, int, error) {
	if !utf8.Valid(data) {
		return nil, 0, &ValidationError{Field: "file", Message: "file is not valid UTF-8 text"}
	}

	decoded := bufio.NewReader(transform.NewReader(bytes.NewReader(data), transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		lineEndings{},
	)))

	first, err := decoded.Peek(1)
	if errors.Is(err, io.EOF) {
		return nil, 0, &ValidationError{Field: "file", Message: "file is empty"}
	}
	if err != nil {
		return nil, 0, invalidCSV(err)
	}

	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	// csv.Reader skips blank lines, so a blank header line is consumed here.
	if first[0] == '\n' {
		_, _ = decoded.Discard(1)
	} else if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
		return nil, 0, invalidCSV(err)
	}

	var recs []NewRecord
	skipped := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, invalidCSV(err)
		}
		if len(row) < 2 {
			skipped++
			continue
		}
		recs = append(recs, NewRecord{Name: row[0], Email: row[1]})
	}

	return recs, skipped, nil
}

// lineEndings rewrites CR and CRLF line endings to LF. csv.Reader only
// splits on LF and CRLF.
type lineEndings struct{ transform.NopResetter }

func (lineEndings) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		c := src[nSrc]
		if c != '\r' {
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}
		if nSrc+1 == len(src) && !atEOF {
			return nDst, nSrc, transform.ErrShortSrc
		}
		dst[nDst] = '\n'
		nDst++
		nSrc++
		if nSrc < len(src) && src[nSrc] == '\n' {
			nSrc++
		}
	}
	return nDst, nSrc, nil
}

func invalidCSV(err error) *ValidationError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ValidationError{Field: "file", Message: fmt.Sprintf("invalid csv on line %d: %v", pe.Line, pe.Err)}
	}
	return &ValidationError{Field: "file", Message: fmt.Sprintf("invalid csv: %v", err)}
}
