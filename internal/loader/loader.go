// Package loader reads the sites CSV into entries and can emit a sample
// file to get a new portal started.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/chevolec/portalgen/internal/model"
)

// InputError marks a fatal problem with the input file itself: missing,
// unreadable, empty, or lacking the required header columns. It aborts
// the run, unlike per-row problems which are skipped.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input file %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

var requiredColumns = []string{"title", "url"}

// Load reads the CSV at path and returns its well-formed rows in file
// order. Rows missing title or url are skipped with a warning; image and
// description default to empty, including when the row has fewer fields
// than the header. The header must contain at least the title and url
// columns; extra columns are ignored.
func Load(path string, logger *zap.Logger) ([]model.SiteEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM

	if err := checkHeader(data); err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	// Rows may legitimately omit trailing optional columns; disable the
	// field-count check so a short row defaults image/description to ""
	// instead of aborting the whole file.
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var rows []model.SiteEntry
	if err := gocsv.UnmarshalCSV(r, &rows); err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	entries := make([]model.SiteEntry, 0, len(rows))
	for i, row := range rows {
		row.Title = strings.TrimSpace(row.Title)
		row.URL = strings.TrimSpace(row.URL)
		row.Image = strings.TrimSpace(row.Image)
		row.Description = strings.TrimSpace(row.Description)

		if row.Title == "" || row.URL == "" {
			// Line numbering: header is line 1, first data row line 2.
			logger.Warn("skipping row: title and url are required",
				zap.Int("line", i+2),
				zap.String("title", row.Title),
				zap.String("url", row.URL))
			continue
		}
		entries = append(entries, row)
	}
	return entries, nil
}

// checkHeader verifies the required columns before gocsv gets the data;
// gocsv zero-fills fields whose column is absent, so a missing header
// would otherwise just look like a file full of bad rows.
func checkHeader(data []byte) error {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("file is empty")
		}
		return fmt.Errorf("read header: %w", err)
	}

	have := make(map[string]bool, len(header))
	for _, col := range header {
		have[strings.ToLower(strings.TrimSpace(col))] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("header is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
