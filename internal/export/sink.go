package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSink writes one delimited export file: a fixed header row written at
// open, then data rows appended across all accounts and days of the run.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink truncates path and writes the header row.
func NewCSVSink(path string, header []string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header to %s: %w", path, err)
	}

	return &CSVSink{f: f, w: w}, nil
}

// Append writes one data row.
func (s *CSVSink) Append(row []string) error {
	return s.w.Write(row)
}

// Close flushes buffered rows and closes the file. The flush error, if any,
// wins over the close error.
func (s *CSVSink) Close() error {
	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.f.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// WriteRaw replaces the contents of path with body. Writing an empty body is
// an error: a zero-byte export file only hides a broken fetch.
func WriteRaw(path string, body []byte) error {
	if len(body) == 0 {
		return fmt.Errorf("refusing to write empty body to %s", path)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
