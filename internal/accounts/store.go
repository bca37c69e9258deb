package accounts

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Append adds one username,password row to the credential store, creating
// the file if needed. The caller is expected to have validated that the
// username is not already present.
func Append(path, username, password string) error {
	return appendRow(path, []string{username, password})
}

// AppendStudyID adds one username,study_id row to the study-id store.
func AppendStudyID(path, username, studyID string) error {
	return appendRow(path, []string{username, studyID})
}

func appendRow(path string, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
