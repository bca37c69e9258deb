// Package accounts loads the Basis account credentials and the study
// identifier assignments from their flat-file stores.
package accounts

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Account is one row of the credential store.
type Account struct {
	Username string
	Password string
}

// Directory is a read-only view over the two account stores: a
// username,password file and a username,study_id file. Both are loaded once;
// a Directory never re-reads its backing files.
type Directory struct {
	accounts []Account
	studyIDs map[string]string
}

// Load reads both stores. Each file holds one row per account, two columns,
// no header. Rows with fewer than two fields are skipped. An unreadable file
// is an error; a username missing from the study-id store is not.
func Load(accountsPath, studyIDsPath string) (*Directory, error) {
	accountRows, err := readRows(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("account store: %w", err)
	}

	studyRows, err := readRows(studyIDsPath)
	if err != nil {
		return nil, fmt.Errorf("study-id store: %w", err)
	}

	d := &Directory{studyIDs: make(map[string]string, len(studyRows))}
	for _, row := range accountRows {
		d.accounts = append(d.accounts, Account{Username: row[0], Password: row[1]})
	}
	for _, row := range studyRows {
		d.studyIDs[row[0]] = row[1]
	}
	return d, nil
}

// Accounts returns the credential rows in file order.
func (d *Directory) Accounts() []Account {
	return d.accounts
}

// StudyID returns the study identifier assigned to username, or "" when the
// username has no assignment.
func (d *Directory) StudyID(username string) string {
	return d.studyIDs[username]
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
