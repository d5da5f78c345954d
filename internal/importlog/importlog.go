// Package importlog keeps an append-only CSV record of ledger-changing runs
// (imports, detection passes, overrides) under logs/.
package importlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Actions recorded in the log.
const (
	ActionImport   = "import"
	ActionDetect   = "detect"
	ActionOverride = "override"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp  time.Time
	Action     string
	Source     string
	User       string
	Imported   int
	Skipped    int
	Duplicates int
	AutoFilled int
	Transfers  int
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,action,source,user,imported,skipped,duplicates,auto_filled,transfers"

const (
	numFields     = 9
	logDir        = "logs"
	logFile       = "logs/import-log.csv"
	colTimestamp  = 0
	colAction     = 1
	colSource     = 2
	colUser       = 3
	colImported   = 4
	colSkipped    = 5
	colDuplicates = 6
	colAutoFilled = 7
	colTransfers  = 8
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAction] = e.Action
	row[colSource] = e.Source
	row[colUser] = e.User
	row[colImported] = strconv.Itoa(e.Imported)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colAutoFilled] = strconv.Itoa(e.AutoFilled)
	row[colTransfers] = strconv.Itoa(e.Transfers)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 5)
	for _, col := range []int{colImported, colSkipped, colDuplicates, colAutoFilled, colTransfers} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	return Entry{
		Timestamp:  ts,
		Action:     record[colAction],
		Source:     record[colSource],
		User:       record[colUser],
		Imported:   counts[0],
		Skipped:    counts[1],
		Duplicates: counts[2],
		AutoFilled: counts[3],
		Transfers:  counts[4],
	}, nil
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries ...Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns nil if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
