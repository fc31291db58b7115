// Package runlog appends per-run diagnostics to a CSV audit log so
// operators can review what a batch skipped or warned about after the
// fact.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerline-dev/ledgerline/internal/model"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	Scheme    string
	Kind      model.DiagnosticKind
	RowKey    string
	Detail    string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,scheme,kind,row_key,detail"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/run-log.csv"
	colTimestamp = 0
	colScheme    = 1
	colKind      = 2
	colRowKey    = 3
	colDetail    = 4
)

// FromDiagnostics converts a run's diagnostics into log entries.
func FromDiagnostics(scheme string, now time.Time, diags []model.Diagnostic) []Entry {
	entries := make([]Entry, len(diags))
	for i, d := range diags {
		key := d.Key.String()
		if d.Kind == model.DiagRuleCompile {
			key = "rule:" + strconv.Itoa(d.RuleSequence)
		}
		entries[i] = Entry{
			Timestamp: now,
			Scheme:    scheme,
			Kind:      d.Kind,
			RowKey:    key,
			Detail:    d.Detail,
		}
	}
	return entries
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colScheme] = e.Scheme
	row[colKind] = string(e.Kind)
	row[colRowKey] = e.RowKey
	row[colDetail] = e.Detail
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

	return Entry{
		Timestamp: ts,
		Scheme:    record[colScheme],
		Kind:      model.DiagnosticKind(record[colKind]),
		RowKey:    record[colRowKey],
		Detail:    record[colDetail],
	}, nil
}

// Append writes entries to <root>/logs/run-log.csv, creating the file
// and header if needed.
func Append(root string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

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

	return cw.Error()
}

// Read returns all entries from <root>/logs/run-log.csv. Returns nil
// if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}

	if len(records) == 0 {
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
