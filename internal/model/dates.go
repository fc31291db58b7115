package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// statementDateLayouts are the formats bank exports actually use.
// Day-first layouts come before the ISO one; all three are
// unambiguous against each other.
var statementDateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"2006-01-02",
}

// ParseStatementDate parses a locale-specific textual statement date.
func ParseStatementDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range statementDateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", text)
}

// SortRowsForRun orders rows by value date, then natural key, the
// batch's reproducible processing order. Rows with unparseable dates
// sort by key alone; the writer reports them separately.
func SortRowsForRun(rows []RawRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, ei := ParseStatementDate(rows[i].ValueDateText)
		dj, ej := ParseStatementDate(rows[j].ValueDateText)
		if ei == nil && ej == nil && !di.Equal(dj) {
			return di.Before(dj)
		}
		if rows[i].DocumentKey != rows[j].DocumentKey {
			return rows[i].DocumentKey < rows[j].DocumentKey
		}
		return rows[i].EntryNo < rows[j].EntryNo
	})
}
