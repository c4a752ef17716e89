package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"spccli/pkg/contracts/domain"
)

// ErrMissingColumn is returned when a required column is absent after
// alias mapping.
var ErrMissingColumn = errors.New("missing required column")

// collectionDateAliases are accepted in place of CollectionDate, in order of
// preference.
var collectionDateAliases = []string{
	"collection_date",
	"Collection_Date",
	"Date",
	"CollectionInstant",
}

// dateLayouts are tried in order when coercing collection dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	domain.DateLayout,
	"2006/01/02",
	"20060102",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"2 January 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

func isDateColumn(name string) bool {
	if name == domain.ColumnCollectionDate {
		return true
	}
	for _, alias := range collectionDateAliases {
		if name == alias {
			return true
		}
	}
	return false
}

// Standardise maps a raw table onto the event schema. Column names are
// trimmed, a collection date alias is renamed when CollectionDate itself is
// absent, and only the known event columns are kept. Unparseable dates yield
// records with a zero CollectionDate.
func Standardise(raw domain.RawTable) (domain.EventTable, error) {
	columns := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		columns[i] = strings.TrimSpace(c)
	}
	trimmed := domain.RawTable{Columns: columns, Rows: raw.Rows}

	dateCol := trimmed.Index(domain.ColumnCollectionDate)
	if dateCol < 0 {
		for _, alias := range collectionDateAliases {
			if i := trimmed.Index(alias); i >= 0 {
				dateCol = i
				break
			}
		}
	}
	if dateCol < 0 {
		return domain.EventTable{}, fmt.Errorf("%w: %s", ErrMissingColumn, domain.ColumnCollectionDate)
	}
	columns[dateCol] = domain.ColumnCollectionDate

	index := make(map[string]int, len(domain.EventColumns))
	table := domain.EventTable{Records: make([]domain.EventRecord, 0, len(raw.Rows))}
	for _, name := range domain.EventColumns {
		// First occurrence wins when a name repeats.
		if i := trimmed.Index(name); i >= 0 {
			index[name] = i
			table.Columns = append(table.Columns, name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, row := range raw.Rows {
		rawDate := cell(row, domain.ColumnCollectionDate)
		date, _ := ParseDate(rawDate)
		table.Records = append(table.Records, domain.EventRecord{
			EventID:           cell(row, domain.ColumnEventID),
			CollectionDate:    date,
			RawCollectionDate: rawDate,
			Department:        cell(row, domain.ColumnDepartment),
			Location:          cell(row, domain.ColumnLocation),
			MetricValue:       cell(row, domain.ColumnMetricValue),
		})
	}

	return table, nil
}

// ParseDate coerces s to a calendar day at UTC midnight. It reports false and
// returns the zero time when s is empty or matches no known layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Day(t), true
		}
	}
	return time.Time{}, false
}
