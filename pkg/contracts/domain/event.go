package domain

import (
	"time"
)

// Canonical column names of a standardised event table.
const (
	ColumnEventID        = "EventID"
	ColumnCollectionDate = "CollectionDate"
	ColumnDepartment     = "Department"
	ColumnLocation       = "Location"
	ColumnMetricValue    = "MetricValue"
)

// EventColumns lists the columns kept after standardisation, in output order.
var EventColumns = []string{
	ColumnEventID,
	ColumnCollectionDate,
	ColumnDepartment,
	ColumnLocation,
	ColumnMetricValue,
}

// EventRecord represents a single infection event.
// A zero CollectionDate means the date was absent or could not be parsed;
// RawCollectionDate keeps the source text so it can be reported.
type EventRecord struct {
	EventID           string    `json:"event_id,omitempty"`
	CollectionDate    time.Time `json:"collection_date"`
	RawCollectionDate string    `json:"raw_collection_date,omitempty"`
	Department        string    `json:"department,omitempty"`
	Location          string    `json:"location,omitempty"`
	MetricValue       string    `json:"metric_value,omitempty"`
}

// HasDate reports whether the record carries a usable collection date.
func (r EventRecord) HasDate() bool {
	return !r.CollectionDate.IsZero()
}

// Day returns the calendar day of the collection date at UTC midnight.
func (r EventRecord) Day() time.Time {
	return Day(r.CollectionDate)
}

// EventTable is a standardised table of events together with the columns
// that were present in the source.
type EventTable struct {
	Columns []string      `json:"columns"`
	Records []EventRecord `json:"records"`
}

// HasColumn reports whether the source carried the named column.
func (t EventTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
