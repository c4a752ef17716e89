package domain

// ValidationReport summarises data quality of a standardised event table.
// Pointer fields are nil when the corresponding column is absent.
type ValidationReport struct {
	RowCount           int     `json:"row_count"`
	NullCollectionDate *int    `json:"null_collectiondate,omitempty"`
	DuplicateEventID   *int    `json:"duplicate_eventid,omitempty"`
	MinDate            *string `json:"min_date,omitempty"`
	MaxDate            *string `json:"max_date,omitempty"`
}

// Issues returns the number of rows that have a quality problem.
func (v ValidationReport) Issues() int {
	n := 0
	if v.NullCollectionDate != nil {
		n += *v.NullCollectionDate
	}
	if v.DuplicateEventID != nil {
		n += *v.DuplicateEventID
	}
	return n
}
