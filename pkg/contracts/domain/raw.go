package domain

// RawTable is an untyped table as read from an event source. Every row has
// one cell per column; missing cells are empty strings.
type RawTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of data rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t RawTable) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell of row i in column name, or "" when either is absent.
func (t RawTable) Value(i int, name string) string {
	col := t.Index(name)
	if col < 0 || i < 0 || i >= len(t.Rows) || col >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][col]
}
