package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// DailyCount is the number of events collected on one calendar day.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count" validate:"min=0"`
}

type dailyCountJSON struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MarshalJSON writes Date as a calendar day
func (d DailyCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyCountJSON{Date: FormatDay(d.Date), Count: d.Count})
}

func (d *DailyCount) UnmarshalJSON(data []byte) error {
	var raw dailyCountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDay(raw.Date)
	if err != nil {
		return err
	}
	*d = DailyCount{Date: date, Count: raw.Count}
	return nil
}

// ControlLimits holds the baseline statistics used to classify days.
type ControlLimits struct {
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	UpperWarning float64 `json:"uwl_2sd"`
	UpperControl float64 `json:"ucl_3sd"`
	BaselineDays int     `json:"baseline_days"`
	BaselineFY   int     `json:"baseline_fy,omitempty"`
}

// Status is the SPC classification of a single day.
type Status string

const (
	StatusWithinRange Status = "Within Expected Range"
	StatusWarning2SD  Status = "2 SD Warning"
	StatusBreach3SD   Status = "3 SD Breach"
	// StatusUndefined counts days whose status was never set.
	StatusUndefined Status = "Undefined"
)

// statusOrder is the report order of the known statuses.
var statusOrder = map[Status]int{
	StatusBreach3SD:   0,
	StatusWarning2SD:  1,
	StatusWithinRange: 2,
	StatusUndefined:   3,
}

// IsAlert reports whether the status is a warning or a breach.
func (s Status) IsAlert() bool {
	return s == StatusBreach3SD || s == StatusWarning2SD
}

// FlaggedDay is a current-period day annotated with the limits it was
// compared against and its resulting status.
type FlaggedDay struct {
	DailyCount
	Limits ControlLimits `json:"limits"`
	Status Status        `json:"status"`
}

// flaggedDayJSON keeps the flat layout of the embedded count, which would
// otherwise be hidden by the promoted DailyCount methods.
type flaggedDayJSON struct {
	Date   string        `json:"date"`
	Count  int           `json:"count"`
	Limits ControlLimits `json:"limits"`
	Status Status        `json:"status"`
}

func (f FlaggedDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(flaggedDayJSON{
		Date:   FormatDay(f.Date),
		Count:  f.Count,
		Limits: f.Limits,
		Status: f.Status,
	})
}

func (f *FlaggedDay) UnmarshalJSON(data []byte) error {
	var raw flaggedDayJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := ParseDay(raw.Date)
	if err != nil {
		return err
	}
	*f = FlaggedDay{
		DailyCount: DailyCount{Date: date, Count: raw.Count},
		Limits:     raw.Limits,
		Status:     raw.Status,
	}
	return nil
}

// BreachSummary counts flagged days per status.
type BreachSummary map[Status]int

// StatusCount is one row of a breach summary.
type StatusCount struct {
	Status Status `json:"status"`
	Days   int    `json:"days"`
}

// Total returns the number of days represented by the summary.
func (s BreachSummary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Rows returns the summary in a deterministic order: breaches, warnings,
// within range, undefined, then any other status alphabetically.
func (s BreachSummary) Rows() []StatusCount {
	rows := make([]StatusCount, 0, len(s))
	for status, days := range s {
		rows = append(rows, StatusCount{Status: status, Days: days})
	}
	sort.Slice(rows, func(i, j int) bool {
		oi, okI := statusOrder[rows[i].Status]
		oj, okJ := statusOrder[rows[j].Status]
		switch {
		case okI && okJ:
			return oi < oj
		case okI != okJ:
			return okI
		default:
			return rows[i].Status < rows[j].Status
		}
	})
	return rows
}
