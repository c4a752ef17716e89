package extract

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"spccli/internal/config"
	"spccli/pkg/contracts/domain"
)

// SourceSynthetic names the demo dataset.
const SourceSynthetic = "synthetic"

// SyntheticPattern is the repeating weekly case count.
var SyntheticPattern = []int{0, 1, 2, 1, 0, 1, 2}

// SyntheticSpike is the case count forced on spike days.
const SyntheticSpike = 8

// Default synthetic range: two fiscal years so that the baseline is populated.
var (
	DefaultSyntheticFrom   = domain.Date(2020, time.April, 1)
	DefaultSyntheticTo     = domain.Date(2022, time.March, 31)
	DefaultSyntheticSpikes = []time.Time{
		domain.Date(2022, time.February, 10),
		domain.Date(2022, time.March, 5),
	}
)

// SyntheticExtractor generates a deterministic event table.
type SyntheticExtractor struct {
	From   time.Time
	To     time.Time
	Spikes []time.Time
}

// NewDefaultSyntheticExtractor covers the default range and spikes.
func NewDefaultSyntheticExtractor() *SyntheticExtractor {
	return &SyntheticExtractor{
		From:   DefaultSyntheticFrom,
		To:     DefaultSyntheticTo,
		Spikes: DefaultSyntheticSpikes,
	}
}

// NewSyntheticExtractor applies the configured range over the defaults.
func NewSyntheticExtractor(cfg config.SyntheticConfig) (*SyntheticExtractor, error) {
	e := NewDefaultSyntheticExtractor()
	if cfg.From != "" {
		from, err := time.Parse(domain.DateLayout, cfg.From)
		if err != nil {
			return nil, fmt.Errorf("invalid synthetic start date: %w", err)
		}
		e.From = from
	}
	if cfg.To != "" {
		to, err := time.Parse(domain.DateLayout, cfg.To)
		if err != nil {
			return nil, fmt.Errorf("invalid synthetic end date: %w", err)
		}
		e.To = to
	}
	if e.To.Before(e.From) {
		return nil, fmt.Errorf("synthetic range %s..%s is reversed", domain.FormatDay(e.From), domain.FormatDay(e.To))
	}
	return e, nil
}

// Name implements Extractor
func (e *SyntheticExtractor) Name() string {
	return SourceSynthetic
}

// Extract implements Extractor
func (e *SyntheticExtractor) Extract(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return failed(SourceSynthetic, err)
	}
	return Result{Table: e.Table(), Source: SourceSynthetic}
}

// DailyCount returns the number of events generated on day, where day is
// offset days after From.
func (e *SyntheticExtractor) DailyCount(day time.Time, offset int) int {
	for _, s := range e.Spikes {
		if domain.Day(s).Equal(day) {
			return SyntheticSpike
		}
	}
	return SyntheticPattern[offset%len(SyntheticPattern)]
}

// Table builds the dataset: one row per event with sequential ids.
func (e *SyntheticExtractor) Table() domain.RawTable {
	table := domain.RawTable{Columns: []string{domain.ColumnEventID, domain.ColumnCollectionDate}}
	from, to := domain.Day(e.From), domain.Day(e.To)

	id := 1
	for offset, day := 0, from; !day.After(to); offset, day = offset+1, day.AddDate(0, 0, 1) {
		date := domain.FormatDay(day)
		for n := e.DailyCount(day, offset); n > 0; n-- {
			table.Rows = append(table.Rows, []string{strconv.Itoa(id), date})
			id++
		}
	}
	return table
}
