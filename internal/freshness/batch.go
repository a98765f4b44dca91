// internal/freshness/batch.go
package freshness

import (
	"sort"
	"time"
)

// Signal identifies one measured input and when it was last measured.
type Signal struct {
	Name           string    `json:"name"`
	LastMeasuredAt time.Time `json:"last_measured_at"`
}

// Record is the freshness assessment of one signal.
type Record struct {
	SignalName           string     `json:"signal_name"`
	LastMeasuredAt       time.Time  `json:"last_measured_at"`
	Score                float64    `json:"score"`
	Category             Category   `json:"category"`
	RecommendedRecheckAt *time.Time `json:"recommended_recheck_at,omitempty"`
	IsOverdue            bool       `json:"is_overdue"`
}

// Assess scores a single signal against the current instant.
func Assess(sig Signal, now time.Time) Record {
	score := Score(sig.LastMeasuredAt, now)
	rec := Record{
		SignalName:     sig.Name,
		LastMeasuredAt: sig.LastMeasuredAt,
		Score:          score,
		Category:       Categorize(score),
	}

	if iv := ExpectedInterval(sig.Name); iv.Known {
		recheck := sig.LastMeasuredAt.AddDate(0, 0, iv.Days)
		rec.RecommendedRecheckAt = &recheck
		rec.IsOverdue = !now.Before(recheck)
	}
	return rec
}

// AssessAll scores every signal and returns the records sorted
// ascending by score, stalest first.
func AssessAll(signals []Signal, now time.Time) []Record {
	records := make([]Record, 0, len(signals))
	for _, sig := range signals {
		records = append(records, Assess(sig, now))
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Score < records[j].Score })
	return records
}

// NeedsAttention keeps only yellow and red records.
func NeedsAttention(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Category != CategoryGreen {
			out = append(out, r)
		}
	}
	return out
}

// OverdueOnly keeps only records past their recommended recheck date.
func OverdueOnly(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.IsOverdue {
			out = append(out, r)
		}
	}
	return out
}
