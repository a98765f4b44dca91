// internal/correlation/timing.go
package correlation

import (
	"math"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

// AnalyzeTiming tests whether the outcome depends on when in the day
// the exposure happened. Time-of-day is categorical, so there is no
// rank-correlation variant; the only statistic is the rank-biserial
// effect size between the best-average and worst-average buckets.
// Nil finding means no finding: too few pairs, fewer than two populated
// buckets, or an effect below the significance threshold.
func AnalyzeTiming(exposures []series.ExposureEvent, outcomes []series.OutcomeObservation,
	independentName, dependentName string, window series.TemporalWindow) *TimingFinding {

	pairs := series.ExtractPairs(exposures, outcomes, window)
	if len(pairs) < MinPairCount {
		return nil
	}

	byBucket := map[series.TimeOfDay][]series.Pair{}
	for _, p := range pairs {
		if p.TimeOfDay == series.TimeOfDayUnknown {
			continue
		}
		byBucket[p.TimeOfDay] = append(byBucket[p.TimeOfDay], p)
	}
	if len(byBucket) < MinTimingBuckets {
		return nil
	}

	summaries := map[series.TimeOfDay]StratumSummary{}
	for bucket, group := range byBucket {
		summaries[bucket] = summarize(group)
	}

	// Stable bucket order breaks average ties deterministically.
	var best, worst series.TimeOfDay
	for _, bucket := range series.Buckets {
		s, populated := summaries[bucket]
		if !populated {
			continue
		}
		if best == series.TimeOfDayUnknown || s.AvgOutcome > summaries[best].AvgOutcome {
			best = bucket
		}
		if worst == series.TimeOfDayUnknown || s.AvgOutcome < summaries[worst].AvgOutcome {
			worst = bucket
		}
	}

	delta, ok := RankBiserial(outcomesOf(byBucket[best]), outcomesOf(byBucket[worst]))
	if !ok || math.Abs(delta) < SignificanceThreshold {
		return nil
	}

	direction := DirectionPositive
	optimal := best
	if delta < 0 {
		direction = DirectionNegative
		optimal = worst
	}

	return &TimingFinding{
		IndependentName: independentName,
		DependentName:   dependentName,
		Window:          window,
		EffectSize:      math.Abs(delta),
		Direction:       direction,
		Buckets:         summaries,
		OptimalTiming:   optimal,
		EvidenceTier:    EvidenceTier,
	}
}
