// internal/correlation/doseresponse.go
package correlation

import (
	"fmt"
	"math"

	"github.com/vitalgraph/vitalgraph/internal/series"
)

// AnalyzeDoseResponse tests whether the dependent series responds to
// the exposure's magnitude within the given temporal window. A nil
// finding with nil error means "no finding": too few pairs, or no
// statistic cleared the significance threshold. That is the common
// case, not a failure. A non-nil error only occurs for the hard
// precondition of fewer than three distinct dose values among the
// paired exposures.
func AnalyzeDoseResponse(exposures []series.ExposureEvent, outcomes []series.OutcomeObservation,
	independentName, dependentName string, window series.TemporalWindow) (*DoseResponseFinding, error) {

	pairs := series.ExtractPairs(exposures, outcomes, window)
	if len(pairs) < MinPairCount {
		return nil, nil
	}

	doses := make([]float64, len(pairs))
	values := make([]float64, len(pairs))
	for i, p := range pairs {
		doses[i] = p.Dose
		values[i] = p.Outcome
	}

	thresholds, err := ComputeTertiles(doses)
	if err != nil {
		return nil, fmt.Errorf("segmenting %s doses: %w", independentName, err)
	}

	byTertile := map[Tertile][]series.Pair{}
	for _, p := range pairs {
		t := Classify(p.Dose, thresholds)
		byTertile[t] = append(byTertile[t], p)
	}

	rho, rhoOK := SpearmanRho(doses, values)

	var delta float64
	deltaOK := false
	if len(byTertile[TertileHigh]) > 0 && len(byTertile[TertileLow]) > 0 {
		delta, deltaOK = RankBiserial(outcomesOf(byTertile[TertileHigh]), outcomesOf(byTertile[TertileLow]))
	}

	doseDependent := rhoOK && math.Abs(rho) >= SignificanceThreshold
	threshold := deltaOK && math.Abs(delta) >= SignificanceThreshold

	// Monotonic relationships are more informative than step effects,
	// so dose_dependent wins when both pass.
	var effectType string
	var effectSize float64
	switch {
	case doseDependent:
		effectType, effectSize = EffectDoseDependent, rho
	case threshold:
		effectType, effectSize = EffectThreshold, delta
	default:
		return nil, nil
	}

	direction := DirectionPositive
	if effectSize < 0 {
		direction = DirectionNegative
	}

	summaries := map[Tertile]StratumSummary{
		TertileLow:    summarize(byTertile[TertileLow]),
		TertileMedium: summarize(byTertile[TertileMedium]),
		TertileHigh:   summarize(byTertile[TertileHigh]),
	}

	return &DoseResponseFinding{
		IndependentName: independentName,
		DependentName:   dependentName,
		Window:          window,
		EffectType:      effectType,
		EffectSize:      math.Abs(effectSize),
		Direction:       direction,
		Tertiles:        summaries,
		OptimalDose:     optimalTertile(summaries, direction),
		EvidenceTier:    EvidenceTier,
	}, nil
}

func outcomesOf(pairs []series.Pair) []float64 {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = p.Outcome
	}
	return out
}

func summarize(pairs []series.Pair) StratumSummary {
	if len(pairs) == 0 {
		return StratumSummary{}
	}
	var doseSum, outcomeSum float64
	for _, p := range pairs {
		doseSum += p.Dose
		outcomeSum += p.Outcome
	}
	n := float64(len(pairs))
	return StratumSummary{
		AvgDose:     doseSum / n,
		AvgOutcome:  outcomeSum / n,
		SampleCount: len(pairs),
	}
}

// optimalTertile picks the tertile whose average outcome is best in the
// direction of the effect. Positive direction prefers the highest
// average, breaking ties high, medium, low; negative prefers the
// lowest, breaking ties low, medium, high. Empty strata never win.
func optimalTertile(summaries map[Tertile]StratumSummary, direction string) Tertile {
	order := []Tertile{TertileHigh, TertileMedium, TertileLow}
	if direction == DirectionNegative {
		order = []Tertile{TertileLow, TertileMedium, TertileHigh}
	}

	var best Tertile
	haveBest := false
	for _, t := range order {
		s := summaries[t]
		if s.SampleCount == 0 {
			continue
		}
		if !haveBest {
			best, haveBest = t, true
			continue
		}
		if direction == DirectionNegative {
			if s.AvgOutcome < summaries[best].AvgOutcome {
				best = t
			}
		} else if s.AvgOutcome > summaries[best].AvgOutcome {
			best = t
		}
	}
	return best
}
