// internal/baseline/fallbacks.go
package baseline

// fallbacks are physiologically plausible defaults handed to callers
// while a user's own baseline is still accumulating samples.
var fallbacks = map[string]float64{
	"sleep_hours":     7.0,
	"deep_sleep_min":  90,
	"resting_hr":      60,
	"hrv_ms":          50,
	"fasting_glucose": 90,
	"steps":           8000,
	"active_kcal":     450,
	"mood":            5.0,
	"spo2_pct":        97,
	"respiratory_rpm": 15,
}

// FallbackValue returns the documented default for a metric. Metrics
// without a configured default report ok=false and zero; callers decide
// whether zero is acceptable for their use.
func FallbackValue(metricKey string) (value float64, ok bool) {
	v, ok := fallbacks[metricKey]
	return v, ok
}
