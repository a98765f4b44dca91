// internal/freshness/intervals.go
package freshness

// Interval is the expected refresh cadence of a signal. "Unspecified"
// is a normal state, not a lookup failure: many signals simply have no
// recommended recheck cadence, and callers branch on Known explicitly
// rather than treating a zero as "skip".
type Interval struct {
	Days  int
	Known bool
}

// KnownInterval builds a configured refresh interval.
func KnownInterval(days int) Interval { return Interval{Days: days, Known: true} }

// Unspecified is the interval of signals with no configured cadence.
var Unspecified = Interval{}

// expectedIntervals maps a signal type to how often it should be
// remeasured. Lab biomarkers follow standard panel cadences: quarterly
// for fast-moving markers, semiannual for slow ones.
var expectedIntervals = map[string]Interval{
	"fasting_glucose": KnownInterval(90),
	"hba1c":           KnownInterval(90),
	"hs_crp":          KnownInterval(90),
	"lipid_panel":     KnownInterval(90),
	"vitamin_d":       KnownInterval(180),
	"ferritin":        KnownInterval(180),
	"b12":             KnownInterval(180),
	"tsh":             KnownInterval(180),
	"testosterone":    KnownInterval(180),
	"magnesium_rbc":   KnownInterval(180),
	"omega3_index":    KnownInterval(180),
}

// ExpectedInterval looks up the refresh cadence for a signal type.
// Unknown signal types get Unspecified.
func ExpectedInterval(signalName string) Interval {
	if iv, ok := expectedIntervals[signalName]; ok {
		return iv
	}
	return Unspecified
}
