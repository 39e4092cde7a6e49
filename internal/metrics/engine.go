// Package metrics computes statistical aggregates over dataset snapshots.
// Every operation reads exactly one snapshot, mutates nothing, and is safe
// to run concurrently.
package metrics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
)

// meanZeroEpsilon guards the coefficient of variation: below this the mean
// is treated as zero and volatility is reported as undefined.
const meanZeroEpsilon = 1e-10

// Range is an optional inclusive date window. Zero bounds are open.
type Range struct {
	Start dataset.Date
	End   dataset.Date
}

// validate rejects windows whose start falls after their end. Equal bounds
// are a valid one-day window.
func (r Range) validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.Start.After(r.End) {
		return apperr.InvalidDateRange(r.Start.String(), r.End.String())
	}
	return nil
}

func (r Range) contains(d dataset.Date) bool {
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && d.After(r.End) {
		return false
	}
	return true
}

func (r Range) isOpen() bool { return r.Start.IsZero() && r.End.IsZero() }

func (r Range) startLabel() string {
	if r.Start.IsZero() {
		return "beginning"
	}
	return r.Start.String()
}

func (r Range) endLabel() string {
	if r.End.IsZero() {
		return "end"
	}
	return r.End.String()
}

// VendorMetrics is the computed aggregate for one vendor (or one grouping
// key in period aggregations, where Vendor carries the group value).
// Derived fields that can be undefined are pointers; nil means "no data",
// never a silently substituted number.
type VendorMetrics struct {
	Vendor      string         `json:"vendor"`
	Universes   []string       `json:"universes"`
	RecordCount int            `json:"record_count"`
	StartDate   dataset.Date   `json:"start_date"`
	EndDate     dataset.Date   `json:"end_date"`

	FeatureXMean float64 `json:"feature_x_mean"`
	FeatureXStd  float64 `json:"feature_x_std"`
	FeatureYMean float64 `json:"feature_y_mean"`
	FeatureYStd  float64 `json:"feature_y_std"`

	SignalStrengthMean float64 `json:"signal_strength_mean"`
	SignalStrengthStd  float64 `json:"signal_strength_std"`
	SignalStrengthMin  float64 `json:"signal_strength_min"`
	SignalStrengthMax  float64 `json:"signal_strength_max"`

	DrawdownCount int     `json:"drawdown_count"`
	DrawdownRate  float64 `json:"drawdown_rate"`

	FeatureXYCorrelation     float64  `json:"feature_xy_correlation"`
	SignalVolatility         *float64 `json:"signal_volatility"`
	AvgSignalDuringDrawdown  *float64 `json:"avg_signal_during_drawdown"`
	AvgSignalOutsideDrawdown *float64 `json:"avg_signal_outside_drawdown"`
}

// Engine computes metrics over the store's current snapshot.
type Engine struct {
	store *dataset.Store
}

// NewEngine creates a metrics engine reading from store.
func NewEngine(store *dataset.Store) *Engine {
	return &Engine{store: store}
}

// VendorMetrics computes the full aggregate for a single vendor, optionally
// restricted to an inclusive date window.
func (e *Engine) VendorMetrics(vendor string, r Range) (*VendorMetrics, error) {
	ds, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}

	rows, err := filterRows(ds, vendor, r)
	if err != nil {
		return nil, err
	}

	m := computeMetrics(vendor, rows)
	return &m, nil
}

// filterRows selects rows for a vendor (optional) and window. A named
// vendor with zero rows in the dataset is VENDOR_NOT_FOUND; a window that
// empties a non-empty selection is NO_DATA_IN_RANGE.
func filterRows(ds *dataset.Dataset, vendor string, r Range) ([]dataset.Observation, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	if vendor != "" && !ds.HasVendor(vendor) {
		return nil, apperr.VendorNotFound(vendor, ds.Vendors())
	}

	var rows []dataset.Observation
	for _, row := range ds.Rows() {
		if vendor != "" && row.Vendor != vendor {
			continue
		}
		if !r.contains(row.Date) {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperr.NoDataInRange(r.startLabel(), r.endLabel())
	}
	return rows, nil
}

// computeMetrics aggregates a non-empty row slice. label becomes the Vendor
// field (the vendor name, or the group key for period aggregations).
func computeMetrics(label string, rows []dataset.Observation) VendorMetrics {
	n := len(rows)

	featureX := make([]float64, n)
	featureY := make([]float64, n)
	signal := make([]float64, n)
	universeSet := make(map[string]struct{})

	m := VendorMetrics{
		Vendor:      label,
		RecordCount: n,
		StartDate:   rows[0].Date,
		EndDate:     rows[0].Date,
	}

	var during, outside []float64
	for i, row := range rows {
		featureX[i] = row.FeatureX
		featureY[i] = row.FeatureY
		signal[i] = row.SignalStrength
		universeSet[row.Universe] = struct{}{}

		if row.Date.Before(m.StartDate) {
			m.StartDate = row.Date
		}
		if row.Date.After(m.EndDate) {
			m.EndDate = row.Date
		}
		if row.DrawdownFlag {
			m.DrawdownCount++
			during = append(during, row.SignalStrength)
		} else {
			outside = append(outside, row.SignalStrength)
		}
	}

	m.Universes = make([]string, 0, len(universeSet))
	for u := range universeSet {
		m.Universes = append(m.Universes, u)
	}
	sort.Strings(m.Universes)

	m.FeatureXMean = round4(mean(featureX))
	m.FeatureXStd = round4(sampleStd(featureX))
	m.FeatureYMean = round4(mean(featureY))
	m.FeatureYStd = round4(sampleStd(featureY))

	signalMean := mean(signal)
	signalStd := sampleStd(signal)
	m.SignalStrengthMean = round4(signalMean)
	m.SignalStrengthStd = round4(signalStd)
	m.SignalStrengthMin = round4(minOf(signal))
	m.SignalStrengthMax = round4(maxOf(signal))

	m.DrawdownRate = round4(float64(m.DrawdownCount) / float64(n))
	m.FeatureXYCorrelation = round4(correlation(featureX, featureY))

	// Coefficient of variation, undefined when the mean is effectively zero.
	if math.Abs(signalMean) > meanZeroEpsilon {
		m.SignalVolatility = ptr(round4(signalStd / math.Abs(signalMean)))
	}

	if len(during) > 0 {
		m.AvgSignalDuringDrawdown = ptr(round4(mean(during)))
	}
	if len(outside) > 0 {
		m.AvgSignalOutsideDrawdown = ptr(round4(mean(outside)))
	}

	return m
}

// mean of a non-empty slice.
func mean(xs []float64) float64 {
	v, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return v
}

// sampleStd is the N-1 standard deviation; a single value has std 0 rather
// than undefined.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	v, err := stats.StandardDeviationSample(xs)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// correlation is Pearson's r with a zero-variance guard: if either series
// is constant (including a single row) the result is 0, not NaN. That
// substitution is policy so undefined values never reach API consumers.
func correlation(xs, ys []float64) float64 {
	if len(xs) < 2 || sampleStd(xs) == 0 || sampleStd(ys) == 0 {
		return 0
	}
	v, err := stats.Pearson(xs, ys)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func minOf(xs []float64) float64 {
	v, err := stats.Min(xs)
	if err != nil {
		return 0
	}
	return v
}

func maxOf(xs []float64) float64 {
	v, err := stats.Max(xs)
	if err != nil {
		return 0
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func ptr(v float64) *float64 { return &v }
