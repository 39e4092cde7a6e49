package metrics

import (
	"sort"

	"github.com/signalworks/vendormetrics/internal/apperr"
	"github.com/signalworks/vendormetrics/internal/dataset"
)

// Grouping keys accepted by PeriodMetrics.
const (
	GroupByVendor   = "vendor"
	GroupByUniverse = "universe"
)

// PeriodMetrics aggregates a date window across vendors, with a per-group
// breakdown for each distinct value of the grouping key.
type PeriodMetrics struct {
	StartDate dataset.Date `json:"start_date"`
	EndDate   dataset.Date `json:"end_date"`
	GroupBy   string       `json:"group_by"`

	RecordCount         int     `json:"record_count"`
	VendorCount         int     `json:"vendor_count"`
	AvgSignalStrength   float64 `json:"avg_signal_strength"`
	SignalStrengthStd   float64 `json:"signal_strength_std"`
	TotalDrawdownEvents int     `json:"total_drawdown_events"`

	// Groups holds one VendorMetrics per distinct grouping value, sorted by
	// key; the Vendor field carries the group value.
	Groups []VendorMetrics `json:"groups"`
}

// PeriodMetrics computes per-group aggregates restricted to the window.
// groupBy is "vendor" (default when empty) or "universe".
func (e *Engine) PeriodMetrics(r Range, groupBy string) (*PeriodMetrics, error) {
	if groupBy == "" {
		groupBy = GroupByVendor
	}
	if groupBy != GroupByVendor && groupBy != GroupByUniverse {
		return nil, apperr.Validation("unknown grouping key",
			"group_by must be \"vendor\" or \"universe\", got \""+groupBy+"\"")
	}

	ds, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}

	rows, err := filterRows(ds, "", r)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]dataset.Observation)
	vendorSet := make(map[string]struct{})
	signal := make([]float64, len(rows))
	pm := &PeriodMetrics{
		GroupBy:     groupBy,
		RecordCount: len(rows),
		StartDate:   rows[0].Date,
		EndDate:     rows[0].Date,
	}

	for i, row := range rows {
		key := row.Vendor
		if groupBy == GroupByUniverse {
			key = row.Universe
		}
		groups[key] = append(groups[key], row)
		vendorSet[row.Vendor] = struct{}{}
		signal[i] = row.SignalStrength

		if row.Date.Before(pm.StartDate) {
			pm.StartDate = row.Date
		}
		if row.Date.After(pm.EndDate) {
			pm.EndDate = row.Date
		}
		if row.DrawdownFlag {
			pm.TotalDrawdownEvents++
		}
	}

	pm.VendorCount = len(vendorSet)
	pm.AvgSignalStrength = round4(mean(signal))
	pm.SignalStrengthStd = round4(sampleStd(signal))

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pm.Groups = make([]VendorMetrics, 0, len(keys))
	for _, k := range keys {
		pm.Groups = append(pm.Groups, computeMetrics(k, groups[k]))
	}

	return pm, nil
}
