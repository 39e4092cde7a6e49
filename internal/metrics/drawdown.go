package metrics

import (
	"sort"

	"github.com/signalworks/vendormetrics/internal/dataset"
)

// VendorDrawdown is the drawdown breakdown for one vendor. A vendor with
// zero flagged rows reports rate 0 with nil averages, not an error.
type VendorDrawdown struct {
	Vendor        string  `json:"vendor"`
	RecordCount   int     `json:"record_count"`
	DrawdownCount int     `json:"drawdown_count"`
	DrawdownRate  float64 `json:"drawdown_rate"`

	AvgSignalDuringDrawdown  *float64 `json:"avg_signal_during_drawdown"`
	AvgSignalOutsideDrawdown *float64 `json:"avg_signal_outside_drawdown"`

	// SignalDelta is avg-during minus avg-outside, nil when either side has
	// no rows.
	SignalDelta *float64 `json:"signal_delta"`
}

// DrawdownReport is the structured drawdown analysis for one vendor or the
// whole dataset.
type DrawdownReport struct {
	TotalDrawdownEvents     int              `json:"total_drawdown_events"`
	VendorsAffected         []string         `json:"vendors_affected"`
	AvgSignalDuringDrawdown *float64         `json:"avg_signal_during_drawdown"`
	DrawdownDates           []dataset.Date   `json:"drawdown_dates"`
	Vendors                 []VendorDrawdown `json:"vendors"`
}

// DrawdownAnalysis reports drawdown behavior per vendor, for one vendor
// (when named) or all vendors, optionally restricted to a window.
func (e *Engine) DrawdownAnalysis(vendor string, r Range) (*DrawdownReport, error) {
	ds, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}

	rows, err := filterRows(ds, vendor, r)
	if err != nil {
		return nil, err
	}

	report := &DrawdownReport{
		VendorsAffected: []string{},
		DrawdownDates:   []dataset.Date{},
	}

	byVendor := make(map[string][]dataset.Observation)
	affected := make(map[string]struct{})
	var during []float64
	for _, row := range rows {
		byVendor[row.Vendor] = append(byVendor[row.Vendor], row)
		if row.DrawdownFlag {
			report.TotalDrawdownEvents++
			report.DrawdownDates = append(report.DrawdownDates, row.Date)
			affected[row.Vendor] = struct{}{}
			during = append(during, row.SignalStrength)
		}
	}

	for v := range affected {
		report.VendorsAffected = append(report.VendorsAffected, v)
	}
	sort.Strings(report.VendorsAffected)
	sort.Slice(report.DrawdownDates, func(i, j int) bool {
		return report.DrawdownDates[i].Before(report.DrawdownDates[j])
	})

	if len(during) > 0 {
		report.AvgSignalDuringDrawdown = ptr(round4(mean(during)))
	}

	vendors := make([]string, 0, len(byVendor))
	for v := range byVendor {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	report.Vendors = make([]VendorDrawdown, 0, len(vendors))
	for _, v := range vendors {
		report.Vendors = append(report.Vendors, vendorDrawdown(v, byVendor[v]))
	}

	return report, nil
}

func vendorDrawdown(vendor string, rows []dataset.Observation) VendorDrawdown {
	vd := VendorDrawdown{
		Vendor:      vendor,
		RecordCount: len(rows),
	}

	var during, outside []float64
	for _, row := range rows {
		if row.DrawdownFlag {
			during = append(during, row.SignalStrength)
		} else {
			outside = append(outside, row.SignalStrength)
		}
	}

	vd.DrawdownCount = len(during)
	vd.DrawdownRate = round4(float64(len(during)) / float64(len(rows)))

	if len(during) > 0 {
		vd.AvgSignalDuringDrawdown = ptr(round4(mean(during)))
	}
	if len(outside) > 0 {
		vd.AvgSignalOutsideDrawdown = ptr(round4(mean(outside)))
	}
	if vd.AvgSignalDuringDrawdown != nil && vd.AvgSignalOutsideDrawdown != nil {
		vd.SignalDelta = ptr(round4(*vd.AvgSignalDuringDrawdown - *vd.AvgSignalOutsideDrawdown))
	}

	return vd
}
