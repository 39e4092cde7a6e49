// Package dataset loads vendor observation tables and serves immutable
// snapshots to the rest of the system.
package dataset

import (
	"sort"
)

// Observation is one row of the vendor performance table.
type Observation struct {
	Vendor         string  `json:"vendor"`
	Date           Date    `json:"date"`
	Universe       string  `json:"universe"`
	FeatureX       float64 `json:"feature_x"`
	FeatureY       float64 `json:"feature_y"`
	SignalStrength float64 `json:"signal_strength"`
	DrawdownFlag   bool    `json:"drawdown_flag"`
}

// Dataset is an immutable, ordered collection of observations plus derived
// metadata. Build one with newDataset; never mutate rows after that.
// Duplicate (vendor, date) pairs are tolerated and both included.
type Dataset struct {
	rows      []Observation
	vendors   []string
	universes []string
	minDate   Date
	maxDate   Date
}

// Info is the metadata summary of a dataset.
type Info struct {
	Vendors      []string `json:"vendors"`
	Universes    []string `json:"universes"`
	StartDate    Date     `json:"start_date"`
	EndDate      Date     `json:"end_date"`
	TotalRecords int      `json:"total_records"`
}

// newDataset sorts rows by vendor then date and derives metadata.
func newDataset(rows []Observation) *Dataset {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Vendor != rows[j].Vendor {
			return rows[i].Vendor < rows[j].Vendor
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	vendorSet := make(map[string]struct{})
	universeSet := make(map[string]struct{})
	ds := &Dataset{rows: rows}
	for i, row := range rows {
		vendorSet[row.Vendor] = struct{}{}
		universeSet[row.Universe] = struct{}{}
		if i == 0 || row.Date.Before(ds.minDate) {
			ds.minDate = row.Date
		}
		if i == 0 || row.Date.After(ds.maxDate) {
			ds.maxDate = row.Date
		}
	}

	ds.vendors = sortedKeys(vendorSet)
	ds.universes = sortedKeys(universeSet)
	return ds
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Rows returns the ordered observations. Callers must not mutate the slice.
func (d *Dataset) Rows() []Observation { return d.rows }

// Vendors returns the distinct vendor names, sorted ascending.
func (d *Dataset) Vendors() []string { return d.vendors }

// Universes returns the distinct universe names, sorted ascending.
func (d *Dataset) Universes() []string { return d.universes }

// DateRange returns the earliest and latest observation dates.
func (d *Dataset) DateRange() (Date, Date) { return d.minDate, d.maxDate }

// Len returns the total row count.
func (d *Dataset) Len() int { return len(d.rows) }

// Info summarizes the dataset metadata.
func (d *Dataset) Info() Info {
	return Info{
		Vendors:      d.vendors,
		Universes:    d.universes,
		StartDate:    d.minDate,
		EndDate:      d.maxDate,
		TotalRecords: len(d.rows),
	}
}

// HasVendor reports whether the vendor appears in the dataset. Matching is
// exact and case-sensitive.
func (d *Dataset) HasVendor(vendor string) bool {
	i := sort.SearchStrings(d.vendors, vendor)
	return i < len(d.vendors) && d.vendors[i] == vendor
}
