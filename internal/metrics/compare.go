package metrics

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/signalworks/vendormetrics/internal/apperr"
)

// compareConcurrency bounds parallel per-vendor aggregation.
const compareConcurrency = 4

// Comparison holds per-vendor metrics plus deterministic rankings. Both
// rankings are permutations of the same vendor set.
type Comparison struct {
	Vendors []VendorMetrics `json:"vendors"`

	// RankingByAvgSignal orders vendors by descending average signal
	// strength; RankingByStability by ascending volatility (lower
	// volatility ranks first, undefined volatility last). Ties break by
	// vendor name ascending.
	RankingByAvgSignal []string `json:"ranking_by_avg_signal"`
	RankingByStability []string `json:"ranking_by_stability"`

	BestAvgSignal      string `json:"best_avg_signal"`
	LowestDrawdownRate string `json:"lowest_drawdown_rate"`
	MostStable         string `json:"most_stable"`
}

// Compare computes metrics for the given vendors (all distinct vendors when
// the list is empty) and ranks them. Per-vendor aggregation runs in a
// bounded errgroup; results are ordered by vendor name so repeated calls on
// an unmodified dataset are byte-identical.
func (e *Engine) Compare(ctx context.Context, vendors []string) (*Comparison, error) {
	ds, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}

	if len(vendors) == 0 {
		vendors = ds.Vendors()
	} else {
		vendors = dedupeSorted(vendors)
	}
	if len(vendors) == 0 {
		return nil, apperr.NoDataInRange("beginning", "end")
	}

	results := make([]VendorMetrics, len(vendors))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i, vendor := range vendors {
		i, vendor := i, vendor
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := filterRows(ds, vendor, Range{})
			if err != nil {
				return err
			}
			results[i] = computeMetrics(vendor, rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := &Comparison{
		Vendors:            results,
		RankingByAvgSignal: rankBySignal(results),
		RankingByStability: rankByStability(results),
	}
	cmp.BestAvgSignal = cmp.RankingByAvgSignal[0]
	cmp.MostStable = cmp.RankingByStability[0]
	cmp.LowestDrawdownRate = lowestDrawdownRate(results)
	return cmp, nil
}

// dedupeSorted returns the distinct vendor names in ascending order.
func dedupeSorted(vendors []string) []string {
	seen := make(map[string]struct{}, len(vendors))
	out := make([]string, 0, len(vendors))
	for _, v := range vendors {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func rankBySignal(results []VendorMetrics) []string {
	ranked := make([]VendorMetrics, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SignalStrengthMean != ranked[j].SignalStrengthMean {
			return ranked[i].SignalStrengthMean > ranked[j].SignalStrengthMean
		}
		return ranked[i].Vendor < ranked[j].Vendor
	})
	return vendorNames(ranked)
}

func rankByStability(results []VendorMetrics) []string {
	ranked := make([]VendorMetrics, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := ranked[i].SignalVolatility, ranked[j].SignalVolatility
		switch {
		case vi == nil && vj == nil:
			return ranked[i].Vendor < ranked[j].Vendor
		case vi == nil:
			return false
		case vj == nil:
			return true
		case *vi != *vj:
			return *vi < *vj
		}
		return ranked[i].Vendor < ranked[j].Vendor
	})
	return vendorNames(ranked)
}

func lowestDrawdownRate(results []VendorMetrics) string {
	best := results[0]
	for _, m := range results[1:] {
		if m.DrawdownRate < best.DrawdownRate ||
			(m.DrawdownRate == best.DrawdownRate && m.Vendor < best.Vendor) {
			best = m
		}
	}
	return best.Vendor
}

func vendorNames(ms []VendorMetrics) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Vendor
	}
	return out
}
