// Package derive builds the best, worst and sleeping views from the full
// partner list when the upstream response does not carry them.
package derive

import (
	"cmp"
	"slices"

	"partner-dashboard/internal/models"
)

const (
	// DefaultTopN caps the best and worst views.
	DefaultTopN = 20
	// DefaultDormantDays is the inactivity threshold of the sleeping view.
	DefaultDormantDays = 90
)

// Options controls view derivation. Zero values select the defaults.
type Options struct {
	TopN        int
	DormantDays int
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.DormantDays <= 0 {
		o.DormantDays = DefaultDormantDays
	}
	return o
}

// Best returns up to n partners with the highest value score.
func Best(partners []models.Partner, n int) []models.Partner {
	return top(partners, n, func(p models.Partner) float64 { return p.ValueScore })
}

// Worst returns up to n partners with the highest waste score.
func Worst(partners []models.Partner, n int) []models.Partner {
	return top(partners, n, func(p models.Partner) float64 { return p.WasteScore })
}

// Sleeping returns every partner flagged dormant or idle for at least
// minDays, longest idle first.
func Sleeping(partners []models.Partner, minDays int) []models.Partner {
	out := make([]models.Partner, 0)
	for _, p := range partners {
		if p.Dormant || p.DaysSinceLastQuote >= minDays {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Partner) int {
		return cmp.Compare(b.DaysSinceLastQuote, a.DaysSinceLastQuote)
	})
	return rerank(out)
}

// IdleAtLeast narrows a sleeping view to partners idle for at least
// minDays. Dormant flags do not count here; the threshold is the point.
// Ranks are reassigned.
func IdleAtLeast(sleeping []models.Partner, minDays int) []models.Partner {
	out := make([]models.Partner, 0, len(sleeping))
	for _, p := range sleeping {
		if p.DaysSinceLastQuote >= minDays {
			out = append(out, p)
		}
	}
	return rerank(out)
}

// Complete fills the empty views of d from d.Partners. Views the upstream
// supplied are kept as they are. A dashboard without partners is returned
// unchanged.
func Complete(d models.Dashboard, opts Options) models.Dashboard {
	if len(d.Partners) == 0 {
		return d
	}
	opts = opts.withDefaults()
	if len(d.TopBest) == 0 {
		d.TopBest = Best(d.Partners, opts.TopN)
	}
	if len(d.TopWorst) == 0 {
		d.TopWorst = Worst(d.Partners, opts.TopN)
	}
	if len(d.Sleeping) == 0 {
		d.Sleeping = Sleeping(d.Partners, opts.DormantDays)
	}
	return d
}

func top(partners []models.Partner, n int, score func(models.Partner) float64) []models.Partner {
	out := slices.Clone(partners)
	if out == nil {
		out = []models.Partner{}
	}
	slices.SortStableFunc(out, func(a, b models.Partner) int {
		return cmp.Compare(score(b), score(a))
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return rerank(out)
}

func rerank(ps []models.Partner) []models.Partner {
	for i := range ps {
		ps[i].Rank = i + 1
	}
	return ps
}
