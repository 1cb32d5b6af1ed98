package sfvalid

import (
	"fmt"
	"sort"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/exp/maps"
)

// NoFlavor is the flavour key of histograms without a flavour axis.
const NoFlavor = -1

// Category is the position on the categorical axes of a histogram.
type Category struct {
	Flavor int
	Syst   string
}

// HistogramAccumulator is a histogram with one continuous axis and optional
// flavour and systematic axes. Every category owns an hbook.H1D which keeps
// the sum of weights and the sum of squared weights per bin.
type HistogramAccumulator struct {
	Name  string
	Label string
	Bins  int
	Min   float64
	Max   float64
	hists map[Category]*hbook.H1D
}

func NewHistogramAccumulator(name string, label string, bins int, min float64, max float64) *HistogramAccumulator {
	return &HistogramAccumulator{
		Name:  name,
		Label: label,
		Bins:  bins,
		Min:   min,
		Max:   max,
		hists: make(map[Category]*hbook.H1D),
	}
}

func (h *HistogramAccumulator) hist(cat Category) *hbook.H1D {
	hh, ok := h.hists[cat]
	if !ok {
		hh = hbook.NewH1D(h.Bins, h.Min, h.Max)
		h.hists[cat] = hh
	}
	return hh
}

func (h *HistogramAccumulator) Fill(cat Category, x float64, w float64) {
	h.hist(cat).Fill(x, w)
}

// Get returns the histogram of a category, or nil if it was never filled.
func (h *HistogramAccumulator) Get(cat Category) *hbook.H1D {
	return h.hists[cat]
}

// Categories returns the filled categories in a stable order.
func (h *HistogramAccumulator) Categories() []Category {
	cats := maps.Keys(h.hists)
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Flavor != cats[j].Flavor {
			return cats[i].Flavor < cats[j].Flavor
		}
		return cats[i].Syst < cats[j].Syst
	})
	return cats
}

// SumW is the total sum of weights over all categories, outflows included.
func (h *HistogramAccumulator) SumW() float64 {
	sum := 0.0
	for _, hh := range h.hists {
		sum += hh.SumW()
	}
	return sum
}

func (h *HistogramAccumulator) Entries() int64 {
	var n int64
	for _, hh := range h.hists {
		n += hh.Entries()
	}
	return n
}

// Merge adds other into h bin by bin. Both must share the same binning.
func (h *HistogramAccumulator) Merge(other *HistogramAccumulator) error {
	if other == nil {
		return nil
	}
	if h.Bins != other.Bins || h.Min != other.Min || h.Max != other.Max {
		return fmt.Errorf("cannot merge histogram %s: binning (%d, %g, %g) differs from (%d, %g, %g)",
			h.Name, h.Bins, h.Min, h.Max, other.Bins, other.Min, other.Max)
	}
	for cat, src := range other.hists {
		h.hists[cat] = hbook.AddH1D(h.hist(cat), src)
	}
	return nil
}

// Clone returns an empty accumulator with the same binning.
func (h *HistogramAccumulator) Clone() *HistogramAccumulator {
	return NewHistogramAccumulator(h.Name, h.Label, h.Bins, h.Min, h.Max)
}

// Output is the result of one dataset.
type Output struct {
	SumW       float64
	Histograms map[string]*HistogramAccumulator
}

func NewOutput() *Output {
	return &Output{Histograms: make(map[string]*HistogramAccumulator)}
}

func (o *Output) Merge(other *Output) error {
	o.SumW += other.SumW
	for name, src := range other.Histograms {
		dst, ok := o.Histograms[name]
		if !ok {
			dst = src.Clone()
			o.Histograms[name] = dst
		}
		if err := dst.Merge(src); err != nil {
			return err
		}
	}
	return nil
}

// HistogramNames returns the histogram names in sorted order.
func (o *Output) HistogramNames() []string {
	names := maps.Keys(o.Histograms)
	sort.Strings(names)
	return names
}

// Result maps a dataset name to its output.
type Result map[string]*Output

// Merge adds other into r. Merging is associative and commutative up to
// floating point rounding.
func (r Result) Merge(other Result) error {
	for dataset, src := range other {
		dst, ok := r[dataset]
		if !ok {
			dst = NewOutput()
			r[dataset] = dst
		}
		if err := dst.Merge(src); err != nil {
			return fmt.Errorf("error merging dataset %s: %w", dataset, err)
		}
	}
	return nil
}

func (r Result) Datasets() []string {
	names := maps.Keys(r)
	sort.Strings(names)
	return names
}
