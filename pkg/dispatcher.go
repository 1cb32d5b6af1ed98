package sfvalid

import "fmt"

// NominalSyst labels the fill made with the bare event weight.
const NominalSyst = "nominal"

// SelectedEvents are the per-event objects of the events passing the mask,
// in mask order. Single-object roles hold nil where an event lacks the object.
type SelectedEvents struct {
	IsRealData bool
	Jets       [][]*Jet
	JetFlavors [][]int
	Objects    map[ObjectRole][]Object
	Flavors    map[ObjectRole][]int
	// Factor multiplies the weight of charge-weighted histograms. Nil means 1.
	Factor []float64
}

func (s *SelectedEvents) Len() int {
	return len(s.Jets)
}

// NewSelectedEvents restricts candidate objects to the passing events and
// derives the flavour label of every jet.
func NewSelectedEvents(mask SelectionMask, isRealData bool, jets [][]*Jet, objects map[ObjectRole][]Object, factor []float64) *SelectedEvents {
	idx := mask.Indices()
	sel := &SelectedEvents{
		IsRealData: isRealData,
		Jets:       make([][]*Jet, len(idx)),
		JetFlavors: make([][]int, len(idx)),
		Objects:    make(map[ObjectRole][]Object, len(objects)),
		Flavors:    make(map[ObjectRole][]int),
	}
	for k, i := range idx {
		sel.Jets[k] = jets[i]
		flavors := make([]int, len(jets[i]))
		for n, j := range jets[i] {
			flavors[n] = JetFlavor(j, isRealData)
		}
		sel.JetFlavors[k] = flavors
	}
	for role, objs := range objects {
		restricted := make([]Object, len(idx))
		for k, i := range idx {
			restricted[k] = objs[i]
		}
		sel.Objects[role] = restricted
		if role.IsJet() {
			flavors := make([]int, len(idx))
			for k, o := range restricted {
				j, _ := o.(*Jet)
				flavors[k] = JetFlavor(j, isRealData)
			}
			sel.Flavors[role] = flavors
		}
	}
	if factor != nil {
		sel.Factor = make([]float64, len(idx))
		for k, i := range idx {
			sel.Factor[k] = factor[i]
		}
	}
	return sel
}

// JetsOf returns the jets of a single-jet role.
func (s *SelectedEvents) JetsOf(role ObjectRole) []*Jet {
	objs := s.Objects[role]
	jets := make([]*Jet, len(objs))
	for i, o := range objs {
		jets[i], _ = o.(*Jet)
	}
	return jets
}

// HistogramDispatcher fills a resolved set of histogram definitions.
type HistogramDispatcher struct {
	defs  []*HistogramDefinition
	guard bool
}

// NewHistogramDispatcher builds a dispatcher. With guard set, a histogram of
// a jet that some selected event lacks is skipped for the whole batch;
// otherwise only the events lacking the jet are skipped.
func NewHistogramDispatcher(defs []*HistogramDefinition, guard bool) *HistogramDispatcher {
	return &HistogramDispatcher{defs: defs, guard: guard}
}

func (d *HistogramDispatcher) Definitions() []*HistogramDefinition {
	return d.defs
}

// NewOutput returns an empty output holding every defined histogram.
func (d *HistogramDispatcher) NewOutput() *Output {
	out := NewOutput()
	for _, def := range d.defs {
		out.Histograms[def.Name] = def.NewAccumulator()
	}
	return out
}

// Fill adds the selected events to the output histograms. weight holds the
// nominal weight of each selected event; sf is nil when no scale factors
// apply.
func (d *HistogramDispatcher) Fill(out *Output, sel *SelectedEvents, weight []float64, sf *ScaleFactors) error {
	if len(weight) != sel.Len() {
		return &ErrLengthMismatch{Name: "weight", Length: len(weight), Expected: sel.Len()}
	}
	for _, def := range d.defs {
		h, ok := out.Histograms[def.Name]
		if !ok {
			h = def.NewAccumulator()
			out.Histograms[def.Name] = h
		}
		if !sel.provides(def) {
			logger.Info(fmt.Sprintf("Skipping %s: objects not produced by the selection", def.Name), "dispatcher")
			continue
		}
		if d.guard && !hasJets(sel, def.MinJets()) {
			logger.Info(fmt.Sprintf("Skipping %s: not every selected event has %d jets", def.Name, def.MinJets()), "dispatcher")
			continue
		}
		d.fill(h, def, sel, eventWeights(def, sel, weight), sf)
	}
	return nil
}

func (s *SelectedEvents) provides(def *HistogramDefinition) bool {
	for _, role := range []ObjectRole{def.Object, def.Other, def.FlavorRole} {
		if role == RoleNone || role == RoleJets {
			continue
		}
		if len(s.Objects[role]) != s.Len() {
			return false
		}
	}
	return true
}

func hasJets(sel *SelectedEvents, n int) bool {
	for _, jets := range sel.Jets {
		if len(jets) < n {
			return false
		}
	}
	return true
}

func eventWeights(def *HistogramDefinition, sel *SelectedEvents, weight []float64) []float64 {
	if !def.ChargeWeighted || sel.Factor == nil {
		return weight
	}
	w := make([]float64, len(weight))
	for i := range weight {
		w[i] = weight[i] * sel.Factor[i]
	}
	return w
}

func flavorOf(def *HistogramDefinition, sel *SelectedEvents, i int) int {
	if !def.FlavorAxis {
		return NoFlavor
	}
	return sel.Flavors[def.FlavorRole][i]
}

func (d *HistogramDispatcher) fill(h *HistogramAccumulator, def *HistogramDefinition, sel *SelectedEvents, w []float64, sf *ScaleFactors) {
	switch def.Family {
	case FamilyJetCollection:
		for i, jets := range sel.Jets {
			for k, j := range jets {
				flavor := NoFlavor
				if def.FlavorAxis {
					flavor = sel.JetFlavors[i][k]
				}
				if x, ok := def.jetValue(j); ok {
					h.Fill(Category{Flavor: flavor, Syst: NominalSyst}, x, w[i])
				}
			}
		}

	case FamilyMultiplicity:
		for i, jets := range sel.Jets {
			h.Fill(Category{Flavor: NoFlavor, Syst: NominalSyst}, float64(len(jets)), w[i])
		}

	case FamilyObject:
		for i, o := range sel.Objects[def.Object] {
			if x, ok := def.value(o); ok {
				h.Fill(Category{Flavor: flavorOf(def, sel, i), Syst: NominalSyst}, x, w[i])
			}
		}

	case FamilyDeltaR:
		others := sel.Objects[def.Other]
		for i, o := range sel.Objects[def.Object] {
			if x, ok := DeltaR(o, others[i]); ok {
				h.Fill(Category{Flavor: flavorOf(def, sel, i), Syst: NominalSyst}, x, w[i])
			}
		}

	case FamilyPtRatio:
		others := sel.Objects[def.Other]
		for i, o := range sel.Objects[def.Object] {
			if isMissing(o) || isMissing(others[i]) {
				continue
			}
			den := others[i].P4().Pt()
			if den == 0 {
				continue
			}
			h.Fill(Category{Flavor: flavorOf(def, sel, i), Syst: NominalSyst}, o.P4().Pt()/den, w[i])
		}

	case FamilyDiscriminant:
		d.fillDiscriminant(h, def, sel, w, sf)
	}
}

// fillDiscriminant fills the nominal category with the event weight and, when
// scale factors were computed for this jet and family, one category per
// variation with the weight times the jet's scale factor.
func (d *HistogramDispatcher) fillDiscriminant(h *HistogramAccumulator, def *HistogramDefinition, sel *SelectedEvents, w []float64, sf *ScaleFactors) {
	var variations [numVariations][]float64
	withSF := false
	if def.Systematics && !sel.IsRealData {
		if object, ok := def.Object.SFObject(); ok && sf.Has(object, def.Discriminant.Family()) {
			for _, v := range Variations {
				variations[v], _ = sf.Get(object, def.Discriminant.Family(), v)
			}
			withSF = true
		}
	}

	for i, o := range sel.Objects[def.Object] {
		j, _ := o.(*Jet)
		if j == nil {
			continue
		}
		x := ClipDiscriminant(def.Discriminant.Value(j))
		flavor := flavorOf(def, sel, i)
		h.Fill(Category{Flavor: flavor, Syst: NominalSyst}, x, w[i])
		if !withSF {
			continue
		}
		for _, v := range Variations {
			if variations[v] == nil {
				continue
			}
			h.Fill(Category{Flavor: flavor, Syst: v.String()}, x, w[i]*variations[v][i])
		}
	}
}
