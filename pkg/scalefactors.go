package sfvalid

// SFObject designates the jet a set of scale factors belongs to.
type SFObject int

const (
	SFLeading SFObject = iota
	SFSubleading
	SFMuonJet
	numSFObjects
)

func (o SFObject) String() string {
	switch o {
	case SFLeading:
		return "leading"
	case SFSubleading:
		return "subleading"
	case SFMuonJet:
		return "softmuon-associated"
	default:
		return "unknown"
	}
}

// Family is a scale-factor table family.
type Family int

const (
	DeepCSVB Family = iota
	DeepCSVC
	DeepJetB
	DeepJetC
	numFamilies
)

func (f Family) String() string {
	switch f {
	case DeepCSVB:
		return TableDeepCSVB
	case DeepCSVC:
		return TableDeepCSVC
	case DeepJetB:
		return TableDeepJetB
	case DeepJetC:
		return TableDeepJetC
	default:
		return "unknown"
	}
}

// Variation of a scale factor. The names are the systematic labels of the
// histograms.
type Variation int

const (
	VariationCentral Variation = iota
	VariationUp
	VariationDown
	numVariations
)

var Variations = []Variation{VariationCentral, VariationUp, VariationDown}

func (v Variation) String() string {
	switch v {
	case VariationCentral:
		return "SF"
	case VariationUp:
		return "SFup"
	case VariationDown:
		return "SFdn"
	default:
		return "unknown"
	}
}

// Table tags for each variation. b-tag tables vary the jet energy scale,
// c-tag tables carry the total uncertainty.
var bTagTags = [numVariations]string{"central", "up_jes", "down_jes"}
var cTagTags = [numVariations]string{"central", "TotalUncUp", "TotalUncDown"}

// Discriminant is a jet tagging score that can be histogrammed.
type Discriminant int

const (
	BTagDeepB Discriminant = iota
	BTagDeepC
	BTagDeepCvL
	BTagDeepCvB
	BTagDeepFlavB
	BTagDeepFlavC
	BTagDeepFlavCvL
	BTagDeepFlavCvB
)

var discriminantNames = map[string]Discriminant{
	"btagDeepB":       BTagDeepB,
	"btagDeepC":       BTagDeepC,
	"btagDeepCvL":     BTagDeepCvL,
	"btagDeepCvB":     BTagDeepCvB,
	"btagDeepFlavB":   BTagDeepFlavB,
	"btagDeepFlavC":   BTagDeepFlavC,
	"btagDeepFlavCvL": BTagDeepFlavCvL,
	"btagDeepFlavCvB": BTagDeepFlavCvB,
}

func ParseDiscriminant(name string) (Discriminant, bool) {
	d, ok := discriminantNames[name]
	return d, ok
}

// Family returns the scale-factor family calibrating the discriminant.
func (d Discriminant) Family() Family {
	switch d {
	case BTagDeepB, BTagDeepC:
		return DeepCSVB
	case BTagDeepCvL, BTagDeepCvB:
		return DeepCSVC
	case BTagDeepFlavB, BTagDeepFlavC:
		return DeepJetB
	default:
		return DeepJetC
	}
}

func (d Discriminant) Value(j *Jet) float64 {
	switch d {
	case BTagDeepB:
		return j.BTagDeepB
	case BTagDeepC:
		return j.BTagDeepC
	case BTagDeepCvL:
		return j.BTagDeepCvL
	case BTagDeepCvB:
		return j.BTagDeepCvB
	case BTagDeepFlavB:
		return j.BTagDeepFlavB
	case BTagDeepFlavC:
		return j.BTagDeepFlavC
	case BTagDeepFlavCvL:
		return j.BTagDeepFlavCvL
	default:
		return j.BTagDeepFlavCvB
	}
}

const ClippedDiscriminant = -0.2

// ClipDiscriminant maps untagged sentinel values (< 0) to a fixed underflow
// value so they land in a visible bin.
func ClipDiscriminant(v float64) float64 {
	if v < 0 {
		return ClippedDiscriminant
	}
	return v
}

// ScaleFactors holds per-event weights for {object, family, variation}.
// Unset entries mean no scale factor was computed for that combination.
type ScaleFactors struct {
	weights [numSFObjects][numFamilies][numVariations][]float64
}

func (s *ScaleFactors) Get(o SFObject, f Family, v Variation) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	w := s.weights[o][f][v]
	return w, w != nil
}

// Has reports whether any scale factor was computed for the object and family.
func (s *ScaleFactors) Has(o SFObject, f Family) bool {
	if s == nil {
		return false
	}
	for _, w := range s.weights[o][f] {
		if w != nil {
			return true
		}
	}
	return false
}

// ScaleFactorResolver evaluates the b- and c-tag tables for designated jets.
type ScaleFactorResolver struct {
	calib *Calibrations
}

func NewScaleFactorResolver(calib *Calibrations) *ScaleFactorResolver {
	return &ScaleFactorResolver{calib: calib}
}

// Resolve computes every family and variation for one jet per event. Events
// without that jet get 1.0. The raw discriminants are used, negative
// sentinels included; clipping only applies to histogram inputs.
func (r *ScaleFactorResolver) Resolve(sf *ScaleFactors, object SFObject, jets []*Jet) {
	for f := Family(0); f < numFamilies; f++ {
		for _, v := range Variations {
			w := make([]float64, len(jets))
			for i, j := range jets {
				if j == nil {
					w[i] = 1
					continue
				}
				w[i] = r.evaluate(f, v, j)
			}
			sf.weights[object][f][v] = w
		}
	}
}

func (r *ScaleFactorResolver) evaluate(f Family, v Variation, j *Jet) float64 {
	absEta := absf(j.Eta)
	switch f {
	case DeepCSVB:
		return r.calib.DeepCSVB.Evaluate(bTagTags[v], j.HadronFlavour, absEta, j.Pt, j.BTagDeepB)
	case DeepJetB:
		return r.calib.DeepJetB.Evaluate(bTagTags[v], j.HadronFlavour, absEta, j.Pt, j.BTagDeepFlavB)
	case DeepCSVC:
		return r.calib.DeepCSVC.EvaluateShape(j.HadronFlavour, j.BTagDeepCvL, j.BTagDeepCvB, cTagTags[v])
	default:
		return r.calib.DeepJetC.EvaluateShape(j.HadronFlavour, j.BTagDeepFlavCvL, j.BTagDeepFlavCvB, cTagTags[v])
	}
}
