package sfvalid

import (
	"math"

	"go-hep.org/x/hep/fmom"
)

type Electron struct {
	Pt            float64 `json:"pt"`
	Eta           float64 `json:"eta"`
	Phi           float64 `json:"phi"`
	Mass          float64 `json:"mass"`
	Charge        int     `json:"charge"`
	DeltaEtaSC    float64 `json:"deltaEtaSC"`
	Dxy           float64 `json:"dxy"`
	Dz            float64 `json:"dz"`
	Ip3d          float64 `json:"ip3d"`
	PfRelIso03All float64 `json:"pfRelIso03_all"`
	CutBased      int     `json:"cutBased"`
	MvaIsoWP80    bool    `json:"mvaFall17V2Iso_WP80"`
}

type Muon struct {
	Pt            float64 `json:"pt"`
	Eta           float64 `json:"eta"`
	Phi           float64 `json:"phi"`
	Mass          float64 `json:"mass"`
	Charge        int     `json:"charge"`
	Dxy           float64 `json:"dxy"`
	Dz            float64 `json:"dz"`
	Sip3d         float64 `json:"sip3d"`
	PfRelIso04All float64 `json:"pfRelIso04_all"`
	TightID       bool    `json:"tightId"`
	JetIdx        int     `json:"jetIdx"`
}

type Jet struct {
	Pt              float64 `json:"pt"`
	Eta             float64 `json:"eta"`
	Phi             float64 `json:"phi"`
	Mass            float64 `json:"mass"`
	JetID           int     `json:"jetId"`
	PuID            int     `json:"puId"`
	HadronFlavour   int     `json:"hadronFlavour"`
	PartonFlavour   int     `json:"partonFlavour"`
	MuonIdx1        int     `json:"muonIdx1"`
	MuonIdx2        int     `json:"muonIdx2"`
	BTagDeepB       float64 `json:"btagDeepB"`
	BTagDeepC       float64 `json:"btagDeepC"`
	BTagDeepCvL     float64 `json:"btagDeepCvL"`
	BTagDeepCvB     float64 `json:"btagDeepCvB"`
	BTagDeepFlavB   float64 `json:"btagDeepFlavB"`
	BTagDeepFlavC   float64 `json:"btagDeepFlavC"`
	BTagDeepFlavCvL float64 `json:"btagDeepFlavCvL"`
	BTagDeepFlavCvB float64 `json:"btagDeepFlavCvB"`
}

type MissingEnergy struct {
	Pt  float64 `json:"pt"`
	Phi float64 `json:"phi"`
}

type Event struct {
	Run             uint32          `json:"run"`
	LuminosityBlock uint32          `json:"luminosityBlock"`
	GenWeight       float64         `json:"genWeight"`
	NPU             float64         `json:"nPU"`
	HLT             map[string]bool `json:"HLT"`
	Electrons       []Electron      `json:"Electron"`
	Muons           []Muon          `json:"Muon"`
	Jets            []Jet           `json:"Jet"`
	MET             MissingEnergy   `json:"MET"`
}

// EventBatch is one chunk of events. TriggerPaths lists the HLT branches
// present in the batch schema, independently of their per-event values.
type EventBatch struct {
	Dataset      string   `json:"dataset"`
	IsRealData   bool     `json:"is_real_data"`
	TriggerPaths []string `json:"trigger_paths"`
	Events       []Event  `json:"events"`
}

func (b *EventBatch) Len() int {
	return len(b.Events)
}

func (b *EventBatch) HasTrigger(path string) bool {
	for _, p := range b.TriggerPaths {
		if p == path {
			return true
		}
	}
	return false
}

// Object is anything with a four-momentum that can feed a histogram.
type Object interface {
	P4() *fmom.PtEtaPhiM
}

func (e *Electron) P4() *fmom.PtEtaPhiM {
	p := fmom.NewPtEtaPhiM(e.Pt, e.Eta, e.Phi, e.Mass)
	return &p
}

func (m *Muon) P4() *fmom.PtEtaPhiM {
	p := fmom.NewPtEtaPhiM(m.Pt, m.Eta, m.Phi, m.Mass)
	return &p
}

func (j *Jet) P4() *fmom.PtEtaPhiM {
	p := fmom.NewPtEtaPhiM(j.Pt, j.Eta, j.Phi, j.Mass)
	return &p
}

// MET is treated as a massless vector in the transverse plane.
func (m *MissingEnergy) P4() *fmom.PtEtaPhiM {
	p := fmom.NewPtEtaPhiM(m.Pt, 0, m.Phi, 0)
	return &p
}

// Candidate is a composite object built from the sum of two others.
type Candidate struct {
	p4 fmom.PtEtaPhiM
}

func (c *Candidate) P4() *fmom.PtEtaPhiM {
	p := c.p4
	return &p
}

// Combine returns the sum of two objects, or nil if either is missing.
func Combine(a, b Object) Object {
	if isMissing(a) || isMissing(b) {
		return nil
	}
	sum := fmom.Add(a.P4(), b.P4())
	return &Candidate{p4: fmom.NewPtEtaPhiM(sum.Pt(), sum.Eta(), sum.Phi(), sum.M())}
}

// DeltaR is the angular distance between two objects. Missing objects give
// ok == false.
func DeltaR(a, b Object) (float64, bool) {
	if isMissing(a) || isMissing(b) {
		return 0, false
	}
	return fmom.DeltaR(a.P4(), b.P4()), true
}

func isMissing(o Object) bool {
	if o == nil {
		return true
	}
	switch v := o.(type) {
	case *Electron:
		return v == nil
	case *Muon:
		return v == nil
	case *Jet:
		return v == nil
	case *MissingEnergy:
		return v == nil
	case *Candidate:
		return v == nil
	}
	return false
}

// Flavor labels used on the categorical histogram axis.
const (
	FlavorLight     = 0
	FlavorUndefined = 1
	FlavorCharm     = 4
	FlavorBottom    = 5
)

// JetFlavor derives the histogram flavour label of a jet. Jets with neither
// hadron nor parton flavour are labelled undefined. Real data is always light.
func JetFlavor(j *Jet, isRealData bool) int {
	if isRealData || j == nil {
		return FlavorLight
	}
	if j.HadronFlavour == 0 && j.PartonFlavour == 0 {
		return FlavorUndefined
	}
	return j.HadronFlavour
}

func absf(x float64) float64 {
	return math.Abs(x)
}
