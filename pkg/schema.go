package sfvalid

import (
	"embed"
	"fmt"
	"os"

	"go-hep.org/x/hep/fmom"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/*.yaml
var builtinSchemas embed.FS

// QuantityFamily says how the continuous value of a histogram is derived.
type QuantityFamily int

const (
	FamilyJetCollection QuantityFamily = iota // one entry per selected jet
	FamilyObject                              // a field of one object per event
	FamilyDiscriminant                        // a tagging score with systematic variants
	FamilyDeltaR                              // angular distance between two objects
	FamilyPtRatio                             // pt of one object over another
	FamilyMultiplicity                        // number of selected jets
)

var familyNames = map[string]QuantityFamily{
	"jet_collection": FamilyJetCollection,
	"object":         FamilyObject,
	"discriminant":   FamilyDiscriminant,
	"delta_r":        FamilyDeltaR,
	"pt_ratio":       FamilyPtRatio,
	"multiplicity":   FamilyMultiplicity,
}

// ObjectRole names a per-event object produced by a channel selection.
type ObjectRole int

const (
	RoleNone ObjectRole = iota
	RoleJets
	RoleJet0
	RoleJet1
	RoleMuonJet
	RoleMuon
	RoleElectron
	RoleHardLepton
	RoleSoftMuon
	RoleMET
	RoleZ
	RoleW
)

var roleNames = map[string]ObjectRole{
	"":            RoleNone,
	"jets":        RoleJets,
	"jet0":        RoleJet0,
	"jet1":        RoleJet1,
	"mujet":       RoleMuonJet,
	"muon":        RoleMuon,
	"electron":    RoleElectron,
	"hard_lepton": RoleHardLepton,
	"soft_muon":   RoleSoftMuon,
	"met":         RoleMET,
	"z":           RoleZ,
	"w":           RoleW,
}

// IsJet reports whether the role is a single jet.
func (r ObjectRole) IsJet() bool {
	return r == RoleJet0 || r == RoleJet1 || r == RoleMuonJet
}

// MinJets is the jet multiplicity an event needs for the role to exist.
func (r ObjectRole) MinJets() int {
	switch r {
	case RoleJet0:
		return 1
	case RoleJet1:
		return 2
	default:
		return 0
	}
}

// SFObject maps a jet role to the scale factors computed for it.
func (r ObjectRole) SFObject() (SFObject, bool) {
	switch r {
	case RoleJet0:
		return SFLeading, true
	case RoleJet1:
		return SFSubleading, true
	case RoleMuonJet:
		return SFMuonJet, true
	default:
		return 0, false
	}
}

// HistogramSpec is one entry of a schema file.
type HistogramSpec struct {
	Name           string  `yaml:"name"`
	Label          string  `yaml:"label"`
	Family         string  `yaml:"family"`
	Object         string  `yaml:"object"`
	Other          string  `yaml:"other"`
	Field          string  `yaml:"field"`
	Bins           int     `yaml:"bins"`
	Min            float64 `yaml:"min"`
	Max            float64 `yaml:"max"`
	Flavor         bool    `yaml:"flavor"`
	Systematics    bool    `yaml:"systematics"`
	ChargeWeighted *bool   `yaml:"charge_weighted"`
}

type Schema struct {
	Channel        string          `yaml:"channel"`
	ChargeWeighted bool            `yaml:"charge_weighted"`
	Histograms     []HistogramSpec `yaml:"histograms"`
}

type fieldFunc func(o Object) (float64, bool)

// HistogramDefinition is a resolved histogram: every tag is fixed at setup
// and the fill path never looks at the name again.
type HistogramDefinition struct {
	Name           string
	Label          string
	Family         QuantityFamily
	Object         ObjectRole
	Other          ObjectRole
	Bins           int
	Min            float64
	Max            float64
	FlavorAxis     bool
	FlavorRole     ObjectRole
	Systematics    bool
	ChargeWeighted bool
	Discriminant   Discriminant
	value          fieldFunc
	jetValue       func(j *Jet) (float64, bool)
}

// MinJets is the jet multiplicity every event must reach for the
// histogram to be filled under the multiplicity guard.
func (d *HistogramDefinition) MinJets() int {
	return max(d.Object.MinJets(), d.Other.MinJets())
}

func (d *HistogramDefinition) NewAccumulator() *HistogramAccumulator {
	return NewHistogramAccumulator(d.Name, d.Label, d.Bins, d.Min, d.Max)
}

// BuiltinSchema returns the schema shipped for a channel.
func BuiltinSchema(channel string) (*Schema, error) {
	data, err := builtinSchemas.ReadFile("schemas/" + channel + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no built-in histogram schema for channel %q", channel)
	}
	return parseSchema(data, channel)
}

func LoadSchema(filename string) (*Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return parseSchema(data, filename)
}

func parseSchema(data []byte, source string) (*Schema, error) {
	schema := &Schema{}
	if err := yaml.Unmarshal(data, schema); err != nil {
		return nil, fmt.Errorf("error decoding histogram schema %s: %w", source, err)
	}
	return schema, nil
}

// Resolve validates the schema and builds the dispatch table.
func (s *Schema) Resolve() ([]*HistogramDefinition, error) {
	defs := make([]*HistogramDefinition, 0, len(s.Histograms))
	seen := make(map[string]bool, len(s.Histograms))
	for _, spec := range s.Histograms {
		if seen[spec.Name] {
			return nil, &ErrUnknownHistogram{Name: spec.Name, Reason: "defined twice"}
		}
		seen[spec.Name] = true
		def, err := s.resolve(spec)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *Schema) resolve(spec HistogramSpec) (*HistogramDefinition, error) {
	fail := func(format string, args ...any) error {
		return &ErrUnknownHistogram{Name: spec.Name, Reason: fmt.Sprintf(format, args...)}
	}

	family, ok := familyNames[spec.Family]
	if !ok {
		return nil, fail("unknown family %q", spec.Family)
	}
	object, ok := roleNames[spec.Object]
	if !ok {
		return nil, fail("unknown object %q", spec.Object)
	}
	other, ok := roleNames[spec.Other]
	if !ok {
		return nil, fail("unknown object %q", spec.Other)
	}
	if spec.Bins <= 0 || spec.Max <= spec.Min {
		return nil, fail("invalid binning (%d, %g, %g)", spec.Bins, spec.Min, spec.Max)
	}

	def := &HistogramDefinition{
		Name:           spec.Name,
		Label:          spec.Label,
		Family:         family,
		Object:         object,
		Other:          other,
		Bins:           spec.Bins,
		Min:            spec.Min,
		Max:            spec.Max,
		FlavorAxis:     spec.Flavor,
		Systematics:    spec.Systematics,
		ChargeWeighted: s.ChargeWeighted,
	}
	if spec.ChargeWeighted != nil {
		def.ChargeWeighted = *spec.ChargeWeighted
	}
	if def.Label == "" {
		def.Label = spec.Name
	}

	switch family {
	case FamilyJetCollection:
		if object != RoleJets {
			return nil, fail("jet_collection needs object jets")
		}
		getter, ok := jetFields[spec.Field]
		if !ok {
			return nil, fail("unknown jet field %q", spec.Field)
		}
		def.jetValue = func(j *Jet) (float64, bool) { return getter(j), true }
	case FamilyObject:
		if object == RoleNone || object == RoleJets {
			return nil, fail("object family needs a single object")
		}
		value, err := resolveField(spec.Field)
		if err != nil {
			return nil, fail("%v", err)
		}
		def.value = value
	case FamilyDiscriminant:
		if !object.IsJet() {
			return nil, fail("discriminant needs a single jet")
		}
		d, ok := ParseDiscriminant(spec.Field)
		if !ok {
			return nil, fail("unknown discriminant %q", spec.Field)
		}
		def.Discriminant = d
	case FamilyDeltaR, FamilyPtRatio:
		if object == RoleNone || object == RoleJets || other == RoleNone || other == RoleJets {
			return nil, fail("needs two single objects")
		}
	case FamilyMultiplicity:
		if object != RoleJets {
			return nil, fail("multiplicity needs object jets")
		}
		if def.FlavorAxis {
			return nil, fail("multiplicity has no flavour axis")
		}
	}

	if def.Systematics && family != FamilyDiscriminant {
		return nil, fail("systematics only apply to discriminants")
	}
	if def.FlavorAxis {
		switch {
		case object == RoleJets || object.IsJet():
			def.FlavorRole = object
		case other.IsJet():
			def.FlavorRole = other
		default:
			return nil, fail("flavour axis needs a jet")
		}
	}
	return def, nil
}

var kinematicFields = map[string]func(p *fmom.PtEtaPhiM) float64{
	"pt":   func(p *fmom.PtEtaPhiM) float64 { return p.Pt() },
	"eta":  func(p *fmom.PtEtaPhiM) float64 { return p.Eta() },
	"phi":  func(p *fmom.PtEtaPhiM) float64 { return p.Phi() },
	"mass": func(p *fmom.PtEtaPhiM) float64 { return p.M() },
}

var jetFields = map[string]func(j *Jet) float64{
	"pt":              func(j *Jet) float64 { return j.Pt },
	"eta":             func(j *Jet) float64 { return j.Eta },
	"phi":             func(j *Jet) float64 { return j.Phi },
	"mass":            func(j *Jet) float64 { return j.Mass },
	"hadronFlavour":   func(j *Jet) float64 { return float64(j.HadronFlavour) },
	"partonFlavour":   func(j *Jet) float64 { return float64(j.PartonFlavour) },
	"btagDeepB":       func(j *Jet) float64 { return j.BTagDeepB },
	"btagDeepC":       func(j *Jet) float64 { return j.BTagDeepC },
	"btagDeepCvL":     func(j *Jet) float64 { return j.BTagDeepCvL },
	"btagDeepCvB":     func(j *Jet) float64 { return j.BTagDeepCvB },
	"btagDeepFlavB":   func(j *Jet) float64 { return j.BTagDeepFlavB },
	"btagDeepFlavC":   func(j *Jet) float64 { return j.BTagDeepFlavC },
	"btagDeepFlavCvL": func(j *Jet) float64 { return j.BTagDeepFlavCvL },
	"btagDeepFlavCvB": func(j *Jet) float64 { return j.BTagDeepFlavCvB },
}

var muonFields = map[string]func(m *Muon) float64{
	"charge":         func(m *Muon) float64 { return float64(m.Charge) },
	"dxy":            func(m *Muon) float64 { return m.Dxy },
	"dz":             func(m *Muon) float64 { return m.Dz },
	"sip3d":          func(m *Muon) float64 { return m.Sip3d },
	"pfRelIso04_all": func(m *Muon) float64 { return m.PfRelIso04All },
}

var electronFields = map[string]func(e *Electron) float64{
	"charge":         func(e *Electron) float64 { return float64(e.Charge) },
	"deltaEtaSC":     func(e *Electron) float64 { return e.DeltaEtaSC },
	"dxy":            func(e *Electron) float64 { return e.Dxy },
	"dz":             func(e *Electron) float64 { return e.Dz },
	"ip3d":           func(e *Electron) float64 { return e.Ip3d },
	"pfRelIso03_all": func(e *Electron) float64 { return e.PfRelIso03All },
}

// resolveField returns the accessor of a named field. Kinematic fields work
// on every object, the others only on the object types that carry them.
func resolveField(field string) (fieldFunc, error) {
	if k, ok := kinematicFields[field]; ok {
		return func(o Object) (float64, bool) {
			if isMissing(o) {
				return 0, false
			}
			return k(o.P4()), true
		}, nil
	}
	jf, isJet := jetFields[field]
	mf, isMuon := muonFields[field]
	ef, isElectron := electronFields[field]
	if !isJet && !isMuon && !isElectron {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	return func(o Object) (float64, bool) {
		switch v := o.(type) {
		case *Jet:
			if isJet && v != nil {
				return jf(v), true
			}
		case *Muon:
			if isMuon && v != nil {
				return mf(v), true
			}
		case *Electron:
			if isElectron && v != nil {
				return ef(v), true
			}
		}
		return 0, false
	}, nil
}
