package sfvalid

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// LeptonTable selects the identification table of a lepton weight.
type LeptonTable int

const (
	ElectronIDTable LeptonTable = iota
	MuonIDTable
)

// LeptonWeight is an identification scale factor applied to selected events.
type LeptonWeight struct {
	Name    string
	Table   LeptonTable
	Leptons []Object
}

// Candidates is what a channel selection produces for a full batch: the
// requirements to combine and the per-event objects to histogram.
type Candidates struct {
	Requirements  []Requirement
	Jets          [][]*Jet
	Objects       map[ObjectRole][]Object
	Factor        []float64
	LeptonWeights []LeptonWeight
	// ScaleFactorJets lists the jet roles scale factors are computed for.
	ScaleFactorJets map[SFObject]ObjectRole
}

// Channel is one signal-region definition.
type Channel interface {
	Name() string
	Triggers() []string
	Select(batch *EventBatch) (*Candidates, error)
}

// NewChannel returns the channel registered under name.
func NewChannel(name string, campaign string) (Channel, error) {
	switch name {
	case ChannelTTDilep:
		return NewTTDilepChannel(campaign), nil
	case ChannelCTagWc:
		return NewCTagWcChannel(campaign), nil
	default:
		return nil, fmt.Errorf("unknown channel %q", name)
	}
}

// Processor turns one event batch into histograms.
type Processor struct {
	config     Configuration
	channel    Channel
	calib      *Calibrations
	lumiMask   LumiMask
	resolver   *ScaleFactorResolver
	dispatcher *HistogramDispatcher
	cuts       *ExtraCuts
}

func NewProcessor(config Configuration, channel Channel, defs []*HistogramDefinition, calib *Calibrations, lumiMask LumiMask) (*Processor, error) {
	if config.IsCorr && calib == nil {
		return nil, fmt.Errorf("corrections enabled but no calibrations loaded")
	}
	cuts, err := CompileExtraCuts(config.ExtraCuts)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		config:     config,
		channel:    channel,
		calib:      calib,
		lumiMask:   lumiMask,
		dispatcher: NewHistogramDispatcher(defs, config.JetMultiplicityGuard),
		cuts:       cuts,
	}
	if calib != nil {
		p.resolver = NewScaleFactorResolver(calib)
	}
	return p, nil
}

// SumW is the normalisation of a batch: its size for real data and the sum
// of generator weights for simulation, before any selection.
func SumW(batch *EventBatch) float64 {
	if batch.IsRealData {
		return float64(batch.Len())
	}
	return floats.Sum(generatorWeights(batch))
}

func generatorWeights(batch *EventBatch) []float64 {
	w := make([]float64, batch.Len())
	for i := range batch.Events {
		w[i] = batch.Events[i].GenWeight
	}
	return w
}

func (p *Processor) corrections(batch *EventBatch) bool {
	return p.config.IsCorr && !batch.IsRealData
}

// Process runs selection, weighting and histogram filling on one batch.
func (p *Processor) Process(batch *EventBatch) (Result, error) {
	out := p.dispatcher.NewOutput()
	out.SumW = SumW(batch)
	trigger, err := TriggerRequirement(batch, p.channel.Triggers())
	if err != nil {
		return nil, err
	}
	if batch.Len() == 0 {
		return Result{batch.Dataset: out}, nil
	}

	cand, err := p.channel.Select(batch)
	if err != nil {
		return nil, fmt.Errorf("error selecting %s events: %w", p.channel.Name(), err)
	}

	combinator := NewCombinator(batch.Len())
	combinator.Require(LumiRequirement(batch, p.lumiMask))
	combinator.Require(trigger)
	for _, r := range cand.Requirements {
		combinator.Require(r)
	}
	for _, r := range p.cuts.Requirements(batch) {
		combinator.Require(r)
	}
	mask, err := combinator.Mask()
	if err != nil {
		return nil, err
	}

	weights, err := p.weights(batch, mask, cand)
	if err != nil {
		return nil, err
	}
	if p.config.Verbosity > 1 {
		message := fmt.Sprintf("%s: %d/%d events pass [%s], weights [%s]", batch.Dataset,
			mask.Count(), batch.Len(), strings.Join(combinator.Requirements(), ", "),
			strings.Join(weights.Names(), ", "))
		logger.Info(message, "processor")
	}

	sel := NewSelectedEvents(mask, batch.IsRealData, cand.Jets, cand.Objects, cand.Factor)
	var sf *ScaleFactors
	if p.corrections(batch) {
		sf = &ScaleFactors{}
		for object, role := range cand.ScaleFactorJets {
			p.resolver.Resolve(sf, object, sel.JetsOf(role))
		}
	}

	if err := p.dispatcher.Fill(out, sel, weights.Product(mask), sf); err != nil {
		return nil, err
	}
	return Result{batch.Dataset: out}, nil
}

func (p *Processor) weights(batch *EventBatch, mask SelectionMask, cand *Candidates) (*WeightAccumulator, error) {
	weights := NewWeightAccumulator(batch.Len())
	if batch.IsRealData {
		return weights, nil
	}
	if err := weights.Add("genweight", generatorWeights(batch)); err != nil {
		return nil, err
	}
	if !p.config.IsCorr {
		return weights, nil
	}

	pu := make([]float64, batch.Len())
	for i := range batch.Events {
		pu[i] = p.calib.Pileup.Lookup("central", AnyFlavor, batch.Events[i].NPU)
	}
	if err := weights.Add("puweight", pu); err != nil {
		return nil, err
	}

	for _, lw := range cand.LeptonWeights {
		values := make([]float64, batch.Len())
		for i, l := range lw.Leptons {
			values[i] = p.leptonSF(lw.Table, l)
		}
		if err := weights.Add(lw.Name, Where(mask, values, 1)); err != nil {
			return nil, err
		}
	}
	return weights, nil
}

func (p *Processor) leptonSF(table LeptonTable, l Object) float64 {
	switch v := l.(type) {
	case *Electron:
		if v != nil && table == ElectronIDTable {
			return p.calib.ElectronID.Lookup("central", AnyFlavor, v.Eta+v.DeltaEtaSC, v.Pt)
		}
	case *Muon:
		if v != nil && table == MuonIDTable {
			return p.calib.MuonID.Lookup("central", AnyFlavor, absf(v.Eta), v.Pt)
		}
	}
	return 1
}
