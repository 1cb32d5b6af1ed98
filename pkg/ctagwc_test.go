package sfvalid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wcEvent builds an event passing every ectag_Wc_sf requirement. The soft
// muon charge decides the sign of the OS-SS factor.
func wcEvent(softMuonCharge int) Event {
	jet := goodJet(30, -1.0, 2.5, FlavorCharm)
	jet.MuonIdx1 = 0
	return Event{
		Run: 1, LuminosityBlock: 1, GenWeight: 1, NPU: 30,
		HLT: map[string]bool{"HLT_Ele32_WPTight_Gsf_L1DoubleEG": true},
		Electrons: []Electron{{
			Pt: 40, Eta: 0.3, Phi: 0, Charge: -1, MvaIsoWP80: true,
			PfRelIso03All: 0.01, Dz: 0.001, Dxy: 0.001, Ip3d: 0.01,
		}},
		Muons: []Muon{{
			Pt: 10, Eta: -1.1, Phi: 2.6, Charge: softMuonCharge,
			TightID: true, PfRelIso04All: 0.5, JetIdx: 0,
		}},
		Jets: []Jet{jet},
		MET:  MissingEnergy{Pt: 40, Phi: math.Pi},
	}
}

func wcBatch(events ...Event) *EventBatch {
	return &EventBatch{
		Dataset:      "WJetsToLNu",
		TriggerPaths: []string{"HLT_Ele32_WPTight_Gsf_L1DoubleEG"},
		Events:       events,
	}
}

func TestCTagWcSelection(t *testing.T) {
	wc := NewCTagWcChannel("Rereco17_94X")
	batch := wcBatch(wcEvent(1), wcEvent(-1))

	noSoftMuon := wcEvent(1)
	noSoftMuon.Muons[0].PfRelIso04All = 0.1
	qcd := wcEvent(1)
	qcd.Electrons[0].PfRelIso03All = 0.2
	lowMass := wcEvent(1)
	lowMass.MET = MissingEnergy{Pt: 5, Phi: 0}
	dilepton := wcEvent(1)
	dilepton.Muons = append(dilepton.Muons, Muon{Pt: 30, Eta: 2, Phi: -2, TightID: true, PfRelIso04All: 0.05, JetIdx: -1})
	batch.Events = append(batch.Events, noSoftMuon, qcd, lowMass, dilepton)

	cand, err := wc.Select(batch)
	require.NoError(t, err)

	combinator := NewCombinator(batch.Len())
	combinator.Require(LumiRequirement(batch, nil))
	for _, r := range cand.Requirements {
		combinator.Require(r)
	}
	mask, err := combinator.Mask()
	require.NoError(t, err)
	assert.Equal(t, SelectionMask{true, true, false, false, false, false}, mask)

	assert.Equal(t, []float64{1, -1}, cand.Factor[:2])
	require.NotNil(t, cand.Objects[RoleMuonJet][0])
	assert.Nil(t, cand.Objects[RoleMuonJet][2])
	assert.Greater(t, cand.Objects[RoleW][0].P4().M(), 55.0)
	assert.Equal(t, RoleMuonJet, cand.ScaleFactorJets[SFMuonJet])
}

func TestCTagWcProcess(t *testing.T) {
	proc := newTestProcessor(t, ChannelCTagWc, func(c *Configuration) { c.IsCorr = true }, testCalibrations(t, 0.9, 1.1, 0.8), nil)
	batch := wcBatch(wcEvent(1), wcEvent(1), wcEvent(-1))

	result, err := proc.Process(batch)
	require.NoError(t, err)
	out := result["WJetsToLNu"]
	assert.Equal(t, 3.0, out.SumW)

	// OS events count +1, SS events -1
	assert.InDelta(t, 1.0, out.Histograms["hl_pt"].SumW(), 1e-12)
	assert.InDelta(t, 1.0, out.Histograms["w_mass"].SumW(), 1e-12)

	disc := out.Histograms["btagDeepFlavCvL_0"]
	assert.InDelta(t, 1.0, disc.Get(Category{Flavor: FlavorCharm, Syst: NominalSyst}).SumW(), 1e-12)
	assert.InDelta(t, 0.9, disc.Get(Category{Flavor: FlavorCharm, Syst: "SF"}).SumW(), 1e-12)

	// single-jet events never reach the subleading-jet histograms
	assert.Empty(t, out.Histograms["btagDeepFlavCvL_1"].Categories())

	ratio := out.Histograms["soft_l_ptratio"].Get(Category{Flavor: FlavorCharm, Syst: NominalSyst})
	require.NotNil(t, ratio)
	assert.InDelta(t, 1.0, ratio.SumW(), 1e-12)
}
