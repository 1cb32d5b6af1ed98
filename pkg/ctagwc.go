package sfvalid

import "math"

const ChannelCTagWc = "ectag_Wc_sf"

// CTagWcChannel selects W+c events: an isolated electron from the W and a
// soft muon inside the charm jet. Every fill is weighted by the OS-SS charge
// factor, and scale factors are computed for the muon jet only.
type CTagWcChannel struct {
	campaign string
}

func NewCTagWcChannel(campaign string) *CTagWcChannel {
	return &CTagWcChannel{campaign: campaign}
}

func (c *CTagWcChannel) Name() string {
	return ChannelCTagWc
}

func (c *CTagWcChannel) Triggers() []string {
	return []string{"HLT_Ele32_WPTight_Gsf_L1DoubleEG"}
}

func (c *CTagWcChannel) Select(batch *EventBatch) (*Candidates, error) {
	n := batch.Len()

	isoElectrons := SelectElectrons(batch, MinPt(ElectronPt, 34), ElectronMVATightID(c.campaign))
	nIso := Counts(isoElectrons)
	hardLepton := Leading(isoElectrons, 0)

	jets := SelectJets(batch,
		JetID(c.campaign),
		CleanedFrom(Singletons(ObjectsOf(hardLepton)), 0.5),
	)
	nJets := Counts(jets)

	softMuons := SelectMuons(batch, SoftMuon(c.campaign))
	nSoft := Counts(softMuons)
	softMuon := Leading(softMuons, 0)

	muJets := Refine(batch, jets,
		MatchedTo(AsObjects(softMuons), 0.4),
		func(_ int, _ *Event, j *Jet) bool { return j.MuonIdx1 != -1 || j.MuonIdx2 != -1 },
	)
	nMuJets := Counts(muJets)
	muJet := Leading(muJets, 0)

	dilepMuons := Counts(SelectMuons(batch, MinPt(MuonPt, 12), MuonIDIso(c.campaign)))
	dilepElectrons := Counts(SelectElectrons(batch, MinPt(ElectronPt, 15), ElectronMVATightID(c.campaign)))

	met := make([]Object, n)
	for i := range batch.Events {
		met[i] = &batch.Events[i].MET
	}
	hardLeptons, softMuonObjs := ObjectsOf(hardLepton), ObjectsOf(softMuon)
	wCandidates := make([]Object, n)
	zCandidates := make([]Object, n)
	factor := make([]float64, n)
	for i := 0; i < n; i++ {
		wCandidates[i] = Combine(hardLeptons[i], met[i])
		zCandidates[i] = Combine(hardLeptons[i], softMuonObjs[i])
		factor[i] = 1
		if hardLepton[i] != nil && softMuon[i] != nil {
			factor[i] = float64(-hardLepton[i].Charge * softMuon[i].Charge)
		}
	}

	reqs := []Requirement{
		NewRequirement("iso_electron", n, func(i int) (bool, bool) { return nIso[i] == 1, true }),
		NewRequirement("jets", n, func(i int) (bool, bool) { return nJets[i] >= 1 && nJets[i] <= 3, true }),
		NewRequirement("soft_muon", n, func(i int) (bool, bool) { return nSoft[i] >= 1, true }),
		NewRequirement("muon_jet", n, func(i int) (bool, bool) { return nMuJets[i] >= 1, true }),
		NewRequirement("soft_muon_ptratio", n, func(i int) (bool, bool) {
			if softMuon[i] == nil || muJet[i] == nil {
				return false, false
			}
			return softMuon[i].Pt/muJet[i].Pt < 0.6, true
		}),
		NewRequirement("qcd_veto", n, func(i int) (bool, bool) {
			e, j := hardLepton[i], muJet[i]
			if e == nil || j == nil {
				return false, false
			}
			ratio := e.Pt / j.Pt
			return e.PfRelIso03All < 0.05 && math.Abs(e.Dz) < 0.01 && math.Abs(e.Dxy) < 0.002 &&
				e.Ip3d < 0.2 && (ratio < 0 || ratio > 0.75), true
		}),
		NewRequirement("dilepton_veto", n, func(i int) (bool, bool) {
			return dilepMuons[i]+dilepElectrons[i] != 2, true
		}),
		NewRequirement("w_mass", n, func(i int) (bool, bool) {
			if wCandidates[i] == nil {
				return false, false
			}
			return wCandidates[i].P4().M() > 55, true
		}),
	}

	return &Candidates{
		Requirements: reqs,
		Jets:         jets,
		Objects: map[ObjectRole][]Object{
			RoleHardLepton: hardLeptons,
			RoleSoftMuon:   softMuonObjs,
			RoleMuonJet:    ObjectsOf(muJet),
			RoleJet0:       ObjectsOf(Leading(jets, 0)),
			RoleJet1:       ObjectsOf(Leading(jets, 1)),
			RoleMET:        met,
			RoleW:          wCandidates,
			RoleZ:          zCandidates,
		},
		Factor: factor,
		LeptonWeights: []LeptonWeight{
			{Name: "lep1sf", Table: ElectronIDTable, Leptons: hardLeptons},
			{Name: "lep2sf", Table: MuonIDTable, Leptons: softMuonObjs},
		},
		ScaleFactorJets: map[SFObject]ObjectRole{
			SFMuonJet: RoleMuonJet,
		},
	}, nil
}
