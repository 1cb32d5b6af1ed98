package sfvalid

const ChannelTTDilep = "ttdilep_sf"

// TTDilepChannel selects dileptonic top-pair events with one muon and one
// electron of opposite charge and at least two jets. Scale factors are
// computed for the two leading jets.
type TTDilepChannel struct {
	campaign string
}

func NewTTDilepChannel(campaign string) *TTDilepChannel {
	return &TTDilepChannel{campaign: campaign}
}

func (c *TTDilepChannel) Name() string {
	return ChannelTTDilep
}

func (c *TTDilepChannel) Triggers() []string {
	return []string{"HLT_IsoMu24"}
}

func (c *TTDilepChannel) Select(batch *EventBatch) (*Candidates, error) {
	n := batch.Len()

	muons := SelectMuons(batch, MinPt(MuonPt, 30), MuonIDIso(c.campaign))
	electrons := SelectElectrons(batch, MinPt(ElectronPt, 30), ElectronCutTightID(c.campaign))
	jets := SelectJets(batch,
		JetID(c.campaign),
		CleanedFrom(AsObjects(muons), 0.4),
		CleanedFrom(AsObjects(electrons), 0.4),
	)

	nMuons, nElectrons, nJets := Counts(muons), Counts(electrons), Counts(jets)
	muon := Leading(muons, 0)
	electron := Leading(electrons, 0)

	reqs := []Requirement{
		NewRequirement("muon", n, func(i int) (bool, bool) { return nMuons[i] == 1, true }),
		NewRequirement("electron", n, func(i int) (bool, bool) { return nElectrons[i] == 1, true }),
		NewRequirement("jets", n, func(i int) (bool, bool) { return nJets[i] >= 2, true }),
		NewRequirement("opposite_charge", n, func(i int) (bool, bool) {
			if muon[i] == nil || electron[i] == nil {
				return false, false
			}
			return muon[i].Charge*electron[i].Charge == -1, true
		}),
	}

	jets = Truncate(jets, 2)
	return &Candidates{
		Requirements: reqs,
		Jets:         jets,
		Objects: map[ObjectRole][]Object{
			RoleMuon:     ObjectsOf(muon),
			RoleElectron: ObjectsOf(electron),
			RoleJet0:     ObjectsOf(Leading(jets, 0)),
			RoleJet1:     ObjectsOf(Leading(jets, 1)),
		},
		LeptonWeights: []LeptonWeight{
			{Name: "lep1sf", Table: MuonIDTable, Leptons: ObjectsOf(muon)},
			{Name: "lep2sf", Table: ElectronIDTable, Leptons: ObjectsOf(electron)},
		},
		ScaleFactorJets: map[SFObject]ObjectRole{
			SFLeading:    RoleJet0,
			SFSubleading: RoleJet1,
		},
	}, nil
}
