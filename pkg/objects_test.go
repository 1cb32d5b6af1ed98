package sfvalid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedJetBatch() *EventBatch {
	low := goodJet(15, 0, 0, FlavorLight)
	forward := goodJet(80, 3.0, 0, FlavorLight)
	return &EventBatch{Events: []Event{
		{Jets: []Jet{goodJet(40, 0.1, 0, FlavorBottom), low, goodJet(30, -1, 2, FlavorCharm)}},
		{Jets: []Jet{forward}},
		{},
		{Jets: []Jet{goodJet(90, 1, 1, FlavorLight)}},
	}}
}

func TestSelectJets(t *testing.T) {
	batch := mixedJetBatch()
	jets := SelectJets(batch, JetID("Rereco17_94X"))

	assert.Equal(t, []int{2, 0, 0, 1}, Counts(jets))
	assert.Same(t, &batch.Events[0].Jets[2], jets[0][1])
}

func TestSelectionIsIdempotent(t *testing.T) {
	batch := mixedJetBatch()
	pred := JetID("Rereco18_102X")
	once := SelectJets(batch, pred)
	twice := Refine(batch, once, pred)
	assert.Equal(t, once, twice)
}

func TestLeadingPadsMissingObjects(t *testing.T) {
	batch := mixedJetBatch()
	jets := SelectJets(batch, JetID("Rereco17_94X"))

	second := Leading(jets, 1)
	require.Len(t, second, 4)
	assert.NotNil(t, second[0])
	assert.Nil(t, second[1])
	assert.Nil(t, second[2])
	assert.Nil(t, second[3])

	objs := ObjectsOf(second)
	assert.Nil(t, objs[1])
	assert.NotNil(t, objs[0])

	assert.Equal(t, []int{2, 0, 0, 1}, Counts(Truncate(jets, 2)))
	assert.Equal(t, []int{1, 0, 0, 1}, Counts(Truncate(jets, 1)))
}

func TestCleanedFromAndMatchedTo(t *testing.T) {
	batch := &EventBatch{Events: []Event{
		{
			Muons: []Muon{{Pt: 10, Eta: 0, Phi: 0}},
			Jets:  []Jet{goodJet(30, 0.1, 0.1, FlavorCharm), goodJet(30, 1.5, 2, FlavorLight)},
		},
		{
			Jets: []Jet{goodJet(30, 0.1, 0.1, FlavorCharm)},
		},
	}}
	muons := AsObjects(SelectMuons(batch))

	cleaned := SelectJets(batch, CleanedFrom(muons, 0.4))
	assert.Equal(t, []int{1, 1}, Counts(cleaned))
	assert.Equal(t, 1.5, cleaned[0][0].Eta)

	matched := SelectJets(batch, MatchedTo(muons, 0.4))
	assert.Equal(t, []int{1, 0}, Counts(matched))
	assert.Equal(t, 0.1, matched[0][0].Eta)

	// a missing reference object never vetoes a jet
	padded := Singletons(ObjectsOf(Leading(SelectMuons(batch), 0)))
	assert.Equal(t, []int{1, 1}, Counts(SelectJets(batch, CleanedFrom(padded, 0.4))))
}

func TestJetFlavor(t *testing.T) {
	b := goodJet(30, 0, 0, FlavorBottom)
	undefined := goodJet(30, 0, 0, FlavorLight)
	undefined.PartonFlavour = 0
	light := goodJet(30, 0, 0, FlavorLight)

	assert.Equal(t, FlavorBottom, JetFlavor(&b, false))
	assert.Equal(t, FlavorUndefined, JetFlavor(&undefined, false))
	assert.Equal(t, FlavorLight, JetFlavor(&light, false))
	assert.Equal(t, FlavorLight, JetFlavor(&b, true))
}

func TestCombineAndDeltaR(t *testing.T) {
	a := &Muon{Pt: 30, Eta: 0, Phi: 0}
	b := &Electron{Pt: 30, Eta: 0, Phi: 1}

	dr, ok := DeltaR(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, dr, 1e-9)

	var missing *Electron
	_, ok = DeltaR(a, missing)
	assert.False(t, ok)
	assert.Nil(t, Combine(a, missing))

	sum := Combine(a, b)
	require.NotNil(t, sum)
	assert.Greater(t, sum.P4().M(), 0.0)
}
