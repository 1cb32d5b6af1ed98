package sfvalid

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	errors   []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}

func (l *recordingLogger) Warn(message string, module string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, message)
}

func (l *recordingLogger) Error(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

// useRecordingLogger swaps the package logger for the duration of a test.
func useRecordingLogger(t *testing.T) *recordingLogger {
	rec := &recordingLogger{}
	previous := logger
	SetLogger(rec)
	t.Cleanup(func() { SetLogger(previous) })
	return rec
}

// constantTable covers the whole phase space with one bin per variation.
func constantTable(t *testing.T, name string, nAxes int, values map[string]float64) *GridTable {
	spec := TableSpec{Name: name, Fallback: 1}
	for k := 0; k < nAxes; k++ {
		spec.Axes = append(spec.Axes, fmt.Sprintf("x%d", k))
	}
	for variation, v := range values {
		edges := make([][]float64, nAxes)
		for k := range edges {
			edges[k] = []float64{-1000, 1000}
		}
		spec.Grids = append(spec.Grids, GridSpec{
			Variation: variation,
			Flavor:    AnyFlavor,
			Edges:     edges,
			Values:    []float64{v},
		})
	}
	table, err := NewGridTable(spec)
	require.NoError(t, err)
	return table
}

// testCalibrations returns tables where every scale factor is central,
// up or down regardless of the jet, and every event-level weight is one.
func testCalibrations(t *testing.T, central, up, down float64) *Calibrations {
	bValues := map[string]float64{"central": central, "up_jes": up, "down_jes": down}
	cValues := map[string]float64{"central": central, "TotalUncUp": up, "TotalUncDown": down}
	calib, err := NewCalibrations(map[string]*GridTable{
		TableDeepCSVB:   constantTable(t, TableDeepCSVB, 3, bValues),
		TableDeepJetB:   constantTable(t, TableDeepJetB, 3, bValues),
		TableDeepCSVC:   constantTable(t, TableDeepCSVC, 2, cValues),
		TableDeepJetC:   constantTable(t, TableDeepJetC, 2, cValues),
		TablePileup:     constantTable(t, TablePileup, 1, map[string]float64{"central": 1}),
		TableElectronID: constantTable(t, TableElectronID, 2, map[string]float64{"central": 1}),
		TableMuonID:     constantTable(t, TableMuonID, 2, map[string]float64{"central": 1}),
	})
	require.NoError(t, err)
	return calib
}

// goodJet passes the jet ID of every campaign. Light jets get a gluon parton
// flavour so that they are not labelled undefined.
func goodJet(pt, eta, phi float64, flavour int) Jet {
	parton := flavour
	if parton == 0 {
		parton = 21
	}
	return Jet{
		Pt: pt, Eta: eta, Phi: phi, Mass: 5,
		JetID: 6, PuID: 7,
		HadronFlavour: flavour, PartonFlavour: parton,
		MuonIdx1: -1, MuonIdx2: -1,
		BTagDeepB: 0.5, BTagDeepC: 0.2, BTagDeepCvL: 0.3, BTagDeepCvB: 0.4,
		BTagDeepFlavB: 0.6, BTagDeepFlavC: 0.1, BTagDeepFlavCvL: 0.35, BTagDeepFlavCvB: 0.45,
	}
}

// ttdilepEvent builds an event passing every ttdilep_sf requirement when fired is true.
func ttdilepEvent(fired bool) Event {
	return Event{
		Run: 1, LuminosityBlock: 1, GenWeight: 1, NPU: 20,
		HLT: map[string]bool{"HLT_IsoMu24": fired},
		Muons: []Muon{{
			Pt: 40, Eta: 0.5, Phi: 0, Charge: -1,
			TightID: true, PfRelIso04All: 0.05, JetIdx: -1,
		}},
		Electrons: []Electron{{
			Pt: 40, Eta: -0.5, Phi: 2.0, Charge: 1, CutBased: 4,
		}},
		Jets: []Jet{
			goodJet(60, 1.0, -2.0, FlavorBottom),
			goodJet(55, -1.2, 1.0, FlavorCharm),
		},
		MET: MissingEnergy{Pt: 30, Phi: 1},
	}
}

func ttdilepBatch(dataset string, passing int, failing int) *EventBatch {
	batch := &EventBatch{Dataset: dataset, TriggerPaths: []string{"HLT_IsoMu24"}}
	for i := 0; i < passing; i++ {
		batch.Events = append(batch.Events, ttdilepEvent(true))
	}
	for i := 0; i < failing; i++ {
		batch.Events = append(batch.Events, ttdilepEvent(false))
	}
	return batch
}

func resolvedSchema(t *testing.T, channel string) []*HistogramDefinition {
	schema, err := BuiltinSchema(channel)
	require.NoError(t, err)
	defs, err := schema.Resolve()
	require.NoError(t, err)
	return defs
}
