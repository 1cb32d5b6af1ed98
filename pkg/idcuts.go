package sfvalid

import "math"

// Identification working points. These are simplified versions of the
// campaign-dependent recommendations; the campaign only shifts the jet ID bit.

func MinPt[T any](pt func(*T) float64, threshold float64) Predicate[T] {
	return func(_ int, _ *Event, o *T) bool {
		return pt(o) > threshold
	}
}

func ElectronPt(e *Electron) float64 { return e.Pt }
func MuonPt(m *Muon) float64         { return m.Pt }

func JetID(campaign string) Predicate[Jet] {
	tightLepVeto := 6
	if campaign == "Rereco17_94X" {
		tightLepVeto = 5
	}
	return func(_ int, _ *Event, j *Jet) bool {
		if j.Pt <= 20 || math.Abs(j.Eta) > 2.5 {
			return false
		}
		if j.JetID < tightLepVeto {
			return false
		}
		// pileup ID only applies below 50 GeV
		return j.Pt > 50 || j.PuID >= 7
	}
}

func MuonIDIso(campaign string) Predicate[Muon] {
	return func(_ int, _ *Event, m *Muon) bool {
		return math.Abs(m.Eta) < 2.4 && m.TightID && m.PfRelIso04All <= 0.15
	}
}

func electronAcceptance(e *Electron) bool {
	scEta := math.Abs(e.Eta + e.DeltaEtaSC)
	if scEta > 1.4442 && scEta < 1.566 {
		return false
	}
	return math.Abs(e.Eta) < 2.5
}

func ElectronMVATightID(campaign string) Predicate[Electron] {
	return func(_ int, _ *Event, e *Electron) bool {
		return electronAcceptance(e) && e.MvaIsoWP80
	}
}

func ElectronCutTightID(campaign string) Predicate[Electron] {
	return func(_ int, _ *Event, e *Electron) bool {
		return electronAcceptance(e) && e.CutBased >= 4
	}
}

// SoftMuon selects non-isolated muons inside a jet.
func SoftMuon(campaign string) Predicate[Muon] {
	return func(_ int, _ *Event, m *Muon) bool {
		return m.Pt < 25 && math.Abs(m.Eta) < 2.4 && m.TightID &&
			m.PfRelIso04All > 0.2 && m.JetIdx != -1
	}
}
