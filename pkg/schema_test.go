package sfvalid

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDefinition(defs []*HistogramDefinition, name string) *HistogramDefinition {
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func TestBuiltinSchemas(t *testing.T) {
	ttdilep := resolvedSchema(t, ChannelTTDilep)
	d := findDefinition(ttdilep, "btagDeepFlavB_1")
	require.NotNil(t, d)
	assert.Equal(t, FamilyDiscriminant, d.Family)
	assert.Equal(t, RoleJet1, d.Object)
	assert.Equal(t, BTagDeepFlavB, d.Discriminant)
	assert.True(t, d.Systematics)
	assert.True(t, d.FlavorAxis)
	assert.False(t, d.ChargeWeighted)
	assert.Equal(t, 2, d.MinJets())

	dr := findDefinition(ttdilep, "dr_mujet0")
	require.NotNil(t, dr)
	assert.Equal(t, RoleJet0, dr.FlavorRole)
	assert.Equal(t, 1, dr.MinJets())

	wc := resolvedSchema(t, ChannelCTagWc)
	hl := findDefinition(wc, "hl_pt")
	require.NotNil(t, hl)
	assert.True(t, hl.ChargeWeighted)
	assert.False(t, hl.FlavorAxis)
	assert.Equal(t, 0, hl.MinJets())

	ratio := findDefinition(wc, "soft_l_ptratio")
	require.NotNil(t, ratio)
	assert.Equal(t, FamilyPtRatio, ratio.Family)
	assert.Equal(t, RoleMuonJet, ratio.FlavorRole)

	_, err := BuiltinSchema("dilep_sf")
	assert.Error(t, err)
}

func TestSchemaValidation(t *testing.T) {
	cases := map[string]HistogramSpec{
		"unknown family":       {Name: "x", Family: "profile", Object: "jet0", Field: "pt", Bins: 10, Max: 1},
		"unknown object":       {Name: "x", Family: "object", Object: "tau", Field: "pt", Bins: 10, Max: 1},
		"unknown field":        {Name: "x", Family: "object", Object: "muon", Field: "tkRelIso", Bins: 10, Max: 1},
		"bad binning":          {Name: "x", Family: "object", Object: "muon", Field: "pt", Bins: 0, Max: 1},
		"systematics on pt":    {Name: "x", Family: "object", Object: "jet0", Field: "pt", Bins: 10, Max: 1, Systematics: true},
		"flavour without jet":  {Name: "x", Family: "object", Object: "muon", Field: "pt", Bins: 10, Max: 1, Flavor: true},
		"discriminant on lep":  {Name: "x", Family: "discriminant", Object: "muon", Field: "btagDeepB", Bins: 10, Max: 1},
		"unknown discriminant": {Name: "x", Family: "discriminant", Object: "jet0", Field: "btagCSVV2", Bins: 10, Max: 1},
		"delta_r single":       {Name: "x", Family: "delta_r", Object: "muon", Bins: 10, Max: 1},
		"ragged single object": {Name: "x", Family: "jet_collection", Object: "jet0", Field: "pt", Bins: 10, Max: 1},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			schema := &Schema{Histograms: []HistogramSpec{spec}}
			_, err := schema.Resolve()
			var unknown *ErrUnknownHistogram
			assert.True(t, errors.As(err, &unknown), "got %v", err)
		})
	}

	dup := HistogramSpec{Name: "njet", Family: "multiplicity", Object: "jets", Bins: 10, Max: 10}
	_, err := (&Schema{Histograms: []HistogramSpec{dup, dup}}).Resolve()
	assert.ErrorContains(t, err, "defined twice")
}

func TestLoadSchema(t *testing.T) {
	content := `channel: custom
charge_weighted: true
histograms:
  - name: mujet_btagDeepFlavCvL
    family: discriminant
    object: mujet
    field: btagDeepFlavCvL
    bins: 12
    min: -0.2
    max: 1
    flavor: true
    systematics: true
  - name: mu_sip3d
    family: object
    object: soft_muon
    field: sip3d
    bins: 20
    max: 10
    charge_weighted: false
`
	filename := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	schema, err := LoadSchema(filename)
	require.NoError(t, err)
	assert.Equal(t, "custom", schema.Channel)
	defs, err := schema.Resolve()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.True(t, defs[0].ChargeWeighted)
	assert.Equal(t, "mujet_btagDeepFlavCvL", defs[0].Label)
	assert.False(t, defs[1].ChargeWeighted)

	sip, ok := defs[1].value(&Muon{Sip3d: 4})
	assert.True(t, ok)
	assert.Equal(t, 4.0, sip)
	_, ok = defs[1].value(&Electron{})
	assert.False(t, ok)
}
