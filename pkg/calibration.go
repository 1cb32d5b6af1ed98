package sfvalid

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// AnyFlavor keys grids that apply to every flavour (pileup, lepton tables).
const AnyFlavor = -1

// KinematicTable is a b-tag discriminant reshaping table binned in |eta|, pt
// and discriminant.
type KinematicTable interface {
	Evaluate(variation string, flavor int, absEta, pt, discr float64) float64
}

// DiscriminantTable is a c-tag table binned in the two c-tagging discriminants.
type DiscriminantTable interface {
	EvaluateShape(flavor int, discr1, discr2 float64, variation string) float64
}

type GridSpec struct {
	Variation string      `json:"variation"`
	Flavor    int         `json:"flavor"`
	Edges     [][]float64 `json:"edges"`
	Values    []float64   `json:"values"`
}

type TableSpec struct {
	Name     string     `json:"name"`
	Axes     []string   `json:"axes"`
	Fallback float64    `json:"fallback"`
	Grids    []GridSpec `json:"grids"`
}

type gridKey struct {
	variation string
	flavor    int
}

type grid struct {
	edges  [][]float64
	values []float64
}

// GridTable is an immutable binned lookup keyed by variation tag and flavour.
// Values outside the binned phase space, or for unknown keys, return the
// table fallback.
type GridTable struct {
	name     string
	axes     []string
	fallback float64
	grids    map[gridKey]*grid
}

func NewGridTable(spec TableSpec) (*GridTable, error) {
	t := &GridTable{
		name:     spec.Name,
		axes:     append([]string(nil), spec.Axes...),
		fallback: spec.Fallback,
		grids:    make(map[gridKey]*grid, len(spec.Grids)),
	}
	for _, g := range spec.Grids {
		if len(g.Edges) != len(spec.Axes) {
			return nil, fmt.Errorf("table %s (%s, flavour %d): %d axes, expected %d",
				spec.Name, g.Variation, g.Flavor, len(g.Edges), len(spec.Axes))
		}
		size := 1
		edges := make([][]float64, len(g.Edges))
		for k, e := range g.Edges {
			if len(e) < 2 || !sort.Float64sAreSorted(e) || floats.HasNaN(e) {
				return nil, fmt.Errorf("table %s (%s, flavour %d): invalid edges on axis %s",
					spec.Name, g.Variation, g.Flavor, spec.Axes[k])
			}
			edges[k] = append([]float64(nil), e...)
			size *= len(e) - 1
		}
		if len(g.Values) != size {
			return nil, fmt.Errorf("table %s (%s, flavour %d): %d values, expected %d",
				spec.Name, g.Variation, g.Flavor, len(g.Values), size)
		}
		t.grids[gridKey{g.Variation, g.Flavor}] = &grid{
			edges:  edges,
			values: append([]float64(nil), g.Values...),
		}
	}
	return t, nil
}

func (t *GridTable) Name() string {
	return t.name
}

// Lookup returns the value of the bin containing x. The upper edge of the
// last bin is inclusive.
func (t *GridTable) Lookup(variation string, flavor int, x ...float64) float64 {
	g, ok := t.grids[gridKey{variation, flavor}]
	if !ok {
		g, ok = t.grids[gridKey{variation, AnyFlavor}]
	}
	if !ok || len(x) != len(g.edges) {
		return t.fallback
	}
	index := 0
	for k, e := range g.edges {
		bin := floats.Within(e, x[k])
		if bin < 0 && x[k] == e[len(e)-1] {
			bin = len(e) - 2
		}
		if bin < 0 {
			return t.fallback
		}
		index = index*(len(e)-1) + bin
	}
	return g.values[index]
}

func (t *GridTable) Evaluate(variation string, flavor int, absEta, pt, discr float64) float64 {
	return t.Lookup(variation, flavor, absEta, pt, discr)
}

func (t *GridTable) EvaluateShape(flavor int, discr1, discr2 float64, variation string) float64 {
	return t.Lookup(variation, flavor, discr1, discr2)
}

const (
	TableDeepCSVB   = "DeepCSVB"
	TableDeepCSVC   = "DeepCSVC"
	TableDeepJetB   = "DeepJetB"
	TableDeepJetC   = "DeepJetC"
	TablePileup     = "pileup"
	TableElectronID = "electron_id"
	TableMuonID     = "muon_id"
)

// Calibrations holds every table a pipeline instance reads. It is built
// once and only read afterwards, so it can be shared between workers.
type Calibrations struct {
	DeepCSVB   KinematicTable
	DeepJetB   KinematicTable
	DeepCSVC   DiscriminantTable
	DeepJetC   DiscriminantTable
	Pileup     *GridTable
	ElectronID *GridTable
	MuonID     *GridTable
}

// NewCalibrations assigns tables by name. Missing tables are an error since
// corrections cannot be partially applied.
func NewCalibrations(tables map[string]*GridTable) (*Calibrations, error) {
	required := []string{TableDeepCSVB, TableDeepCSVC, TableDeepJetB, TableDeepJetC,
		TablePileup, TableElectronID, TableMuonID}
	for _, name := range required {
		if _, ok := tables[name]; !ok {
			return nil, fmt.Errorf("calibration table %q not found", name)
		}
	}
	return &Calibrations{
		DeepCSVB:   tables[TableDeepCSVB],
		DeepJetB:   tables[TableDeepJetB],
		DeepCSVC:   tables[TableDeepCSVC],
		DeepJetC:   tables[TableDeepJetC],
		Pileup:     tables[TablePileup],
		ElectronID: tables[TableElectronID],
		MuonID:     tables[TableMuonID],
	}, nil
}

type calibrationFile struct {
	Campaign string      `json:"campaign"`
	Tables   []TableSpec `json:"tables"`
}

// LoadCalibrationFile reads the tables of one campaign from a JSON file.
func LoadCalibrationFile(filename string, campaign string) (*Calibrations, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	var file calibrationFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error decoding calibration file %q: %w", filename, err)
	}
	if file.Campaign != "" && file.Campaign != campaign {
		return nil, fmt.Errorf("calibration file %q is for campaign %s, not %s", filename, file.Campaign, campaign)
	}
	tables := make(map[string]*GridTable, len(file.Tables))
	for _, spec := range file.Tables {
		table, err := NewGridTable(spec)
		if err != nil {
			return nil, fmt.Errorf("error reading calibration file %q: %w", filename, err)
		}
		tables[spec.Name] = table
	}
	return NewCalibrations(tables)
}
