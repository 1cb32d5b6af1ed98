package sfvalid

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramRows(t *testing.T) {
	h := NewHistogramAccumulator("btagDeepB_0", "btagDeepB jet 0", 4, 0, 1)
	h.Fill(Category{Flavor: FlavorBottom, Syst: NominalSyst}, 0.1, 2)
	h.Fill(Category{Flavor: FlavorBottom, Syst: NominalSyst}, 0.1, 1)
	h.Fill(Category{Flavor: FlavorBottom, Syst: NominalSyst}, 1.5, 1)
	h.Fill(Category{Flavor: FlavorBottom, Syst: "SF"}, -0.5, 0.9)

	rows := histogramRows(h)
	require.Len(t, rows, 2*(4+2))

	// "SF" sorts before "nominal"
	under := rows[0]
	assert.Equal(t, convertToHdf5String("SF"), under.syst)
	assert.EqualValues(t, -1, under.bin)
	assert.InDelta(t, 0.9, under.sumw, 1e-12)

	nominal := rows[6:]
	assert.Equal(t, convertToHdf5String(NominalSyst), nominal[1].syst)
	assert.EqualValues(t, FlavorBottom, nominal[1].flavor)
	assert.EqualValues(t, 0, nominal[1].bin)
	assert.InDelta(t, 0.0, nominal[1].xlow, 1e-12)
	assert.InDelta(t, 0.25, nominal[1].xhigh, 1e-12)
	assert.InDelta(t, 3.0, nominal[1].sumw, 1e-12)
	assert.InDelta(t, 5.0, nominal[1].sumw2, 1e-12)
	assert.EqualValues(t, 2, nominal[1].entries)

	over := nominal[5]
	assert.EqualValues(t, 4, over.bin)
	assert.InDelta(t, 1.0, over.sumw, 1e-12)
}

func TestConvertToHdf5String(t *testing.T) {
	s := convertToHdf5String("nominal")
	assert.Equal(t, byte('n'), s[0])
	assert.Equal(t, byte(0), s[len("nominal")])

	long := convertToHdf5String("this systematic name is far longer than the fixed width")
	assert.Len(t, long, STRLEN)
}

func TestCheckResultNames(t *testing.T) {
	valid := func() Result {
		out := NewOutput()
		h := NewHistogramAccumulator("njet", "number of jets", 10, 0, 10)
		out.Histograms[h.Name] = h
		return Result{"TTTo2L2Nu_TuneCP5_13TeV-powheg-pythia8": out}
	}
	require.NoError(t, checkResultNames(valid()))

	cases := map[string]func(Result) Result{
		"nested dataset": func(r Result) Result {
			return Result{"TTTo2L2Nu/RunIISummer20UL17": r["TTTo2L2Nu_TuneCP5_13TeV-powheg-pythia8"]}
		},
		"long dataset": func(r Result) Result {
			return Result{strings.Repeat("x", STRLEN+1): r["TTTo2L2Nu_TuneCP5_13TeV-powheg-pythia8"]}
		},
		"long histogram": func(r Result) Result {
			out := r["TTTo2L2Nu_TuneCP5_13TeV-powheg-pythia8"]
			h := NewHistogramAccumulator(strings.Repeat("h", STRLEN+1), "", 1, 0, 1)
			out.Histograms[h.Name] = h
			return r
		},
		"empty dataset": func(r Result) Result {
			return Result{"": r["TTTo2L2Nu_TuneCP5_13TeV-powheg-pythia8"]}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			err := checkResultNames(mutate(valid()))
			var invalid *ErrInvalidName
			assert.True(t, errors.As(err, &invalid))
		})
	}
}
