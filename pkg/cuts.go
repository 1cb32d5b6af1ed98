package sfvalid

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExtraCuts are boolean expressions over per-event summary variables, each
// turned into one requirement.
type ExtraCuts struct {
	sources  []string
	programs []*vm.Program
}

func eventEnv(ev *Event) map[string]any {
	return map[string]any{
		"nJet":      len(ev.Jets),
		"nMuon":     len(ev.Muons),
		"nElectron": len(ev.Electrons),
		"met":       ev.MET.Pt,
		"npu":       ev.NPU,
		"run":       int(ev.Run),
		"lumi":      int(ev.LuminosityBlock),
	}
}

// CompileExtraCuts checks every expression against the event variables.
func CompileExtraCuts(sources []string) (*ExtraCuts, error) {
	cuts := &ExtraCuts{}
	env := eventEnv(&Event{})
	for _, src := range sources {
		program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("error compiling cut %q: %w", src, err)
		}
		cuts.sources = append(cuts.sources, src)
		cuts.programs = append(cuts.programs, program)
	}
	return cuts, nil
}

func (c *ExtraCuts) Len() int {
	if c == nil {
		return 0
	}
	return len(c.programs)
}

// Requirements evaluates every cut on every event. An evaluation error
// leaves the event undecided.
func (c *ExtraCuts) Requirements(batch *EventBatch) []Requirement {
	reqs := make([]Requirement, 0, c.Len())
	for k := 0; k < c.Len(); k++ {
		program := c.programs[k]
		reqs = append(reqs, NewRequirement(c.sources[k], batch.Len(), func(i int) (bool, bool) {
			out, err := expr.Run(program, eventEnv(&batch.Events[i]))
			if err != nil {
				return false, false
			}
			pass, ok := out.(bool)
			return pass, ok
		}))
	}
	return reqs
}
