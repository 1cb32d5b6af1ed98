package sfvalid

import (
	"fmt"
	"strings"
)

// Decision is the outcome of an event-level requirement. The zero value is
// Undecided, which never passes a cut.
type Decision int8

const (
	Undecided Decision = iota
	Fail
	Pass
)

func DecisionOf(pass bool) Decision {
	if pass {
		return Pass
	}
	return Fail
}

type Requirement struct {
	Name      string
	Decisions []Decision
}

// NewRequirement evaluates fn for every event. fn reports ok == false when the
// inputs it needs are missing.
func NewRequirement(name string, n int, fn func(i int) (pass bool, ok bool)) Requirement {
	decisions := make([]Decision, n)
	for i := range decisions {
		pass, ok := fn(i)
		if ok {
			decisions[i] = DecisionOf(pass)
		}
	}
	return Requirement{Name: name, Decisions: decisions}
}

func RequirementFromBools(name string, values []bool) Requirement {
	decisions := make([]Decision, len(values))
	for i, v := range values {
		decisions[i] = DecisionOf(v)
	}
	return Requirement{Name: name, Decisions: decisions}
}

type SelectionMask []bool

func (m SelectionMask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the positions of the passing events.
func (m SelectionMask) Indices() []int {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v {
			idx = append(idx, i)
		}
	}
	return idx
}

const LumiRequirementName = "lumi"

// Combinator ANDs independent per-event requirements into one mask.
type Combinator struct {
	n            int
	requirements []Requirement
}

func NewCombinator(n int) *Combinator {
	return &Combinator{n: n}
}

func (c *Combinator) Require(r Requirement) {
	c.requirements = append(c.requirements, r)
}

func (c *Combinator) Requirements() []string {
	names := make([]string, len(c.requirements))
	for i, r := range c.requirements {
		names[i] = r.Name
	}
	return names
}

// Mask returns the conjunction of all requirements. An event passes only if
// every requirement is Pass for it. The lumi requirement must be present, even
// for simulation where it is all Pass.
func (c *Combinator) Mask() (SelectionMask, error) {
	hasLumi := false
	for _, r := range c.requirements {
		if len(r.Decisions) != c.n {
			return nil, &ErrLengthMismatch{Name: r.Name, Length: len(r.Decisions), Expected: c.n}
		}
		if r.Name == LumiRequirementName {
			hasLumi = true
		}
	}
	if !hasLumi {
		return nil, fmt.Errorf("selection has no %q requirement", LumiRequirementName)
	}

	mask := make(SelectionMask, c.n)
	for i := range mask {
		mask[i] = true
		for _, r := range c.requirements {
			if r.Decisions[i] != Pass {
				mask[i] = false
				break
			}
		}
	}
	return mask, nil
}

// LumiMask accepts or rejects a (run, luminosity block) pair.
type LumiMask interface {
	Accept(run uint32, lumi uint32) bool
}

// LumiRequirement applies the mask to real data; simulation always passes.
func LumiRequirement(batch *EventBatch, mask LumiMask) Requirement {
	return NewRequirement(LumiRequirementName, batch.Len(), func(i int) (bool, bool) {
		if !batch.IsRealData {
			return true, true
		}
		if mask == nil {
			return false, false
		}
		ev := &batch.Events[i]
		return mask.Accept(ev.Run, ev.LuminosityBlock), true
	})
}

// TriggerRequirement ORs the requested trigger paths. It fails only when no
// path exists in the batch; absent paths are reported and ignored otherwise.
func TriggerRequirement(batch *EventBatch, paths []string) (Requirement, error) {
	present := make([]string, 0, len(paths))
	missing := make([]string, 0)
	for _, p := range paths {
		if batch.HasTrigger(p) {
			present = append(present, p)
		} else {
			missing = append(missing, p)
		}
	}
	if len(present) == 0 {
		return Requirement{}, &ErrTriggersMissing{Dataset: batch.Dataset, Paths: paths}
	}
	if len(missing) > 0 {
		message := fmt.Sprintf("HLT paths [%s] not exist in %s", strings.Join(missing, ", "), batch.Dataset)
		logger.Warn(message, "selection")
	}

	decisions := make([]Decision, batch.Len())
	for i := range batch.Events {
		fired := false
		for _, p := range present {
			if batch.Events[i].HLT[p] {
				fired = true
				break
			}
		}
		decisions[i] = DecisionOf(fired)
	}
	return Requirement{Name: "trigger", Decisions: decisions}, nil
}
