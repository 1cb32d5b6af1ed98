package sfvalid

// Predicate decides whether object o of event number i passes a cut.
type Predicate[T any] func(i int, ev *Event, o *T) bool

// Select returns, for every event of the batch, the objects returned by get
// that pass all predicates. The result is aligned with batch.Events and the
// pointers refer to the objects owned by the batch.
func Select[T any](batch *EventBatch, get func(ev *Event) []T, preds ...Predicate[T]) [][]*T {
	out := make([][]*T, batch.Len())
	for i := range batch.Events {
		ev := &batch.Events[i]
		objs := get(ev)
		sel := make([]*T, 0, len(objs))
		for j := range objs {
			if passesAll(i, ev, &objs[j], preds) {
				sel = append(sel, &objs[j])
			}
		}
		out[i] = sel
	}
	return out
}

func SelectElectrons(batch *EventBatch, preds ...Predicate[Electron]) [][]*Electron {
	return Select(batch, func(ev *Event) []Electron { return ev.Electrons }, preds...)
}

func SelectMuons(batch *EventBatch, preds ...Predicate[Muon]) [][]*Muon {
	return Select(batch, func(ev *Event) []Muon { return ev.Muons }, preds...)
}

func SelectJets(batch *EventBatch, preds ...Predicate[Jet]) [][]*Jet {
	return Select(batch, func(ev *Event) []Jet { return ev.Jets }, preds...)
}

// Refine applies further predicates to an already selected collection.
// Refining with predicates that were already applied returns the same collection.
func Refine[T any](batch *EventBatch, coll [][]*T, preds ...Predicate[T]) [][]*T {
	out := make([][]*T, len(coll))
	for i, objs := range coll {
		ev := &batch.Events[i]
		sel := make([]*T, 0, len(objs))
		for _, o := range objs {
			if passesAll(i, ev, o, preds) {
				sel = append(sel, o)
			}
		}
		out[i] = sel
	}
	return out
}

func passesAll[T any](i int, ev *Event, o *T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(i, ev, o) {
			return false
		}
	}
	return true
}

// Leading returns the n-th object of every event, or nil when the event has
// fewer than n+1 objects.
func Leading[T any](coll [][]*T, n int) []*T {
	out := make([]*T, len(coll))
	for i, objs := range coll {
		if n < len(objs) {
			out[i] = objs[n]
		}
	}
	return out
}

// Truncate keeps at most n objects per event.
func Truncate[T any](coll [][]*T, n int) [][]*T {
	out := make([][]*T, len(coll))
	for i, objs := range coll {
		if len(objs) > n {
			objs = objs[:n]
		}
		out[i] = objs
	}
	return out
}

func Counts[T any](coll [][]*T) []int {
	out := make([]int, len(coll))
	for i, objs := range coll {
		out[i] = len(objs)
	}
	return out
}

// AsObjects converts a ragged collection to objects.
func AsObjects[P Object](coll [][]P) [][]Object {
	out := make([][]Object, len(coll))
	for i, objs := range coll {
		out[i] = ObjectsOf(objs)
	}
	return out
}

// ObjectsOf converts a slice of object pointers to Objects, turning nil
// pointers into untyped nils so that missing values stay detectable.
func ObjectsOf[P Object](objs []P) []Object {
	out := make([]Object, len(objs))
	for i, o := range objs {
		if !isMissing(o) {
			out[i] = o
		}
	}
	return out
}

// CleanedFrom keeps jets farther than minDR from every reference object of
// the same event. Missing references do not veto anything.
func CleanedFrom(refs [][]Object, minDR float64) Predicate[Jet] {
	return func(i int, ev *Event, j *Jet) bool {
		for _, r := range refs[i] {
			if dr, ok := DeltaR(j, r); ok && dr <= minDR {
				return false
			}
		}
		return true
	}
}

// MatchedTo keeps jets within maxDR of every reference object of the same event.
// An event without reference objects matches nothing.
func MatchedTo(refs [][]Object, maxDR float64) Predicate[Jet] {
	return func(i int, ev *Event, j *Jet) bool {
		found := false
		for _, r := range refs[i] {
			dr, ok := DeltaR(j, r)
			if !ok {
				continue
			}
			if dr > maxDR {
				return false
			}
			found = true
		}
		return found
	}
}

// Singletons wraps one object per event into a ragged collection.
func Singletons(objs []Object) [][]Object {
	out := make([][]Object, len(objs))
	for i, o := range objs {
		out[i] = []Object{o}
	}
	return out
}
