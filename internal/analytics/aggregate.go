package analytics

import "sort"

// AccumulatorKind selects how an accumulator folds rows.
type AccumulatorKind int

const (
	AccCount AccumulatorKind = iota
	AccSum
	AccAvg
	AccMin
	AccMax
	AccDistinct
)

// Accumulator declares one named fold over rows of type T. Numeric kinds read
// Value; AccDistinct reads Label. A nil Value on AccCount counts every row,
// otherwise only rows where the extractor reports ok.
type Accumulator[T any] struct {
	Name  string
	Kind  AccumulatorKind
	Value func(T) (float64, bool)
	Label func(T) (string, bool)
}

// AggValue is the resolved result of one accumulator within one group. A
// group with no contributing rows resolves to the identity: zero count, zero
// sum, nil extrema, empty distinct set.
type AggValue struct {
	Count    int64    `json:"count"`
	Sum      float64  `json:"sum"`
	Avg      float64  `json:"avg"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Distinct []string `json:"distinct,omitempty"`
}

// RawAggregate is the output of one aggregation pass: per-group accumulator
// values plus the number of rows scanned. Percentage-shaped metrics are never
// computed here; derivation happens downstream.
type RawAggregate struct {
	Rows   int64
	Groups map[string]map[string]AggValue
}

// Value returns the named accumulator within a group, resolving to the
// identity value when the group or accumulator never materialized. Empty
// record sets therefore aggregate without error.
func (ra RawAggregate) Value(group, name string) AggValue {
	if g, ok := ra.Groups[group]; ok {
		if v, ok := g[name]; ok {
			return v
		}
	}
	return AggValue{}
}

// Counts flattens one named count accumulator into a group -> count map,
// the shape distribution endpoints serialize directly.
func (ra RawAggregate) Counts(name string) map[string]int64 {
	out := make(map[string]int64, len(ra.Groups))
	for g, accs := range ra.Groups {
		out[g] = accs[name].Count
	}
	return out
}

// GroupKeys returns the group keys in lexical order.
func (ra RawAggregate) GroupKeys() []string {
	keys := make([]string, 0, len(ra.Groups))
	for k := range ra.Groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type accState struct {
	count    int64
	sum      float64
	min      float64
	max      float64
	seen     bool
	distinct map[string]struct{}
}

// Aggregate executes one grouped pass over items. groupKey nil folds
// everything into a single group under the empty key. The pass never fails:
// zero items yield a RawAggregate whose every lookup resolves to identity
// values.
func Aggregate[T any](items []T, groupKey func(T) string, accs []Accumulator[T]) RawAggregate {
	groups := map[string]map[string]*accState{}

	for _, it := range items {
		key := ""
		if groupKey != nil {
			key = groupKey(it)
		}
		states, ok := groups[key]
		if !ok {
			states = make(map[string]*accState, len(accs))
			for _, a := range accs {
				states[a.Name] = &accState{}
			}
			groups[key] = states
		}
		for _, a := range accs {
			st := states[a.Name]
			switch a.Kind {
			case AccCount:
				if a.Value == nil {
					st.count++
				} else if _, ok := a.Value(it); ok {
					st.count++
				}
			case AccSum, AccAvg, AccMin, AccMax:
				v, ok := a.Value(it)
				if !ok {
					continue
				}
				st.count++
				st.sum += v
				if !st.seen || v < st.min {
					st.min = v
				}
				if !st.seen || v > st.max {
					st.max = v
				}
				st.seen = true
			case AccDistinct:
				l, ok := a.Label(it)
				if !ok {
					continue
				}
				if st.distinct == nil {
					st.distinct = map[string]struct{}{}
				}
				st.distinct[l] = struct{}{}
			}
		}
	}

	out := RawAggregate{Rows: int64(len(items)), Groups: make(map[string]map[string]AggValue, len(groups))}
	for key, states := range groups {
		resolved := make(map[string]AggValue, len(states))
		for name, st := range states {
			v := AggValue{Count: st.count, Sum: st.sum}
			if st.count > 0 {
				v.Avg = st.sum / float64(st.count)
			}
			if st.seen {
				mn, mx := st.min, st.max
				v.Min, v.Max = &mn, &mx
			}
			if len(st.distinct) > 0 {
				v.Distinct = make([]string, 0, len(st.distinct))
				for d := range st.distinct {
					v.Distinct = append(v.Distinct, d)
				}
				sort.Strings(v.Distinct)
			}
			resolved[name] = v
		}
		out.Groups[key] = resolved
	}
	return out
}

// ParentChild is one fan-out row: a parent record joined with one of its
// embedded sub-records, or with Sub nil when the parent has none.
type ParentChild[P, C any] struct {
	Parent P
	Sub    *C
}

// FanOut unwinds each parent's embedded sub-record list into one row per
// sub-record. Parents with zero sub-records are preserved as a single row
// with a nil Sub so sub-record accumulators resolve to zero rather than the
// parent silently vanishing from the result set.
func FanOut[P, C any](parents []P, subs func(P) []C) []ParentChild[P, C] {
	out := make([]ParentChild[P, C], 0, len(parents))
	for _, p := range parents {
		children := subs(p)
		if len(children) == 0 {
			out = append(out, ParentChild[P, C]{Parent: p})
			continue
		}
		for i := range children {
			out = append(out, ParentChild[P, C]{Parent: p, Sub: &children[i]})
		}
	}
	return out
}
