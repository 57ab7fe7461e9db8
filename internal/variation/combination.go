package variation

import (
	"fmt"
	"iter"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
)

// Combination holds one option id per participating type, in type order. The
// order is for display only; identity is Set().
type Combination []int64

func (c Combination) Set() model.OptionIDs {
	return model.NewOptionIDs(c...)
}

// dimensions snapshots the option ids of every type that has at least one option.
func dimensions(types []model.VariationType) [][]int64 {
	dims := make([][]int64, 0, len(types))
	for i := range types {
		if len(types[i].Options) == 0 {
			continue
		}
		dims = append(dims, types[i].OptionIDs())
	}
	return dims
}

// Combinations yields the cartesian product of the types' options, first type
// as the outermost loop. Types without options are skipped; when no type has
// options nothing is yielded. The sequence can be ranged over any number of times.
func Combinations(types []model.VariationType) iter.Seq[Combination] {
	dims := dimensions(types)
	return func(yield func(Combination) bool) {
		if len(dims) == 0 {
			return
		}
		idx := make([]int, len(dims))
		for {
			c := make(Combination, len(dims))
			for i, d := range dims {
				c[i] = d[idx[i]]
			}
			if !yield(c) {
				return
			}

			// Odometer step: the last dimension spins fastest.
			i := len(dims) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(dims[i]) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// CombinationCount is the number of combinations Combinations will yield.
func CombinationCount(types []model.VariationType) int {
	dims := dimensions(types)
	if len(dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		n *= len(d)
	}
	return n
}

// ValidateTypes rejects option ids shared between types. Matching works on
// id sets, so a shared id would silently merge unrelated combinations.
func ValidateTypes(types []model.VariationType) error {
	verr := &apperror.ValidationError{}
	owner := make(map[int64]int)
	for ti := range types {
		for oi, o := range types[ti].Options {
			if prev, ok := owner[o.ID]; ok && prev != ti {
				verr.Add(fmt.Sprintf("types[%d].options[%d]", ti, oi), "validation.shared_option",
					map[string]any{"Value": o.ID})
				continue
			}
			owner[o.ID] = ti
		}
	}
	return verr.OrNil()
}

// optionNames maps option id to display name across all types.
func optionNames(types []model.VariationType) map[int64]string {
	names := make(map[int64]string)
	for _, t := range types {
		for _, o := range t.Options {
			names[o.ID] = o.Name
		}
	}
	return names
}
