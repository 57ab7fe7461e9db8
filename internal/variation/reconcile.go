package variation

import (
	"slices"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/shopspring/decimal"
)

// GridRow is one line of the admin variation grid. Rows without VariationID
// are unsaved placeholders.
type GridRow struct {
	Combination Combination         `json:"combination"`
	OptionIDs   model.OptionIDs     `json:"option_ids"`
	Labels      []string            `json:"labels"`
	VariationID *int64              `json:"id"`
	Price       decimal.NullDecimal `json:"price"`
	Quantity    *int64              `json:"quantity"`
}

func (r GridRow) Persisted() bool { return r.VariationID != nil }

// Grid is the reconciled editable grid plus the persisted rows that no longer
// correspond to any combination and will be deleted on the next save.
type Grid struct {
	Rows    []GridRow         `json:"rows"`
	Orphans []model.Variation `json:"orphans"`
}

// existingIndex splits persisted rows into the row owning each reachable
// combination and everything else. Malformed rows, rows for unreachable
// combinations and duplicates of an already-owned set are orphans.
type existingIndex struct {
	byKey   map[string]*model.Variation
	orphans []model.Variation
}

func indexExisting(generated map[string]Combination, existing []model.Variation) existingIndex {
	idx := existingIndex{byKey: make(map[string]*model.Variation, len(existing))}
	for i := range existing {
		v := &existing[i]
		if v.Malformed {
			idx.orphans = append(idx.orphans, *v)
			continue
		}
		key := v.OptionIDs.Key()
		if _, reachable := generated[key]; !reachable {
			idx.orphans = append(idx.orphans, *v)
			continue
		}
		if _, taken := idx.byKey[key]; taken {
			idx.orphans = append(idx.orphans, *v)
			continue
		}
		idx.byKey[key] = v
	}
	return idx
}

func generatedByKey(types []model.VariationType) (map[string]Combination, []Combination) {
	byKey := make(map[string]Combination)
	var ordered []Combination
	for c := range Combinations(types) {
		byKey[c.Set().Key()] = c
		ordered = append(ordered, c)
	}
	return byKey, ordered
}

// Reconcile merges every generated combination with the persisted rows. Price
// and quantity of a row whose set still exists are carried forward with its
// id; new combinations become placeholders. The result depends only on its
// inputs, so reconciling again without changes yields the same grid.
func Reconcile(types []model.VariationType, existing []model.Variation) *Grid {
	generated, ordered := generatedByKey(types)
	idx := indexExisting(generated, existing)
	names := optionNames(types)

	grid := &Grid{Rows: make([]GridRow, 0, len(ordered)), Orphans: idx.orphans}
	for _, c := range ordered {
		set := c.Set()
		labels := make([]string, len(c))
		for i, id := range c {
			labels[i] = names[id]
		}
		row := GridRow{Combination: c, OptionIDs: set, Labels: labels}
		if v, ok := idx.byKey[set.Key()]; ok {
			id := v.ID
			row.VariationID = &id
			row.Price = v.Price
			row.Quantity = v.Quantity
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// SubmittedRow is one grid line as posted by the admin, already parsed.
type SubmittedRow struct {
	ID        *int64
	OptionIDs model.OptionIDs
	Price     decimal.NullDecimal
	Quantity  *int64
}

// SavePlan is the set of writes one grid save performs. ApplySavePlan runs it
// in a single transaction.
type SavePlan struct {
	ProductID int64
	Create    []model.Variation
	Update    []model.Variation
	Delete    []int64

	// Dropped rows named a combination that is no longer reachable, typically
	// stale client state after an option was removed. They are not errors.
	Dropped []SubmittedRow
	// Unsaved counts new combinations left as placeholders because price or
	// quantity was missing.
	Unsaved int
	// Unchanged counts persisted rows submitted with identical values.
	Unchanged int
}

func (p *SavePlan) IsEmpty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// PlanSave diffs a full grid submission against the persisted rows:
//   - a row whose set matches a persisted row updates it in place
//   - a new row with both price and quantity is created
//   - a new row missing either stays an unsaved placeholder
//   - persisted rows absent from the submission, and all orphans, are deleted
//   - rows for unreachable combinations are dropped
//
// A set submitted twice is a validation error and nothing is planned.
func PlanSave(productID int64, types []model.VariationType, existing []model.Variation, rows []SubmittedRow) (*SavePlan, error) {
	generated, _ := generatedByKey(types)
	idx := indexExisting(generated, existing)

	plan := &SavePlan{ProductID: productID}
	verr := &apperror.ValidationError{}
	submitted := make(map[string]bool, len(rows))

	for i, row := range rows {
		key := row.OptionIDs.Key()
		if _, ok := generated[key]; !ok {
			plan.Dropped = append(plan.Dropped, row)
			continue
		}
		if submitted[key] {
			verr.Add(rowField(i, "option_ids"), "validation.duplicate_combination", nil)
			continue
		}
		submitted[key] = true

		if current, ok := idx.byKey[key]; ok {
			if sameValues(current, row) {
				plan.Unchanged++
				continue
			}
			updated := *current
			updated.Price = row.Price
			updated.Quantity = row.Quantity
			plan.Update = append(plan.Update, updated)
			continue
		}

		if !row.Price.Valid || row.Quantity == nil {
			plan.Unsaved++
			continue
		}
		plan.Create = append(plan.Create, model.Variation{
			ProductID: productID,
			OptionIDs: row.OptionIDs,
			OptionKey: key,
			Price:     row.Price,
			Quantity:  row.Quantity,
		})
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	for key, v := range idx.byKey {
		if !submitted[key] {
			plan.Delete = append(plan.Delete, v.ID)
		}
	}
	for _, v := range idx.orphans {
		plan.Delete = append(plan.Delete, v.ID)
	}
	slices.Sort(plan.Delete)

	return plan, nil
}

func sameValues(v *model.Variation, row SubmittedRow) bool {
	if v.Price.Valid != row.Price.Valid {
		return false
	}
	if v.Price.Valid && !v.Price.Decimal.Equal(row.Price.Decimal) {
		return false
	}
	if (v.Quantity == nil) != (row.Quantity == nil) {
		return false
	}
	return v.Quantity == nil || *v.Quantity == *row.Quantity
}
