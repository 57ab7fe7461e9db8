package category

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fekuna/omnipos-variation-service/internal/model"
)

const PathSeparator = " > "

// FlattenTree lists every category depth first with its full path, e.g.
// "Clothing > Shirts" at level 1. Siblings are ordered by sort order, then
// name. A category whose parent is missing is a root; a cycle is broken at
// its first member in sibling order. The traversal is iterative.
func FlattenTree(categories []model.Category) []model.CategoryPath {
	byID := make(map[int64]*model.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	children := make(map[int64][]int64, len(categories))
	var roots []int64
	for _, c := range categories {
		if c.ParentID == nil || *c.ParentID == c.ID {
			roots = append(roots, c.ID)
			continue
		}
		if _, ok := byID[*c.ParentID]; !ok {
			roots = append(roots, c.ID)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c.ID)
	}

	less := func(a, b int64) int {
		ca, cb := byID[a], byID[b]
		return cmp.Or(
			cmp.Compare(ca.SortOrder, cb.SortOrder),
			strings.Compare(ca.Name, cb.Name),
			cmp.Compare(a, b),
		)
	}
	slices.SortFunc(roots, less)
	for id := range children {
		slices.SortFunc(children[id], less)
	}

	type frame struct {
		id    int64
		level int
		path  string
	}

	out := make([]model.CategoryPath, 0, len(categories))
	visited := make(map[int64]bool, len(categories))

	walk := func(root int64) {
		stack := []frame{{id: root, path: byID[root].Name}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[f.id] {
				continue
			}
			visited[f.id] = true
			out = append(out, model.CategoryPath{ID: f.id, Path: f.path, Level: f.level})

			kids := children[f.id]
			for i := len(kids) - 1; i >= 0; i-- {
				if !visited[kids[i]] {
					stack = append(stack, frame{
						id:    kids[i],
						level: f.level + 1,
						path:  f.path + PathSeparator + byID[kids[i]].Name,
					})
				}
			}
		}
	}

	for _, id := range roots {
		walk(id)
	}

	// Whatever is left hangs off a cycle with no way in from a root.
	var rest []int64
	for _, c := range categories {
		if !visited[c.ID] {
			rest = append(rest, c.ID)
		}
	}
	slices.SortFunc(rest, less)
	for _, id := range rest {
		if !visited[id] {
			walk(id)
		}
	}

	return out
}
