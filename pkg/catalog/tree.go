// Package catalog builds and filters the product classification tree.
//
// Everything here is pure: functions take the flat source collections (or an
// already-built tree) and return fresh values without mutating their inputs.
// The tree is derived, disposable state; the UI rebuilds it wholesale
// whenever any source collection changes.
package catalog

import (
	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// BuildResult is the outcome of one tree build. Orphans counts subcategories
// and item groups whose parent reference did not resolve; they are dropped
// from the tree rather than surfaced as errors, but the count goes to the
// debug log so backend data-integrity problems stay visible to developers.
type BuildResult struct {
	Roots   []*model.Node
	Orphans int
}

// BuildTree merges the three flat collections into a three-level forest.
// Output order follows input order at every level; no re-sorting happens.
// Subcategories referencing a missing category, and item groups referencing
// a missing subcategory, are excluded.
func BuildTree(cats []model.Category, subs []model.SubCategory, groups []model.ItemGroup) BuildResult {
	var res BuildResult

	groupsBySub := make(map[string][]*model.Node)
	for _, g := range groups {
		groupsBySub[g.ProductSubCategoryID] = append(groupsBySub[g.ProductSubCategoryID], model.ItemGroupNode(g))
	}

	subsByCat := make(map[string][]*model.Node)
	subIDs := make(map[string]bool, len(subs))
	for _, s := range subs {
		subIDs[s.ID] = true
		node := model.SubCategoryNode(s)
		node.Children = groupsBySub[s.ID]
		subsByCat[s.ProductCategoryID] = append(subsByCat[s.ProductCategoryID], node)
	}

	catIDs := make(map[string]bool, len(cats))
	for _, c := range cats {
		catIDs[c.ID] = true
		node := model.CategoryNode(c)
		node.Children = subsByCat[c.ID]
		res.Roots = append(res.Roots, node)
	}

	// Count what was dropped.
	for _, s := range subs {
		if !catIDs[s.ProductCategoryID] {
			res.Orphans++
		}
	}
	for _, g := range groups {
		if !subIDs[g.ProductSubCategoryID] {
			res.Orphans++
		}
	}

	return res
}

// Keys returns the expansion keys of every node in the forest, at all
// levels. Used by expand-all.
func Keys(roots []*model.Node) []string {
	var keys []string
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		keys = append(keys, n.Key())
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return keys
}

// CountNodes returns the total node count of the forest.
func CountNodes(roots []*model.Node) int {
	return len(Keys(roots))
}
