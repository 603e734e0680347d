package catalog

import (
	"strings"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

// FilterResult is the outcome of one search pass over the tree.
// AutoExpand holds the keys of every retained category and subcategory that
// owes its retention to a descendant match; while a query is active the view
// uses this map instead of the user's expansion state, so matches deep in
// the tree are revealed without touching what the user expanded by hand.
type FilterResult struct {
	Roots      []*model.Node
	AutoExpand map[string]bool
}

// Matches reports whether a single node matches the query: case-insensitive
// substring test against code, name and description. An empty description
// never matches.
func Matches(n *model.Node, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(n.Code), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Name), q) {
		return true
	}
	return n.Description != "" && strings.Contains(strings.ToLower(n.Description), q)
}

// FilterTree returns the subtree of roots visible for query, plus the
// auto-expand map. An empty query returns the unfiltered tree and an empty
// map. Retention rules:
//
//   - an item group is retained if it matches;
//   - a subcategory is retained if it matches (keeping all its item groups)
//     or if any of its item groups match (keeping only those);
//   - a category is retained if it matches (keeping all children), if any
//     retained subcategory sits under it, or if a directly-attached item
//     group matches.
//
// Input nodes are never mutated; retained nodes with reduced child sets are
// shallow copies.
func FilterTree(roots []*model.Node, query string) FilterResult {
	res := FilterResult{AutoExpand: make(map[string]bool)}
	if strings.TrimSpace(query) == "" {
		res.Roots = roots
		return res
	}

	for _, root := range roots {
		if kept := filterNode(root, query, res.AutoExpand); kept != nil {
			res.Roots = append(res.Roots, kept)
		}
	}
	return res
}

// filterNode applies the retention rules to one node, returning nil when the
// node is dropped. When the node is retained because of descendants, its key
// is recorded in autoExpand.
func filterNode(n *model.Node, query string, autoExpand map[string]bool) *model.Node {
	selfMatch := Matches(n, query)

	if len(n.Children) == 0 {
		if selfMatch {
			return n
		}
		return nil
	}

	var kept []*model.Node
	for _, child := range n.Children {
		if k := filterNode(child, query, autoExpand); k != nil {
			kept = append(kept, k)
		}
	}

	switch {
	case selfMatch:
		// Self-matched interior nodes keep their full subtree visible.
		if len(kept) > 0 {
			autoExpand[n.Key()] = true
		}
		return n
	case len(kept) > 0:
		autoExpand[n.Key()] = true
		clone := *n
		clone.Children = kept
		return &clone
	default:
		return nil
	}
}
