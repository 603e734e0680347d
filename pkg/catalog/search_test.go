package catalog

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

func TestMatchesFields(t *testing.T) {
	n := &model.Node{ClassBase: model.ClassBase{
		Code:        "SOFT",
		Name:        "Soft Drinks",
		Description: "Carbonated and still",
	}}

	cases := []struct {
		query string
		want  bool
	}{
		{"soft", true},      // code, case-insensitive
		{"drinks", true},    // name
		{"carbonat", true},  // description
		{"SOFTSoft", false}, // no cross-field concatenation
		{"espresso", false}, // absent
		{"", false},         // empty query never matches
	}
	for _, tc := range cases {
		if got := Matches(n, tc.query); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestMatchesEmptyDescription(t *testing.T) {
	n := &model.Node{ClassBase: model.ClassBase{Code: "A", Name: "B"}}
	if Matches(n, "carbonated") {
		t.Error("empty description must never match")
	}
}

func TestFilterTreeEmptyQueryReturnsSameTree(t *testing.T) {
	roots := sampleRoots(t)
	res := FilterTree(roots, "   ")
	if len(res.Roots) != len(roots) {
		t.Fatalf("expected unchanged roots, got %d", len(res.Roots))
	}
	for i := range roots {
		if res.Roots[i] != roots[i] {
			t.Errorf("root %d was copied on empty query", i)
		}
	}
	if len(res.AutoExpand) != 0 {
		t.Errorf("empty query must yield empty auto-expand, got %v", res.AutoExpand)
	}
}

func TestFilterTreeLeafMatchKeepsAncestorChain(t *testing.T) {
	roots := sampleRoots(t)
	res := FilterTree(roots, "cola")

	if len(res.Roots) != 1 || res.Roots[0].Code != "BEV" {
		t.Fatalf("expected only BEV retained, got %d roots", len(res.Roots))
	}
	bev := res.Roots[0]
	if len(bev.Children) != 1 || bev.Children[0].Code != "SOFT" {
		t.Fatalf("expected only SOFT under BEV, got %+v", bev.Children)
	}
	soft := bev.Children[0]
	if len(soft.Children) != 1 || soft.Children[0].Code != "COLA" {
		t.Fatalf("expected only COLA under SOFT, got %+v", soft.Children)
	}

	// Both ancestors owe their retention to the match and must auto-expand.
	if !res.AutoExpand["category:c1"] || !res.AutoExpand["subcategory:s1"] {
		t.Errorf("ancestors not auto-expanded: %v", res.AutoExpand)
	}
}

func TestFilterTreeInteriorMatchKeepsSubtree(t *testing.T) {
	roots := sampleRoots(t)
	res := FilterTree(roots, "soft")

	if len(res.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(res.Roots))
	}
	soft := res.Roots[0].Children[0]
	// A matching subcategory keeps all its item groups, match or not.
	if len(soft.Children) != 2 {
		t.Errorf("self-matched subcategory lost children: %+v", soft.Children)
	}
}

func TestFilterTreeNoMatches(t *testing.T) {
	roots := sampleRoots(t)
	res := FilterTree(roots, "zzz-nothing")
	if len(res.Roots) != 0 {
		t.Errorf("expected empty result, got %d roots", len(res.Roots))
	}
}

func TestFilterTreeDoesNotMutateInput(t *testing.T) {
	roots := sampleRoots(t)
	before := CountNodes(roots)

	FilterTree(roots, "cola")

	if CountNodes(roots) != before {
		t.Error("input tree was mutated by filtering")
	}
	if len(roots[0].Children[0].Children) != 2 {
		t.Error("input child slice was reduced in place")
	}
}

// genCollections draws a random but referentially-consistent catalog. A
// slice of the parent ids is sampled for each child so every generated
// entity resolves; orphan behavior has its own deterministic tests.
func genCollections(t *rapid.T) model.Collections {
	word := rapid.StringMatching(`[a-z]{2,8}`)

	nCats := rapid.IntRange(1, 5).Draw(t, "nCats")
	var cols model.Collections
	for i := 0; i < nCats; i++ {
		cols.Categories = append(cols.Categories, model.Category{ClassBase: model.ClassBase{
			ID:   fmt.Sprintf("c%d", i),
			Code: word.Draw(t, "catCode"),
			Name: word.Draw(t, "catName"),
		}})
	}

	nSubs := rapid.IntRange(0, 8).Draw(t, "nSubs")
	for i := 0; i < nSubs; i++ {
		parent := rapid.IntRange(0, nCats-1).Draw(t, "subParent")
		cols.SubCategories = append(cols.SubCategories, model.SubCategory{
			ClassBase: model.ClassBase{
				ID:          fmt.Sprintf("s%d", i),
				Code:        word.Draw(t, "subCode"),
				Name:        word.Draw(t, "subName"),
				Description: word.Draw(t, "subDesc"),
			},
			ProductCategoryID: fmt.Sprintf("c%d", parent),
		})
	}

	nGroups := rapid.IntRange(0, 12).Draw(t, "nGroups")
	for i := 0; i < nGroups; i++ {
		if nSubs == 0 {
			break
		}
		parent := rapid.IntRange(0, nSubs-1).Draw(t, "groupParent")
		cols.ItemGroups = append(cols.ItemGroups, model.ItemGroup{
			ClassBase: model.ClassBase{
				ID:   fmt.Sprintf("g%d", i),
				Code: word.Draw(t, "groupCode"),
				Name: word.Draw(t, "groupName"),
			},
			ProductSubCategoryID: fmt.Sprintf("s%d", parent),
		})
	}

	return cols
}

// Every node retained by a filter matches the query itself, has a descendant
// that does, or sits inside the full subtree kept under a self-matched
// ancestor.
func TestFilterRetentionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		roots := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups).Roots
		query := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "query")

		res := FilterTree(roots, query)

		var check func(n *model.Node, underMatch bool)
		check = func(n *model.Node, underMatch bool) {
			if !underMatch && !subtreeMatches(n, query) {
				t.Fatalf("retained node %s has no match in its subtree for %q", n.Key(), query)
			}
			for _, c := range n.Children {
				check(c, underMatch || Matches(n, query))
			}
		}
		for _, r := range res.Roots {
			check(r, false)
		}
	})
}

func subtreeMatches(n *model.Node, query string) bool {
	if Matches(n, query) {
		return true
	}
	for _, c := range n.Children {
		if subtreeMatches(c, query) {
			return true
		}
	}
	return false
}

// Every auto-expand key belongs to a retained node, and every retained
// interior node kept only for its descendants is auto-expanded. Nodes inside
// the full subtree of a self-matched ancestor are exempt since they were
// retained wholesale, not for a descendant match.
func TestFilterAutoExpandProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		roots := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups).Roots
		query := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "query")

		res := FilterTree(roots, query)

		retained := make(map[string]bool)
		var walk func(n *model.Node, underMatch bool)
		walk = func(n *model.Node, underMatch bool) {
			retained[n.Key()] = true
			if !underMatch && len(n.Children) > 0 && !Matches(n, query) && !res.AutoExpand[n.Key()] {
				t.Fatalf("interior node %s retained for descendants but not auto-expanded", n.Key())
			}
			for _, c := range n.Children {
				walk(c, underMatch || Matches(n, query))
			}
		}
		for _, r := range res.Roots {
			walk(r, false)
		}

		for key := range res.AutoExpand {
			if !retained[key] {
				t.Fatalf("auto-expand key %s not in retained tree", key)
			}
		}
	})
}

// Filtering never changes a node's field values, only which nodes appear.
func TestFilterPreservesNodeContents(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		roots := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups).Roots

		byKey := make(map[string]model.ClassBase)
		for _, r := range roots {
			var walk func(n *model.Node)
			walk = func(n *model.Node) {
				byKey[n.Key()] = n.ClassBase
				for _, c := range n.Children {
					walk(c)
				}
			}
			walk(r)
		}

		query := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "query")
		res := FilterTree(roots, query)

		for _, r := range res.Roots {
			var walk func(n *model.Node)
			walk = func(n *model.Node) {
				if orig, ok := byKey[n.Key()]; !ok || orig != n.ClassBase {
					t.Fatalf("node %s contents changed by filtering", n.Key())
				}
				for _, c := range n.Children {
					walk(c)
				}
			}
			walk(r)
		}
	})
}

// Case-insensitivity: a query and its uppercase form retain the same keys.
func TestFilterCaseInsensitiveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		roots := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups).Roots
		query := rapid.StringMatching(`[a-z]{1,4}`).Draw(t, "query")

		lower := FilterTree(roots, query)
		upper := FilterTree(roots, strings.ToUpper(query))

		lk := Keys(lower.Roots)
		uk := Keys(upper.Roots)
		if len(lk) != len(uk) {
			t.Fatalf("case changed result size: %d vs %d", len(lk), len(uk))
		}
		for i := range lk {
			if lk[i] != uk[i] {
				t.Fatalf("case changed retained keys: %v vs %v", lk, uk)
			}
		}
	})
}
