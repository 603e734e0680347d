package catalog

import (
	"testing"

	"github.com/carmensoftware/carmen-catalog/pkg/model"
)

func base(id, code, name string) model.ClassBase {
	return model.ClassBase{ID: id, Code: code, Name: name, IsActive: true}
}

// sampleCollections builds a small catalog:
//
//	BEV Beverages
//	  SOFT Soft Drinks
//	    COLA Colas (3 items)
//	    JUICE Juices
//	  HOT Hot Drinks
//	FOOD Food
//	  SNACK Snacks
func sampleCollections() model.Collections {
	return model.Collections{
		Categories: []model.Category{
			{ClassBase: base("c1", "BEV", "Beverages")},
			{ClassBase: base("c2", "FOOD", "Food")},
		},
		SubCategories: []model.SubCategory{
			{ClassBase: base("s1", "SOFT", "Soft Drinks"), ProductCategoryID: "c1"},
			{ClassBase: base("s2", "HOT", "Hot Drinks"), ProductCategoryID: "c1"},
			{ClassBase: base("s3", "SNACK", "Snacks"), ProductCategoryID: "c2"},
		},
		ItemGroups: []model.ItemGroup{
			{ClassBase: base("g1", "COLA", "Colas"), ProductSubCategoryID: "s1", ItemCount: 3},
			{ClassBase: base("g2", "JUICE", "Juices"), ProductSubCategoryID: "s1"},
		},
	}
}

func sampleRoots(t *testing.T) []*model.Node {
	t.Helper()
	cols := sampleCollections()
	res := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups)
	if res.Orphans != 0 {
		t.Fatalf("sample data produced %d orphans", res.Orphans)
	}
	return res.Roots
}

func TestBuildTreeStructure(t *testing.T) {
	roots := sampleRoots(t)

	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	bev := roots[0]
	if bev.Code != "BEV" || len(bev.Children) != 2 {
		t.Fatalf("unexpected first root: %s with %d children", bev.Code, len(bev.Children))
	}
	soft := bev.Children[0]
	if soft.Code != "SOFT" || soft.ParentID != "c1" {
		t.Errorf("unexpected first subcategory: %+v", soft.ClassBase)
	}
	if len(soft.Children) != 2 || soft.Children[0].Code != "COLA" {
		t.Errorf("item groups not attached in input order: %+v", soft.Children)
	}
	if soft.Children[0].ItemCount != 3 {
		t.Errorf("item count lost: %d", soft.Children[0].ItemCount)
	}
	if roots[1].Code != "FOOD" || len(roots[1].Children) != 1 {
		t.Errorf("unexpected second root: %+v", roots[1].ClassBase)
	}
}

func TestBuildTreePreservesInputOrder(t *testing.T) {
	cols := sampleCollections()
	// Reverse category order; the tree must follow.
	cols.Categories[0], cols.Categories[1] = cols.Categories[1], cols.Categories[0]

	res := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups)
	if res.Roots[0].Code != "FOOD" || res.Roots[1].Code != "BEV" {
		t.Errorf("root order does not follow input: %s, %s", res.Roots[0].Code, res.Roots[1].Code)
	}
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	cols := sampleCollections()
	cols.SubCategories = append(cols.SubCategories, model.SubCategory{
		ClassBase:         base("s9", "LOST", "Orphaned Sub"),
		ProductCategoryID: "missing",
	})
	cols.ItemGroups = append(cols.ItemGroups, model.ItemGroup{
		ClassBase:            base("g9", "GONE", "Orphaned Group"),
		ProductSubCategoryID: "nowhere",
	})

	res := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups)
	if res.Orphans != 2 {
		t.Errorf("expected 2 orphans, got %d", res.Orphans)
	}
	for _, key := range Keys(res.Roots) {
		if key == "subcategory:s9" || key == "itemgroup:g9" {
			t.Errorf("orphan %s leaked into the tree", key)
		}
	}
}

// An item group whose subcategory is itself an orphan counts as orphaned
// too: its parent id resolves to a known subcategory, but that subcategory
// never made it into the tree. The count only tracks direct dangling
// references; the group still cannot appear because its parent is absent.
func TestBuildTreeOrphanChain(t *testing.T) {
	cols := sampleCollections()
	cols.SubCategories = append(cols.SubCategories, model.SubCategory{
		ClassBase:         base("s9", "LOST", "Orphaned Sub"),
		ProductCategoryID: "missing",
	})
	cols.ItemGroups = append(cols.ItemGroups, model.ItemGroup{
		ClassBase:            base("g9", "CHAIN", "Group Under Orphan"),
		ProductSubCategoryID: "s9",
	})

	res := BuildTree(cols.Categories, cols.SubCategories, cols.ItemGroups)
	for _, key := range Keys(res.Roots) {
		if key == "itemgroup:g9" {
			t.Error("group under orphaned subcategory leaked into the tree")
		}
	}
}

func TestBuildTreeEmptyInput(t *testing.T) {
	res := BuildTree(nil, nil, nil)
	if len(res.Roots) != 0 || res.Orphans != 0 {
		t.Errorf("empty input must yield empty tree, got %+v", res)
	}
}

func TestKeysCoversAllLevels(t *testing.T) {
	roots := sampleRoots(t)
	keys := Keys(roots)
	if len(keys) != 7 {
		t.Fatalf("expected 7 keys, got %d: %v", len(keys), keys)
	}
	want := map[string]bool{
		"category:c1": true, "category:c2": true,
		"subcategory:s1": true, "subcategory:s2": true, "subcategory:s3": true,
		"itemgroup:g1": true, "itemgroup:g2": true,
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %s", k)
		}
	}
	if CountNodes(roots) != 7 {
		t.Errorf("CountNodes = %d", CountNodes(roots))
	}
}
