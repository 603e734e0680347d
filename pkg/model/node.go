package model

// NodeKind discriminates the three classification levels in the unified
// tree node. Keeping this a closed enum (with exhaustive switches at the
// few dispatch points) is what lets the compiler catch a future fourth
// level instead of scattered string comparisons.
type NodeKind int

const (
	KindCategory NodeKind = iota
	KindSubCategory
	KindItemGroup
)

// String returns the lowercase identifier used in keys and debug output.
func (k NodeKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindSubCategory:
		return "subcategory"
	case KindItemGroup:
		return "itemgroup"
	default:
		return "unknown"
	}
}

// Label returns the human-readable name for dialogs and confirmations.
func (k NodeKind) Label() string {
	switch k {
	case KindCategory:
		return "Category"
	case KindSubCategory:
		return "Subcategory"
	case KindItemGroup:
		return "Item Group"
	default:
		return "Unknown"
	}
}

// ChildKind returns the kind created under a node of this kind, and false
// for the leaf level.
func (k NodeKind) ChildKind() (NodeKind, bool) {
	switch k {
	case KindCategory:
		return KindSubCategory, true
	case KindSubCategory:
		return KindItemGroup, true
	default:
		return 0, false
	}
}

// CanHaveChildren reports whether "add child" is offered for this kind.
func (k NodeKind) CanHaveChildren() bool {
	_, ok := k.ChildKind()
	return ok
}

// CanHaveChildren reports whether "add child" is offered for this node.
func (n *Node) CanHaveChildren() bool {
	return n.Kind.CanHaveChildren()
}

// Node is the unified in-memory representation of any classification entity,
// used only for tree display. Nodes are rebuilt from the flat collections on
// every data change; they carry no identity of their own.
type Node struct {
	Kind NodeKind
	ClassBase

	// ParentID is the referenced category id for subcategories and the
	// referenced subcategory id for item groups; empty for categories.
	ParentID string

	// ItemCount is populated for item groups only.
	ItemCount int

	Children []*Node
	Depth    int
}

// Key returns the expansion-map key. IDs are only unique per kind, so the
// kind is part of the key.
func (n *Node) Key() string {
	return n.Kind.String() + ":" + n.ID
}

// CategoryNode builds a Node from a Category.
func CategoryNode(c Category) *Node {
	return &Node{Kind: KindCategory, ClassBase: c.ClassBase}
}

// SubCategoryNode builds a Node from a SubCategory.
func SubCategoryNode(s SubCategory) *Node {
	return &Node{Kind: KindSubCategory, ClassBase: s.ClassBase, ParentID: s.ProductCategoryID, Depth: 1}
}

// ItemGroupNode builds a Node from an ItemGroup.
func ItemGroupNode(g ItemGroup) *Node {
	return &Node{Kind: KindItemGroup, ClassBase: g.ClassBase, ParentID: g.ProductSubCategoryID, ItemCount: g.ItemCount, Depth: 2}
}
