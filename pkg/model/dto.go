package model

// Payloads are the request bodies dispatched to the Carmen API. Each kind has
// its own shape; a payload never carries the parent-link field of another
// kind, so the builders below are the single place the union is flattened
// back out.

// CategoryPayload is the create/update body for a category.
type CategoryPayload struct {
	ClassBase
	// IsEditType marks an update that changed the recipe/sold flags, so the
	// backend can reconcile dependent records (recipes, menu items).
	IsEditType bool `json:"is_edit_type,omitempty"`
}

// SubCategoryPayload is the create/update body for a subcategory.
type SubCategoryPayload struct {
	ClassBase
	ProductCategoryID string `json:"product_category_id"`
	IsEditType        bool   `json:"is_edit_type,omitempty"`
}

// ItemGroupPayload is the create/update body for an item group.
type ItemGroupPayload struct {
	ClassBase
	ProductSubCategoryID string `json:"product_subcategory_id"`
	IsEditType           bool   `json:"is_edit_type,omitempty"`
}

// CategoryPayloadFrom extracts the category-shaped payload from a node.
func CategoryPayloadFrom(n *Node, isEditType bool) CategoryPayload {
	return CategoryPayload{ClassBase: n.ClassBase, IsEditType: isEditType}
}

// SubCategoryPayloadFrom extracts the subcategory-shaped payload from a node.
// The parent link comes from the node's ParentID.
func SubCategoryPayloadFrom(n *Node, isEditType bool) SubCategoryPayload {
	return SubCategoryPayload{
		ClassBase:         n.ClassBase,
		ProductCategoryID: n.ParentID,
		IsEditType:        isEditType,
	}
}

// ItemGroupPayloadFrom extracts the item-group-shaped payload from a node.
func ItemGroupPayloadFrom(n *Node, isEditType bool) ItemGroupPayload {
	return ItemGroupPayload{
		ClassBase:            n.ClassBase,
		ProductSubCategoryID: n.ParentID,
		IsEditType:           isEditType,
	}
}

// InheritDefaults returns a blank ClassBase pre-filled with the numeric,
// boolean and tax fields of the parent. This is a one-time copy at create
// time, not a live link; the created entity keeps its own values afterwards.
func InheritDefaults(parent *Node) ClassBase {
	if parent == nil {
		return ClassBase{IsActive: true}
	}
	return ClassBase{
		IsActive:            true,
		PriceDeviationLimit: parent.PriceDeviationLimit,
		QtyDeviationLimit:   parent.QtyDeviationLimit,
		UsedInRecipe:        parent.UsedInRecipe,
		SoldDirectly:        parent.SoldDirectly,
		TaxProfileID:        parent.TaxProfileID,
		TaxProfileName:      parent.TaxProfileName,
		TaxRate:             parent.TaxRate,
	}
}
