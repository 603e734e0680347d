// Package model defines the Carmen product classification entities and the
// unified tree node used for display.
//
// The hierarchy has exactly three levels: Category → SubCategory → ItemGroup.
// The three entity structs mirror the Carmen API wire shape; Node is the
// in-memory union the tree view works with.
package model

import (
	"fmt"
	"strings"
)

// ClassBase holds the fields shared by all three classification levels.
// Deviation limits are percentages (0–100); recipe/sold flags and the tax
// profile are copied down as defaults when creating a child.
type ClassBase struct {
	ID                  string  `json:"id"`
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	IsActive            bool    `json:"is_active"`
	PriceDeviationLimit float64 `json:"price_deviation_limit"`
	QtyDeviationLimit   float64 `json:"qty_deviation_limit"`
	UsedInRecipe        bool    `json:"is_used_in_recipe"`
	SoldDirectly        bool    `json:"is_sold_directly"`
	TaxProfileID        string  `json:"tax_profile_id,omitempty"`
	TaxProfileName      string  `json:"tax_profile_name,omitempty"`
	TaxRate             float64 `json:"tax_rate,omitempty"`
}

// Category is the top classification level. It has no parent reference.
type Category struct {
	ClassBase
}

// SubCategory is the middle level; ProductCategoryID references its Category.
type SubCategory struct {
	ClassBase
	ProductCategoryID string `json:"product_category_id"`
}

// ItemGroup is the leaf level; ProductSubCategoryID references its
// SubCategory. ItemCount is display-only and maintained by the backend.
type ItemGroup struct {
	ClassBase
	ProductSubCategoryID string `json:"product_subcategory_id"`
	ItemCount            int    `json:"item_count,omitempty"`
}

// Collections bundles one fetch of the three flat source collections.
type Collections struct {
	Categories    []Category
	SubCategories []SubCategory
	ItemGroups    []ItemGroup
}

// Validate checks the locally-enforceable field rules shared by all three
// levels. It returns a field-name → message map; an empty map means valid.
// Dispatch to the API must never happen while this map is non-empty.
func (b ClassBase) Validate() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(b.Code) == "" {
		problems["code"] = "code is required"
	}
	if strings.TrimSpace(b.Name) == "" {
		problems["name"] = "name is required"
	}
	if b.PriceDeviationLimit < 0 || b.PriceDeviationLimit > 100 {
		problems["price_deviation_limit"] = "must be between 0 and 100"
	}
	if b.QtyDeviationLimit < 0 || b.QtyDeviationLimit > 100 {
		problems["qty_deviation_limit"] = "must be between 0 and 100"
	}
	if b.TaxRate != 0 && strings.TrimSpace(b.TaxProfileID) == "" {
		problems["tax_profile_id"] = "tax profile is required when a tax rate is set"
	}
	return problems
}

// DisplayLabel returns "CODE · Name" for list rendering.
func (b ClassBase) DisplayLabel() string {
	if b.Code == "" {
		return b.Name
	}
	return fmt.Sprintf("%s · %s", b.Code, b.Name)
}
