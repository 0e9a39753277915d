package models

import "github.com/shopspring/decimal"

// Product is a local catalog entry. Product names are unique
// case-insensitively: bulk import matches on the lowercased name and
// updates the price instead of inserting a duplicate.
type Product struct {
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Name is the product name, non-empty.
	Name string `json:"name" gorm:"column:name;not null;index"`
	// Price is the unit price, strictly positive.
	Price       decimal.Decimal `json:"price" gorm:"column:price;type:numeric"`
	Description string          `json:"description,omitempty" gorm:"column:description"`
	SKU         string          `json:"sku,omitempty" gorm:"column:sku"`
	ImageURL    string          `json:"image_url,omitempty" gorm:"column:image_url"`
}

// ImportLineError describes one rejected line of a bulk product import.
type ImportLineError struct {
	// Line is the 1-based line number within the imported blob.
	Line int `json:"line"`
	// Message explains why the line was rejected.
	Message string `json:"message"`
	// Text is the original line verbatim.
	Text string `json:"text"`
}

// ImportResult summarizes a bulk product import. Line-level problems are
// collected here rather than failing the import; valid lines are applied
// regardless.
type ImportResult struct {
	Added   int               `json:"added"`
	Updated int               `json:"updated"`
	Errors  []ImportLineError `json:"errors"`
}
