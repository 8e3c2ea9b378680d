package models

import "time"

// Item is a row of the shopping_list table.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	DateAdded time.Time `json:"date_added"`
	Checked   bool      `json:"checked"`
	Category  string    `json:"category"`
}

// NewItem is the insert payload. Nil fields are left out of the INSERT so the
// table's constraints and defaults decide; an empty string is a value.
type NewItem struct {
	Name      *string    `json:"name,omitempty"`
	Price     *string    `json:"price,omitempty"`
	DateAdded *time.Time `json:"date_added,omitempty"`
	Checked   *bool      `json:"checked,omitempty"`
	Category  *string    `json:"category,omitempty"`
}

// ItemFields replaces every non-key column of a row.
type ItemFields struct {
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	DateAdded time.Time `json:"date_added"`
	Checked   bool      `json:"checked"`
	Category  string    `json:"category"`
}

type ImportResponse struct {
	TotalItems int `json:"total_items"`
}
