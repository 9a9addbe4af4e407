package types

import (
	"strconv"
	"time"
)

// Category field names as they appear on the wire. Sort predicates and
// toggle fields use these names.
const (
	CategoryFieldID            = "id"
	CategoryFieldName          = "name"
	CategoryFieldDisplayOrder  = "displayOrder"
	CategoryFieldIncludeInMenu = "includeInMenu"
	CategoryFieldIsPublished   = "isPublished"
	CategoryFieldCreatedOn     = "createdOn"
	CategoryFieldUpdatedOn     = "updatedOn"
)

// CategorySortFields lists the sortable category columns in display order.
var CategorySortFields = []string{
	CategoryFieldID,
	CategoryFieldName,
	CategoryFieldDisplayOrder,
	CategoryFieldIsPublished,
	CategoryFieldCreatedOn,
	CategoryFieldUpdatedOn,
}

// Category is a row of the catalog category list.
type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	DisplayOrder  int       `json:"displayOrder"`
	IncludeInMenu bool      `json:"includeInMenu"` // Toggled inline from the list.
	IsPublished   bool      `json:"isPublished"`
	CreatedOn     time.Time `json:"createdOn"`
	UpdatedOn     time.Time `json:"updatedOn"`
}

// Key returns the record identifier used for mutations.
func (c Category) Key() string {
	return strconv.FormatInt(c.ID, 10)
}
