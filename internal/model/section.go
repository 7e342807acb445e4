package model

import (
	"time"

	"gorm.io/gorm"
)

// Section is a named, ordered group of items within a brand's order form
type Section struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	BrandID   uint           `json:"brand_id" gorm:"index;not null"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null"`
	SortOrder int            `json:"sort_order" gorm:"not null;default:0"`
	Items     []Item         `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Field types recognized by the form renderer
const (
	FieldText          = "text"
	FieldTextarea      = "textarea"
	FieldNumber        = "number"
	FieldDate          = "date"
	FieldCheckbox      = "checkbox"
	FieldSelect        = "select"
	FieldRadio         = "radio"
	FieldCheckboxGroup = "checkbox_group"
)

// IsChoiceField reports whether the field type requires a set of options
func IsChoiceField(fieldType string) bool {
	switch fieldType {
	case FieldSelect, FieldRadio, FieldCheckboxGroup:
		return true
	}
	return false
}

// IsValidFieldType reports whether the field type is one the renderer knows
func IsValidFieldType(fieldType string) bool {
	switch fieldType {
	case FieldText, FieldTextarea, FieldNumber, FieldDate,
		FieldCheckbox, FieldSelect, FieldRadio, FieldCheckboxGroup:
		return true
	}
	return false
}

// Item is a single form field definition within a section
type Item struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SectionID   uint           `json:"section_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Code        string         `json:"code" gorm:"type:varchar(100)"`
	FieldType   string         `json:"field_type" gorm:"type:varchar(50);not null;default:'text'"`
	Placeholder string         `json:"placeholder" gorm:"type:varchar(255)"`
	Description string         `json:"description" gorm:"type:text"`
	Required    bool           `json:"required" gorm:"default:false"`
	SampleLink  string         `json:"sample_link" gorm:"type:text"`
	SortOrder   int            `json:"sort_order" gorm:"not null;default:0"`
	Options     []ItemOption   `json:"options,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// ItemOption is one selectable choice of a select/radio/checkbox-group item
type ItemOption struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ItemID    uint           `json:"item_id" gorm:"index;not null"`
	Value     string         `json:"value" gorm:"type:varchar(255);not null"`
	Label     string         `json:"label" gorm:"type:varchar(255)"`
	SortOrder int            `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
