package model

import (
	"time"

	"gorm.io/gorm"
)

// UploadedFile is the metadata row for one blob-stored asset
type UploadedFile struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	FileName     string         `json:"file_name" gorm:"type:varchar(255);not null"`
	OriginalName string         `json:"original_name" gorm:"type:varchar(255);not null"`
	ContentType  string         `json:"content_type" gorm:"type:varchar(100)"`
	Size         int64          `json:"size" gorm:"default:0"`
	StoragePath  string         `json:"storage_path" gorm:"type:text;not null"`
	PublicURL    string         `json:"public_url" gorm:"type:text"`
	BrandID      *uint          `json:"brand_id" gorm:"index;comment:'null means shared across brands'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// AllowedIP is one entry of the public-form IP allow-list
type AllowedIP struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Address     string         `json:"address" gorm:"type:varchar(45);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:varchar(255)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
