package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Brand represents a tenant of the ordering system.
// Each brand owns its own order form, submissions and uploaded files.
type Brand struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	Slug            string         `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	LogoURL         string         `json:"logo_url" gorm:"type:text"`
	Active          bool           `json:"active" gorm:"default:true"`
	RecipientEmails string         `json:"recipient_emails" gorm:"type:text;comment:'comma separated notification recipients'"`
	Clinics         []Clinic       `json:"clinics,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Sections        []Section      `json:"sections,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// Recipients splits the stored recipient list into individual addresses
func (b *Brand) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(b.RecipientEmails, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Clinic is a billing/delivery location belonging to a brand
type Clinic struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	BrandID   uint           `json:"brand_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Address   string         `json:"address" gorm:"type:text"`
	SortOrder int            `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
