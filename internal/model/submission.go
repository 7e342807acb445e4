package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Submission lifecycle statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Side-effect sub-statuses recorded on a submission row
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// JSONMap stores an item-code to submitted-value map as a jsonb column
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(data, m)
}

// Submission is an immutable record of one placed order
type Submission struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	BrandID          uint           `json:"brand_id" gorm:"index;not null"`
	Brand            *Brand         `json:"brand,omitempty"`
	OrderedBy        string         `json:"ordered_by" gorm:"type:varchar(255);not null"`
	Email            string         `json:"email" gorm:"type:varchar(255);not null"`
	Phone            string         `json:"phone" gorm:"type:varchar(50)"`
	BillTo           string         `json:"bill_to" gorm:"type:varchar(255)"`
	DeliverTo        string         `json:"deliver_to" gorm:"type:varchar(255)"`
	Values           JSONMap        `json:"values" gorm:"type:jsonb"`
	CustomQuantities JSONMap        `json:"custom_quantities,omitempty" gorm:"type:jsonb"`
	Notes            string         `json:"notes" gorm:"type:text"`
	PDFURL           string         `json:"pdf_url" gorm:"type:text"`
	Status           string         `json:"status" gorm:"type:varchar(50);not null;default:'pending';index"`
	PDFStatus        string         `json:"pdf_status" gorm:"type:varchar(50);default:'skipped'"`
	EmailStatus      string         `json:"email_status" gorm:"type:varchar(50);default:'skipped'"`
	Courier          string         `json:"courier" gorm:"type:varchar(255)"`
	TrackingLink     string         `json:"tracking_link" gorm:"type:text"`
	DispatchNotes    string         `json:"dispatch_notes" gorm:"type:text"`
	DispatchedAt     *time.Time     `json:"dispatched_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}
