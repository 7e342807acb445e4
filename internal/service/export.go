package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportService writes submissions to a spreadsheet for the admin dashboard
type ExportService struct {
	db *gorm.DB
}

// NewExportService creates the export service
func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

const exportSheet = "Submissions"

var exportHeaders = []string{
	"ID", "Brand", "Ordered By", "Email", "Phone", "Bill To", "Deliver To",
	"Status", "PDF URL", "Items", "Notes", "Submitted At",
}

// ExportSubmissions returns an XLSX workbook of submissions, optionally
// filtered to one brand
func (s *ExportService) ExportSubmissions(ctx context.Context, brandID uint) (*bytes.Buffer, error) {
	query := s.db.WithContext(ctx).Preload("Brand").Order("created_at desc")
	if brandID != 0 {
		query = query.Where("brand_id = ?", brandID)
	}

	var submissions []model.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, sub := range submissions {
		brandName := ""
		if sub.Brand != nil {
			brandName = sub.Brand.Name
		}
		itemsJSON, _ := json.Marshal(sub.Values)
		values := []interface{}{
			sub.ID, brandName, sub.OrderedBy, sub.Email, sub.Phone,
			sub.BillTo, sub.DeliverTo, sub.Status, sub.PDFURL,
			string(itemsJSON), sub.Notes, sub.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &buf, nil
}
