package pdfgen

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *OrderDocument {
	return &OrderDocument{
		BrandName: "Sunshine Radiology",
		OrderedBy: "Dr Jane Citizen",
		Email:     "jane@example.com",
		Phone:     "03 9999 0000",
		BillTo: AddressBlock{
			Label:   "Bill to",
			Name:    "Sunshine Radiology Head Office",
			Address: "1 Example St\nMelbourne VIC 3000",
		},
		DeliverTo: AddressBlock{
			Label:   "Deliver to",
			Name:    "Footscray Clinic",
			Address: "22 Sample Rd, Footscray VIC 3011",
		},
		Lines: []OrderLine{
			{Name: "A4 GP Referral Pad", Code: "A4GP", Quantity: "3"},
			{Name: "DL Appointment Card", Code: "DL01", Quantity: "7 boxes"},
		},
		Notes:       "Please deliver before Friday.",
		SubmittedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	data, err := NewRenderer().Render(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRender_MinimalDocument(t *testing.T) {
	doc := &OrderDocument{
		BrandName:   "Sunshine Radiology",
		OrderedBy:   "Dr Jane Citizen",
		Email:       "jane@example.com",
		SubmittedAt: time.Now(),
	}

	data, err := NewRenderer().Render(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRender_ManyLinesPaginates(t *testing.T) {
	doc := sampleDocument()
	doc.Lines = nil
	for i := 0; i < 120; i++ {
		doc.Lines = append(doc.Lines, OrderLine{
			Name:     fmt.Sprintf("Item %03d", i),
			Code:     fmt.Sprintf("C%03d", i),
			Quantity: "1",
		})
	}
	doc.Notes = strings.Repeat("Long note text that wraps across the content width. ", 40)

	data, err := NewRenderer().Render(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	// 120 item lines cannot fit on one A4 page
	assert.Greater(t, strings.Count(string(data), "/Type /Page"), 2)
}
