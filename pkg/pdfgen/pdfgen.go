package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Page layout constants, millimetres on A4
const (
	marginLeft   = 15.0
	marginTop    = 20.0
	pageBottom   = 270.0
	lineHeight   = 6.0
	contentWidth = 180.0
)

// OrderLine is one ordered item rendered on the document
type OrderLine struct {
	Name     string
	Code     string
	Quantity string
}

// AddressBlock is a labelled billing or delivery address
type AddressBlock struct {
	Label   string
	Name    string
	Address string
}

// OrderDocument is everything the PDF needs, fully resolved by the caller
type OrderDocument struct {
	BrandName   string
	Title       string
	OrderedBy   string
	Email       string
	Phone       string
	BillTo      AddressBlock
	DeliverTo   AddressBlock
	Lines       []OrderLine
	Notes       string
	SubmittedAt time.Time
}

// Renderer produces the PDF bytes for an order summary
type Renderer interface {
	Render(doc *OrderDocument) ([]byte, error)
}

// FPDFRenderer renders order documents with gofpdf
type FPDFRenderer struct{}

// NewRenderer creates the default PDF renderer
func NewRenderer() *FPDFRenderer {
	return &FPDFRenderer{}
}

// Render builds the order summary document
func (r *FPDFRenderer) Render(doc *OrderDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, doc.BrandName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	title := doc.Title
	if title == "" {
		title = "Printing Order"
	}
	pdf.CellFormat(contentWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(contentWidth, 5, doc.SubmittedAt.Format("2 January 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	// Orderer block
	writeKV(pdf, "Ordered by", doc.OrderedBy)
	writeKV(pdf, "Email", doc.Email)
	if doc.Phone != "" {
		writeKV(pdf, "Phone", doc.Phone)
	}
	pdf.Ln(3)

	// Address blocks
	writeAddress(pdf, doc.BillTo)
	writeAddress(pdf, doc.DeliverTo)

	// Item lines
	ensureRoom(pdf, lineHeight*2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentWidth, lineHeight+2, "Ordered items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		ensureRoom(pdf, lineHeight)
		label := line.Name
		if line.Code != "" {
			label = fmt.Sprintf("%s (%s)", line.Name, line.Code)
		}
		pdf.CellFormat(130, lineHeight, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, lineHeight, line.Quantity, "", 1, "R", false, 0, "")
	}

	// Notes, wrapped at the content width
	if doc.Notes != "" {
		pdf.Ln(3)
		ensureRoom(pdf, lineHeight*2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth, lineHeight+2, "Notes", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, ln := range pdf.SplitLines([]byte(doc.Notes), contentWidth) {
			ensureRoom(pdf, lineHeight)
			pdf.CellFormat(contentWidth, lineHeight, string(ln), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ensureRoom starts a new page when the cursor would pass the page bottom
func ensureRoom(pdf *gofpdf.Fpdf, height float64) {
	if pdf.GetY()+height > pageBottom {
		pdf.AddPage()
		pdf.SetY(marginTop)
	}
}

func writeKV(pdf *gofpdf.Fpdf, key, value string) {
	ensureRoom(pdf, lineHeight)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, lineHeight, key, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth-40, lineHeight, value, "", 1, "L", false, 0, "")
}

func writeAddress(pdf *gofpdf.Fpdf, block AddressBlock) {
	if block.Name == "" && block.Address == "" {
		return
	}
	ensureRoom(pdf, lineHeight*3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentWidth, lineHeight, block.Label, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if block.Name != "" {
		pdf.CellFormat(contentWidth, lineHeight, block.Name, "", 1, "L", false, 0, "")
	}
	if block.Address != "" {
		for _, ln := range pdf.SplitLines([]byte(block.Address), contentWidth) {
			ensureRoom(pdf, lineHeight)
			pdf.CellFormat(contentWidth, lineHeight, string(ln), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(2)
}
