package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/mailer"
	"github.com/chrisgermon/form-ordering-sub000/pkg/pdfgen"
	"github.com/chrisgermon/form-ordering-sub000/pkg/storage"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomQuantitySentinel is the option value meaning "free-text quantity"
const CustomQuantitySentinel = "other"

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidationError carries field-level validation messages. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// SubmitOrderRequest is the payload of POST /api/submit-order
type SubmitOrderRequest struct {
	BrandID          uint                   `json:"brand_id"`
	OrderedBy        string                 `json:"ordered_by"`
	Email            string                 `json:"email"`
	Phone            string                 `json:"phone"`
	BillTo           string                 `json:"bill_to"`
	DeliverTo        string                 `json:"deliver_to"`
	Items            map[string]interface{} `json:"items"`
	CustomQuantities map[string]string      `json:"custom_quantities"`
	Notes            string                 `json:"notes"`
}

// SubmitResult reports a persisted submission back to the caller
type SubmitResult struct {
	SubmissionID uint   `json:"submission_id"`
	PDFURL       string `json:"pdf_url"`
}

// SubmissionService runs the order submission pipeline:
// validate, persist, render PDF, upload, notify. Failures after the
// persist step are recorded on the row and logged, never surfaced to the
// submitter.
type SubmissionService struct {
	db       *gorm.DB
	forms    *FormDefinitionService
	renderer pdfgen.Renderer
	blobs    storage.BlobStore
	mail     mailer.Mailer
	logger   *zap.Logger
}

// NewSubmissionService wires the submission pipeline
func NewSubmissionService(db *gorm.DB, forms *FormDefinitionService, renderer pdfgen.Renderer, blobs storage.BlobStore, mail mailer.Mailer, logger *zap.Logger) *SubmissionService {
	return &SubmissionService{
		db:       db,
		forms:    forms,
		renderer: renderer,
		blobs:    blobs,
		mail:     mail,
		logger:   logger,
	}
}

// Submit runs the full pipeline for one order
func (s *SubmissionService) Submit(ctx context.Context, req *SubmitOrderRequest) (*SubmitResult, error) {
	prometheus.SubmissionsReceivedCounter.Inc()

	var brand model.Brand
	if err := s.db.WithContext(ctx).First(&brand, req.BrandID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}
	if !brand.Active {
		return nil, ErrBrandInactive
	}

	def, err := s.forms.buildTree(ctx, &brand)
	if err != nil {
		return nil, err
	}

	if verr := validateSubmission(req, def); verr != nil {
		prometheus.SubmissionsRejectedCounter.Inc()
		return nil, verr
	}

	// Persist before any side effect so the order is never lost. Custom
	// quantities are stored on the row so a later retry can rebuild the
	// exact same PDF.
	submission := model.Submission{
		BrandID:          brand.ID,
		OrderedBy:        strings.TrimSpace(req.OrderedBy),
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		BillTo:           strings.TrimSpace(req.BillTo),
		DeliverTo:        strings.TrimSpace(req.DeliverTo),
		Values:           model.JSONMap(req.Items),
		CustomQuantities: customQuantityMap(req.CustomQuantities),
		Notes:            strings.TrimSpace(req.Notes),
		Status:           model.StatusPending,
		PDFStatus:        model.StepSkipped,
		EmailStatus:      model.StepSkipped,
	}
	if err := s.db.WithContext(ctx).Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}
	prometheus.SubmissionsPersistedCounter.Inc()

	s.runSideEffects(ctx, &brand, def, &submission)

	return &SubmitResult{SubmissionID: submission.ID, PDFURL: submission.PDFURL}, nil
}

// Retry re-runs the failed tail steps of an already persisted submission
func (s *SubmissionService) Retry(ctx context.Context, submissionID uint) (*model.Submission, error) {
	var submission model.Submission
	if err := s.db.WithContext(ctx).First(&submission, submissionID).Error; err != nil {
		return nil, err
	}
	var brand model.Brand
	if err := s.db.WithContext(ctx).First(&brand, submission.BrandID).Error; err != nil {
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}
	def, err := s.forms.buildTree(ctx, &brand)
	if err != nil {
		return nil, err
	}

	s.runSideEffects(ctx, &brand, def, &submission)
	return &submission, nil
}

// runSideEffects performs the PDF and email steps, recording sub-status on
// the row. Never returns an error: the submission already exists.
func (s *SubmissionService) runSideEffects(ctx context.Context, brand *model.Brand, def *FormDefinition, submission *model.Submission) {
	log := s.logger.With(
		zap.Uint("submission_id", submission.ID),
		zap.String("brand", brand.Slug))

	doc := s.buildDocument(brand, def, submission)

	if submission.PDFStatus != model.StepOK {
		pdfBytes, err := s.renderer.Render(doc)
		if err != nil {
			log.Error("PDF generation failed", zap.Error(err))
			prometheus.RecordPipelineStepFailure("pdf")
			submission.PDFStatus = model.StepFailed
		} else {
			key := fmt.Sprintf("brands/%s/submissions/%d-%s.pdf",
				brand.Slug, time.Now().Unix(), uuid.New().String())
			url, err := s.blobs.Put(ctx, key, "application/pdf", pdfBytes)
			if err != nil {
				log.Error("PDF upload failed", zap.Error(err))
				prometheus.RecordPipelineStepFailure("upload")
				submission.PDFStatus = model.StepFailed
			} else {
				submission.PDFURL = url
				submission.PDFStatus = model.StepOK
			}
		}
	}

	if submission.EmailStatus != model.StepOK {
		recipients := brand.Recipients()
		if len(recipients) == 0 {
			log.Warn("Brand has no recipient emails, skipping notification")
			submission.EmailStatus = model.StepSkipped
		} else {
			msg := &mailer.Message{
				To:      recipients,
				Subject: fmt.Sprintf("New printing order for %s from %s", brand.Name, submission.OrderedBy),
				HTML:    buildEmailBody(brand, submission, doc.Lines),
			}
			if submission.Email != "" {
				msg.Cc = []string{submission.Email}
			}
			if err := s.mail.Send(ctx, msg); err != nil {
				log.Error("Notification email failed", zap.Error(err))
				prometheus.RecordPipelineStepFailure("email")
				submission.EmailStatus = model.StepFailed
			} else {
				submission.EmailStatus = model.StepOK
			}
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"pdf_url":      submission.PDFURL,
			"pdf_status":   submission.PDFStatus,
			"email_status": submission.EmailStatus,
		}).Error; err != nil {
		log.Error("Failed to record pipeline sub-status", zap.Error(err))
	}
}

// customQuantityMap converts the request's free-text quantities for storage
func customQuantityMap(in map[string]string) model.JSONMap {
	if len(in) == 0 {
		return nil
	}
	out := make(model.JSONMap, len(in))
	for key, value := range in {
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// buildDocument resolves the raw value map against the form definition into
// ordered, display-ready PDF content
func (s *SubmissionService) buildDocument(brand *model.Brand, def *FormDefinition, submission *model.Submission) *pdfgen.OrderDocument {
	doc := &pdfgen.OrderDocument{
		BrandName:   brand.Name,
		Title:       "Printing Order",
		OrderedBy:   submission.OrderedBy,
		Email:       submission.Email,
		Phone:       submission.Phone,
		BillTo:      resolveClinic(def, "Bill to", submission.BillTo),
		DeliverTo:   resolveClinic(def, "Deliver to", submission.DeliverTo),
		Notes:       submission.Notes,
		SubmittedAt: submission.CreatedAt,
	}
	if doc.SubmittedAt.IsZero() {
		doc.SubmittedAt = time.Now()
	}

	for _, sec := range def.Sections {
		for _, item := range sec.Items {
			raw, ok := submission.Values[itemKey(item)]
			if !ok {
				continue
			}
			quantity := valueToDisplay(raw)
			if quantity == "" {
				continue
			}
			if quantity == CustomQuantitySentinel {
				if custom := valueToDisplay(submission.CustomQuantities[itemKey(item)]); custom != "" {
					quantity = custom
				}
			}
			doc.Lines = append(doc.Lines, pdfgen.OrderLine{
				Name:     item.Name,
				Code:     item.Code,
				Quantity: quantity,
			})
		}
	}

	return doc
}

// itemKey is the identifier used in the submitted value map: the item code
// when present, otherwise the numeric id
func itemKey(item ItemDef) string {
	if item.Code != "" {
		return item.Code
	}
	return strconv.FormatUint(uint64(item.ID), 10)
}

// valueToDisplay renders a submitted value as display text
func valueToDisplay(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "Yes"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, el := range v {
			if s := valueToDisplay(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// resolveClinic maps a submitted clinic reference to a labelled address block
func resolveClinic(def *FormDefinition, label, ref string) pdfgen.AddressBlock {
	ref = strings.TrimSpace(ref)
	block := pdfgen.AddressBlock{Label: label, Name: ref}
	for _, clinic := range def.Clinics {
		if strconv.FormatUint(uint64(clinic.ID), 10) == ref || strings.EqualFold(clinic.Name, ref) {
			block.Name = clinic.Name
			block.Address = clinic.Address
			break
		}
	}
	return block
}

// validateSubmission checks the payload against the form definition.
// Returns nil when valid, otherwise a field->message map.
func validateSubmission(req *SubmitOrderRequest, def *FormDefinition) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(req.OrderedBy) == "" {
		fields["ordered_by"] = "name is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "email is required"
	} else if !emailPattern.MatchString(strings.TrimSpace(req.Email)) {
		fields["email"] = "email is not valid"
	}

	for _, sec := range def.Sections {
		for _, item := range sec.Items {
			key := itemKey(item)
			raw, present := req.Items[key]
			display := ""
			if present {
				display = valueToDisplay(raw)
			}

			if item.Required && display == "" {
				fields[key] = fmt.Sprintf("%s is required", item.Name)
				continue
			}
			if display == "" {
				continue
			}

			if item.FieldType == model.FieldNumber {
				if _, err := strconv.ParseFloat(display, 64); err != nil {
					fields[key] = fmt.Sprintf("%s must be a number", item.Name)
				}
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// buildEmailBody renders the notification email HTML
func buildEmailBody(brand *model.Brand, submission *model.Submission, lines []pdfgen.OrderLine) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h2>New printing order for %s</h2>", html.EscapeString(brand.Name)))
	b.WriteString("<table>")
	writeRow := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("<tr><td><strong>%s</strong></td><td>%s</td></tr>",
			html.EscapeString(key), html.EscapeString(value)))
	}
	writeRow("Ordered by", submission.OrderedBy)
	writeRow("Email", submission.Email)
	writeRow("Phone", submission.Phone)
	writeRow("Bill to", submission.BillTo)
	writeRow("Deliver to", submission.DeliverTo)
	writeRow("Notes", submission.Notes)
	b.WriteString("</table>")

	if len(lines) > 0 {
		b.WriteString("<h3>Ordered items</h3><table>")
		for _, line := range lines {
			label := line.Name
			if line.Code != "" {
				label = fmt.Sprintf("%s (%s)", line.Name, line.Code)
			}
			b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td></tr>",
				html.EscapeString(label), html.EscapeString(line.Quantity)))
		}
		b.WriteString("</table>")
	}

	if submission.PDFURL != "" {
		b.WriteString(fmt.Sprintf(`<p><a href="%s">Download the order PDF</a></p>`, submission.PDFURL))
	}
	return b.String()
}
