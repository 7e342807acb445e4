package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/formcache"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Errors signalled by the form definition loader
var (
	ErrBrandNotFound = errors.New("brand not found")
	ErrBrandInactive = errors.New("brand is not active")
)

// OptionDef is one selectable choice, safe for rendering
type OptionDef struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ItemDef is one form field, safe for rendering
type ItemDef struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	FieldType   string      `json:"field_type"`
	Placeholder string      `json:"placeholder"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	SampleLink  string      `json:"sample_link"`
	Options     []OptionDef `json:"options"`
}

// SectionDef is one ordered group of items, safe for rendering
type SectionDef struct {
	ID    uint      `json:"id"`
	Title string    `json:"title"`
	Items []ItemDef `json:"items"`
}

// ClinicDef is one billing/delivery location, safe for rendering
type ClinicDef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// FormDefinition is the sanitized, ordered form tree for one brand.
// Every user-facing string field is guaranteed non-null.
type FormDefinition struct {
	BrandID   uint         `json:"brand_id"`
	BrandName string       `json:"brand_name"`
	Slug      string       `json:"slug"`
	LogoURL   string       `json:"logo_url"`
	Clinics   []ClinicDef  `json:"clinics"`
	Sections  []SectionDef `json:"sections"`
}

// FormDefinitionService builds sanitized form trees for public rendering
type FormDefinitionService struct {
	db     *gorm.DB
	cache  formcache.Cache
	logger *zap.Logger
}

// NewFormDefinitionService creates the form definition loader
func NewFormDefinitionService(db *gorm.DB, cache formcache.Cache, logger *zap.Logger) *FormDefinitionService {
	return &FormDefinitionService{db: db, cache: cache, logger: logger}
}

// Load returns the sanitized form definition for the given brand slug.
// Missing brands return ErrBrandNotFound and inactive brands return
// ErrBrandInactive without reading any section or item rows.
func (s *FormDefinitionService) Load(ctx context.Context, slug string) (*FormDefinition, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, ErrBrandNotFound
	}

	// Cache holds only definitions of active brands
	if payload, err := s.cache.Get(ctx, slug); err == nil {
		var def FormDefinition
		if jsonErr := json.Unmarshal([]byte(payload), &def); jsonErr == nil {
			prometheus.FormCacheHitCounter.Inc()
			return &def, nil
		}
		s.logger.Warn("Discarding corrupt cached form definition", zap.String("slug", slug))
	} else if err != formcache.ErrMiss {
		s.logger.Warn("Form cache read failed", zap.String("slug", slug), zap.Error(err))
	}
	prometheus.FormCacheMissCounter.Inc()

	var brand model.Brand
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to load brand: %w", err)
	}
	if !brand.Active {
		return nil, ErrBrandInactive
	}

	def, err := s.buildTree(ctx, &brand)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(def); jsonErr == nil {
		if cacheErr := s.cache.Set(ctx, slug, string(payload)); cacheErr != nil {
			s.logger.Warn("Form cache write failed", zap.String("slug", slug), zap.Error(cacheErr))
		}
	}

	return def, nil
}

// Invalidate drops the cached definition for one brand slug. Called by every
// admin mutation touching the brand's form structure.
func (s *FormDefinitionService) Invalidate(ctx context.Context, slug string) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, slug); err != nil {
		s.logger.Warn("Form cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}

func (s *FormDefinitionService) buildTree(ctx context.Context, brand *model.Brand) (*FormDefinition, error) {
	var clinics []model.Clinic
	if err := s.db.WithContext(ctx).
		Where("brand_id = ?", brand.ID).
		Order("sort_order asc").
		Find(&clinics).Error; err != nil {
		return nil, fmt.Errorf("failed to load clinics: %w", err)
	}

	var sections []model.Section
	if err := s.db.WithContext(ctx).
		Where("brand_id = ?", brand.ID).
		Order("sort_order asc").
		Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	sectionIDs := make([]uint, 0, len(sections))
	for _, sec := range sections {
		sectionIDs = append(sectionIDs, sec.ID)
	}

	itemsBySection := make(map[uint][]model.Item)
	optionsByItem := make(map[uint][]model.ItemOption)
	if len(sectionIDs) > 0 {
		var items []model.Item
		if err := s.db.WithContext(ctx).
			Where("section_id IN ?", sectionIDs).
			Order("sort_order asc").
			Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}

		itemIDs := make([]uint, 0, len(items))
		for _, it := range items {
			itemsBySection[it.SectionID] = append(itemsBySection[it.SectionID], it)
			itemIDs = append(itemIDs, it.ID)
		}

		if len(itemIDs) > 0 {
			var options []model.ItemOption
			if err := s.db.WithContext(ctx).
				Where("item_id IN ?", itemIDs).
				Order("sort_order asc").
				Find(&options).Error; err != nil {
				return nil, fmt.Errorf("failed to load item options: %w", err)
			}
			for _, opt := range options {
				optionsByItem[opt.ItemID] = append(optionsByItem[opt.ItemID], opt)
			}
		}
	}

	def := &FormDefinition{
		BrandID:   brand.ID,
		BrandName: brand.Name,
		Slug:      brand.Slug,
		LogoURL:   brand.LogoURL,
		Clinics:   make([]ClinicDef, 0, len(clinics)),
		Sections:  make([]SectionDef, 0, len(sections)),
	}
	for _, clinic := range clinics {
		def.Clinics = append(def.Clinics, ClinicDef{
			ID:      clinic.ID,
			Name:    clinic.Name,
			Address: clinic.Address,
		})
	}

	for _, sec := range sections {
		items := itemsBySection[sec.ID]
		// Sections with no items never reach the renderer
		if len(items) == 0 {
			continue
		}
		secDef := SectionDef{
			ID:    sec.ID,
			Title: sec.Title,
			Items: make([]ItemDef, 0, len(items)),
		}
		for _, it := range items {
			fieldType := it.FieldType
			if !model.IsValidFieldType(fieldType) {
				fieldType = model.FieldText
			}
			itemDef := ItemDef{
				ID:          it.ID,
				Name:        it.Name,
				Code:        it.Code,
				FieldType:   fieldType,
				Placeholder: it.Placeholder,
				Description: it.Description,
				Required:    it.Required,
				SampleLink:  it.SampleLink,
				Options:     make([]OptionDef, 0, len(optionsByItem[it.ID])),
			}
			for _, opt := range optionsByItem[it.ID] {
				label := opt.Label
				if label == "" {
					label = opt.Value
				}
				itemDef.Options = append(itemDef.Options, OptionDef{Value: opt.Value, Label: label})
			}
			secDef.Items = append(secDef.Items, itemDef)
		}
		def.Sections = append(def.Sections, secDef)
	}

	return def, nil
}
