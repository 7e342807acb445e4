package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrOrderMismatch is returned when the submitted id list is not exactly the
// current sibling set of the scope being reordered
var ErrOrderMismatch = errors.New("ordered ids do not match the current siblings")

// ReorderService rewrites sibling sort_order values atomically.
// After a successful reorder the sibling sort_order values are always a
// permutation of 0..n-1; a failed reorder changes nothing.
type ReorderService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReorderService creates the reorder service
func NewReorderService(db *gorm.DB, logger *zap.Logger) *ReorderService {
	return &ReorderService{db: db, logger: logger}
}

// ReorderSections persists a new section order for one brand.
// orderedIDs must contain every current section id of the brand exactly once.
func (s *ReorderService) ReorderSections(ctx context.Context, brandID uint, orderedIDs []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentIDs []uint
		if err := tx.Model(&model.Section{}).
			Where("brand_id = ?", brandID).
			Pluck("id", &currentIDs).Error; err != nil {
			return fmt.Errorf("failed to load sections: %w", err)
		}
		if !sameIDSet(currentIDs, orderedIDs) {
			return ErrOrderMismatch
		}
		for position, id := range orderedIDs {
			if err := tx.Model(&model.Section{}).
				Where("id = ? AND brand_id = ?", id, brandID).
				Update("sort_order", position).Error; err != nil {
				return fmt.Errorf("failed to update section order: %w", err)
			}
		}
		return nil
	})
}

// ReorderItems persists a new item order within one section.
func (s *ReorderService) ReorderItems(ctx context.Context, sectionID uint, orderedIDs []uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentIDs []uint
		if err := tx.Model(&model.Item{}).
			Where("section_id = ?", sectionID).
			Pluck("id", &currentIDs).Error; err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}
		if !sameIDSet(currentIDs, orderedIDs) {
			return ErrOrderMismatch
		}
		for position, id := range orderedIDs {
			if err := tx.Model(&model.Item{}).
				Where("id = ? AND section_id = ?", id, sectionID).
				Update("sort_order", position).Error; err != nil {
				return fmt.Errorf("failed to update item order: %w", err)
			}
		}
		return nil
	})
}

// NextSortOrder returns max(sort_order)+1 among the named siblings.
// Used by the create handlers so new rows land at the end of the list.
func NextSortOrder(db *gorm.DB, entity interface{}, scopeColumn string, scopeID uint) (int, error) {
	var max *int
	if err := db.Model(entity).
		Where(scopeColumn+" = ?", scopeID).
		Select("MAX(sort_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// sameIDSet reports whether both slices hold the same ids, each exactly once
func sameIDSet(current, ordered []uint) bool {
	if len(current) != len(ordered) {
		return false
	}
	seen := make(map[uint]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	for _, id := range ordered {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return len(seen) == 0
}
