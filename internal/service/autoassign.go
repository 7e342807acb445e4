package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoAssignService links uploaded sample files to form items by filename.
// Greedy first match: a file whose original name starts with an item's code
// (case-insensitive) becomes that item's sample link.
type AutoAssignService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAutoAssignService creates the auto-assign maintenance service
func NewAutoAssignService(db *gorm.DB, logger *zap.Logger) *AutoAssignService {
	return &AutoAssignService{db: db, logger: logger}
}

// AssignResult reports one file-to-item assignment
type AssignResult struct {
	ItemID   uint   `json:"item_id"`
	ItemCode string `json:"item_code"`
	FileID   uint   `json:"file_id"`
	FileName string `json:"file_name"`
}

// Run scans items lacking a sample link and assigns the first matching file
func (s *AutoAssignService) Run(ctx context.Context) ([]AssignResult, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).
		Where("(sample_link IS NULL OR sample_link = '') AND code <> ''").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	var files []model.UploadedFile
	if err := s.db.WithContext(ctx).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to load uploaded files: %w", err)
	}

	results := make([]AssignResult, 0)
	for _, item := range items {
		match := MatchFileForItem(item.Code, files)
		if match == nil {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&model.Item{}).
			Where("id = ?", item.ID).
			Update("sample_link", match.PublicURL).Error; err != nil {
			s.logger.Error("Failed to assign sample file",
				zap.Uint("item_id", item.ID),
				zap.Uint("file_id", match.ID),
				zap.Error(err))
			continue
		}
		s.logger.Info("Assigned sample file to item",
			zap.String("item_code", item.Code),
			zap.String("file_name", match.OriginalName))
		results = append(results, AssignResult{
			ItemID:   item.ID,
			ItemCode: item.Code,
			FileID:   match.ID,
			FileName: match.OriginalName,
		})
	}

	return results, nil
}

// MatchFileForItem returns the first file whose original name starts with the
// item code, ignoring case. Nil when nothing matches.
func MatchFileForItem(code string, files []model.UploadedFile) *model.UploadedFile {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	for i := range files {
		name := strings.ToLower(files[i].OriginalName)
		if strings.HasPrefix(name, code) {
			return &files[i]
		}
	}
	return nil
}
