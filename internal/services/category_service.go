package services

import (
	"gorm.io/gorm"

	apperrors "kharcha/internal/errors"
	"kharcha/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a user-owned category for a transaction type.
func (s *categoryService) CreateCategory(userID uint, categoryType, color string) (*models.Category, error) {
	// Validate input
	if categoryType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type is required")
	}
	if color == "" {
		color = models.DefaultCategoryColor
	}

	// The type is the join key for the labeled view; a user may not define
	// it twice (a global category with the same type may still be shadowed).
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND type = ?", userID, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateCategory
	}

	category := &models.Category{
		UserID: &userID,
		Type:   categoryType,
		Color:  color,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves the user's categories plus the global set.
func (s *categoryService) GetUserCategories(userID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("type ASC").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}
