package document

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, userID uint64, document *Document) error
	FindByID(ctx context.Context, id uint64) (*Document, error)
	ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]Document, DocumentsMeta, error)
	Delete(ctx context.Context, id uint64) error
}

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new document repository
func NewRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, userID uint64, document *Document) error {
	document.UserID = userID
	document.CreatedAt = time.Now().UTC() // Use UTC for consistency
	document.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(document).Error
}

type DocumentsMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

func (r *DocumentRepositoryImpl) ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]Document, DocumentsMeta, error) {
	var documents []Document
	var totalRecords int64

	// Count total records
	if err := r.db.WithContext(ctx).Model(&Document{}).Where("user_id = ?", userID).Count(&totalRecords).Error; err != nil {
		return documents, DocumentsMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&documents).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return documents, DocumentsMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, id uint64) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&Document{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
