package invite

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type InviteRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByToken(ctx context.Context, token string) (*Invitation, error)
	ListByDocument(ctx context.Context, documentID uint64, page, pageSize int) ([]Invitation, int64, error)
	Delete(ctx context.Context, documentID, inviteID uint64) error
	DeleteByDocument(ctx context.Context, documentID uint64) error
}

type InviteRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new invitation repository
func NewRepository(db *gorm.DB) InviteRepository {
	return &InviteRepositoryImpl{db: db}
}

func (r *InviteRepositoryImpl) Create(ctx context.Context, invitation *Invitation) error {
	invitation.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *InviteRepositoryImpl) FindByToken(ctx context.Context, token string) (*Invitation, error) {
	var invitation Invitation
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *InviteRepositoryImpl) ListByDocument(ctx context.Context, documentID uint64, page, pageSize int) ([]Invitation, int64, error) {
	var invitations []Invitation
	var total int64

	if err := r.db.WithContext(ctx).Model(&Invitation{}).
		Where("document_id = ?", documentID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&invitations).Error

	return invitations, total, err
}

func (r *InviteRepositoryImpl) Delete(ctx context.Context, documentID, inviteID uint64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND document_id = ?", inviteID, documentID).
		Delete(&Invitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *InviteRepositoryImpl) DeleteByDocument(ctx context.Context, documentID uint64) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&Invitation{}).Error
}
