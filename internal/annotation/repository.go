package annotation

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnnotationRepository interface {
	Insert(ctx context.Context, a *Annotation) error
	FindByID(ctx context.Context, documentID, annotationID uint64) (*Annotation, error)
	ListByDocument(ctx context.Context, documentID uint64) ([]Annotation, error)
	Update(ctx context.Context, documentID, annotationID uint64, body, kind *string) (*Annotation, error)
	Delete(ctx context.Context, documentID, annotationID uint64) error
	AppendReply(ctx context.Context, documentID, annotationID uint64, reply *Reply) error
	UpdateReply(ctx context.Context, documentID, annotationID, replySeq uint64, text string) (*Reply, error)
	DeleteReply(ctx context.Context, documentID, annotationID, replySeq uint64) error
	DeleteByDocument(ctx context.Context, documentID uint64) error
}

type AnnotationRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new annotation repository
func NewRepository(db *gorm.DB) AnnotationRepository {
	return &AnnotationRepositoryImpl{db: db}
}

func (r *AnnotationRepositoryImpl) Insert(ctx context.Context, a *Annotation) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.ReplySeq = 0
	a.Replies = []Reply{}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AnnotationRepositoryImpl) FindByID(ctx context.Context, documentID, annotationID uint64) (*Annotation, error) {
	var a Annotation
	err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.seq ASC")
		}).
		Where("id = ? AND document_id = ?", annotationID, documentID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnnotationRepositoryImpl) ListByDocument(ctx context.Context, documentID uint64) ([]Annotation, error) {
	var annotations []Annotation
	err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.seq ASC")
		}).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&annotations).Error
	return annotations, err
}

// Update applies a partial body/kind change. Absent fields stay untouched.
func (r *AnnotationRepositoryImpl) Update(ctx context.Context, documentID, annotationID uint64, body, kind *string) (*Annotation, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Annotation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND document_id = ?", annotationID, documentID).
			First(&a).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}
		if body != nil {
			changes["body"] = *body
		}
		if kind != nil {
			changes["kind"] = *kind
		}

		return tx.Model(&Annotation{}).
			Where("id = ?", annotationID).
			Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, documentID, annotationID)
}

// Delete removes the annotation and all its replies as one operation
func (r *AnnotationRepositoryImpl) Delete(ctx context.Context, documentID, annotationID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Annotation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND document_id = ?", annotationID, documentID).
			First(&a).Error; err != nil {
			return err
		}

		if err := tx.Where("annotation_id = ?", annotationID).
			Delete(&Reply{}).Error; err != nil {
			return err
		}

		return tx.Delete(&Annotation{}, annotationID).Error
	})
}

// AppendReply assigns the next per-annotation seq under the parent row lock,
// so two concurrent appends are ordered and neither is lost, and bumps the
// parent's updated_at in the same transaction.
func (r *AnnotationRepositoryImpl) AppendReply(ctx context.Context, documentID, annotationID uint64, reply *Reply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Annotation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND document_id = ?", annotationID, documentID).
			First(&a).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		reply.AnnotationID = annotationID
		reply.Seq = a.ReplySeq + 1
		reply.CreatedAt = now
		reply.UpdatedAt = now

		if err := tx.Create(reply).Error; err != nil {
			return err
		}

		return tx.Model(&Annotation{}).
			Where("id = ?", annotationID).
			Updates(map[string]interface{}{
				"reply_seq":  reply.Seq,
				"updated_at": now,
			}).Error
	})
}

func (r *AnnotationRepositoryImpl) UpdateReply(ctx context.Context, documentID, annotationID, replySeq uint64, text string) (*Reply, error) {
	var updated Reply
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the parent so reply mutations serialize per annotation
		var a Annotation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND document_id = ?", annotationID, documentID).
			First(&a).Error; err != nil {
			return err
		}

		result := tx.Model(&Reply{}).
			Where("annotation_id = ? AND seq = ?", annotationID, replySeq).
			Updates(map[string]interface{}{
				"text":       text,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("annotation_id = ? AND seq = ?", annotationID, replySeq).
			First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *AnnotationRepositoryImpl) DeleteReply(ctx context.Context, documentID, annotationID, replySeq uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a Annotation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND document_id = ?", annotationID, documentID).
			First(&a).Error; err != nil {
			return err
		}

		result := tx.Where("annotation_id = ? AND seq = ?", annotationID, replySeq).
			Delete(&Reply{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteByDocument purges a document's annotations when the document goes away
func (r *AnnotationRepositoryImpl) DeleteByDocument(ctx context.Context, documentID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("annotation_id IN (?)",
			tx.Model(&Annotation{}).Select("id").Where("document_id = ?", documentID),
		).Delete(&Reply{}).Error; err != nil {
			return err
		}

		return tx.Where("document_id = ?", documentID).
			Delete(&Annotation{}).Error
	})
}
