package annotation

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/anchor"
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/redis"
	"context"
	defError "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	List(ctx context.Context, scope access.Scope) ([]AnnotationResponse, error)
	Create(ctx context.Context, scope access.Scope, input CreateAnnotationInput) (*AnnotationResponse, error)
	Update(ctx context.Context, scope access.Scope, annotationID uint64, input UpdateAnnotationInput) (*AnnotationResponse, error)
	Delete(ctx context.Context, scope access.Scope, annotationID uint64) error
	AddReply(ctx context.Context, scope access.Scope, annotationID uint64, text string) (*ReplyResponse, error)
	UpdateReply(ctx context.Context, scope access.Scope, annotationID, replyID uint64, text string) (*ReplyResponse, error)
	DeleteReply(ctx context.Context, scope access.Scope, annotationID, replyID uint64) error
}

type CreateAnnotationInput struct {
	SelectedText string
	StartIndex   int
	EndIndex     int
	StartOffset  int
	EndOffset    int
	Body         string
	Kind         string
}

type UpdateAnnotationInput struct {
	Body *string
	Kind *string
}

type ReplyResponse struct {
	ID          uint64    `json:"id"`
	Text        string    `json:"text"`
	AuthorEmail string    `json:"author_email"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AnnotationResponse struct {
	ID          uint64            `json:"id"`
	DocumentID  uint64            `json:"document_id"`
	Anchor      anchor.TextAnchor `json:"anchor"`
	Body        string            `json:"body"`
	Kind        string            `json:"kind"`
	AuthorEmail string            `json:"author_email"`
	AuthorName  string            `json:"author_name"`
	OwnerEmail  string            `json:"owner_email"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Replies     []ReplyResponse   `json:"replies"`
}

type DefaultService struct {
	repository AnnotationRepository
	cache      *redis.Cache
}

func NewService(repository AnnotationRepository, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
	}
}

func (s *DefaultService) List(ctx context.Context, scope access.Scope) ([]AnnotationResponse, error) {
	// Versioned cache key: any write to the document's annotations bumps the
	// version, so stale lists are never served and expire on their own
	versionKey := fmt.Sprintf("doc:%d:annotations:version", scope.DocumentID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("annotations:d:%d:v:%d", scope.DocumentID, v)

	var cached []AnnotationResponse
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return cached, nil
	}

	annotations, err := s.repository.ListByDocument(ctx, scope.DocumentID)
	if err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	result := toAnnotationResponses(annotations)
	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return result, nil
}

func (s *DefaultService) Create(ctx context.Context, scope access.Scope, input CreateAnnotationInput) (*AnnotationResponse, error) {
	a, err := anchor.New(input.SelectedText, input.StartIndex, input.EndIndex, input.StartOffset, input.EndOffset)
	if err != nil {
		return nil, errors.BadRequest("Selection is empty or inverted", err)
	}

	if input.Body == "" {
		return nil, errors.BadRequest("Annotation body can't be empty", nil)
	}

	kind := input.Kind
	if kind == "" {
		kind = KindComment
	}
	if !validKind(kind) {
		return nil, errors.UnprocessableEntity("Unknown annotation kind", nil)
	}

	record := &Annotation{
		DocumentID:   scope.DocumentID,
		SelectedText: a.SelectedText,
		StartIndex:   a.StartIndex,
		EndIndex:     a.EndIndex,
		StartOffset:  a.StartOffset,
		EndOffset:    a.EndOffset,
		Body:         input.Body,
		Kind:         kind,
		AuthorEmail:  scope.Identity.Email,
		AuthorName:   scope.Identity.Name,
		OwnerEmail:   scope.OwnerEmail,
	}

	if err := s.repository.Insert(ctx, record); err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)

	response := toAnnotationResponse(record)
	return &response, nil
}

func (s *DefaultService) Update(ctx context.Context, scope access.Scope, annotationID uint64, input UpdateAnnotationInput) (*AnnotationResponse, error) {
	if input.Body == nil && input.Kind == nil {
		return nil, errors.BadRequest("Nothing to update", nil)
	}
	if input.Kind != nil && !validKind(*input.Kind) {
		return nil, errors.UnprocessableEntity("Unknown annotation kind", nil)
	}

	record, err := s.findAnnotation(ctx, scope, annotationID)
	if err != nil {
		return nil, err
	}

	if !CanEditAnnotation(scope.Identity, record) {
		return nil, errors.Forbidden("You can't edit this annotation", nil)
	}

	updated, err := s.repository.Update(ctx, scope.DocumentID, annotationID, input.Body, input.Kind)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Annotation not found", err)
		}
		return nil, errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)

	response := toAnnotationResponse(updated)
	return &response, nil
}

func (s *DefaultService) Delete(ctx context.Context, scope access.Scope, annotationID uint64) error {
	record, err := s.findAnnotation(ctx, scope, annotationID)
	if err != nil {
		return err
	}

	if !CanDeleteAnnotation(scope.Identity, record) {
		return errors.Forbidden("You can't delete this annotation", nil)
	}

	if err := s.repository.Delete(ctx, scope.DocumentID, annotationID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Annotation not found", err)
		}
		return errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)
	return nil
}

func (s *DefaultService) AddReply(ctx context.Context, scope access.Scope, annotationID uint64, text string) (*ReplyResponse, error) {
	if text == "" {
		return nil, errors.BadRequest("Reply text can't be empty", nil)
	}

	// existence check up front so a missing annotation reads as NotFound,
	// not a storage failure
	if _, err := s.findAnnotation(ctx, scope, annotationID); err != nil {
		return nil, err
	}

	reply := &Reply{
		Text:        text,
		AuthorEmail: scope.Identity.Email,
		AuthorName:  scope.Identity.Name,
	}

	if err := s.repository.AppendReply(ctx, scope.DocumentID, annotationID, reply); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Annotation not found", err)
		}
		return nil, errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)

	response := toReplyResponse(reply)
	return &response, nil
}

func (s *DefaultService) UpdateReply(ctx context.Context, scope access.Scope, annotationID, replyID uint64, text string) (*ReplyResponse, error) {
	if text == "" {
		return nil, errors.BadRequest("Reply text can't be empty", nil)
	}

	parent, reply, err := s.findReply(ctx, scope, annotationID, replyID)
	if err != nil {
		return nil, err
	}

	if !CanEditReply(scope.Identity, parent, reply) {
		return nil, errors.Forbidden("You can't edit this reply", nil)
	}

	updated, err := s.repository.UpdateReply(ctx, scope.DocumentID, annotationID, replyID, text)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Reply not found", err)
		}
		return nil, errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)

	response := toReplyResponse(updated)
	return &response, nil
}

func (s *DefaultService) DeleteReply(ctx context.Context, scope access.Scope, annotationID, replyID uint64) error {
	parent, reply, err := s.findReply(ctx, scope, annotationID, replyID)
	if err != nil {
		return err
	}

	if !CanDeleteReply(scope.Identity, parent, reply) {
		return errors.Forbidden("You can't delete this reply", nil)
	}

	if err := s.repository.DeleteReply(ctx, scope.DocumentID, annotationID, replyID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Reply not found", err)
		}
		return errors.StorageUnavailable(err)
	}

	s.bumpVersion(ctx, scope.DocumentID)
	return nil
}

func (s *DefaultService) findAnnotation(ctx context.Context, scope access.Scope, annotationID uint64) (*Annotation, error) {
	record, err := s.repository.FindByID(ctx, scope.DocumentID, annotationID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Annotation not found", err)
		}
		return nil, errors.StorageUnavailable(err)
	}
	return record, nil
}

func (s *DefaultService) findReply(ctx context.Context, scope access.Scope, annotationID, replyID uint64) (*Annotation, *Reply, error) {
	parent, err := s.findAnnotation(ctx, scope, annotationID)
	if err != nil {
		return nil, nil, err
	}

	for i := range parent.Replies {
		if parent.Replies[i].Seq == replyID {
			return parent, &parent.Replies[i], nil
		}
	}
	return nil, nil, errors.NotFound("Reply not found", nil)
}

func (s *DefaultService) bumpVersion(ctx context.Context, documentID uint64) {
	versionKey := fmt.Sprintf("doc:%d:annotations:version", documentID)
	s.cache.IncrementVersion(ctx, versionKey)
}

func validKind(kind string) bool {
	switch kind {
	case KindComment, KindHighlight, KindQuestion, KindSuggestion:
		return true
	}
	return false
}

func toReplyResponse(r *Reply) ReplyResponse {
	return ReplyResponse{
		ID:          r.Seq,
		Text:        r.Text,
		AuthorEmail: r.AuthorEmail,
		AuthorName:  r.AuthorName,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toAnnotationResponse(a *Annotation) AnnotationResponse {
	replies := make([]ReplyResponse, 0, len(a.Replies))
	for i := range a.Replies {
		replies = append(replies, toReplyResponse(&a.Replies[i]))
	}

	return AnnotationResponse{
		ID:         a.ID,
		DocumentID: a.DocumentID,
		Anchor: anchor.TextAnchor{
			SelectedText: a.SelectedText,
			StartIndex:   a.StartIndex,
			EndIndex:     a.EndIndex,
			StartOffset:  a.StartOffset,
			EndOffset:    a.EndOffset,
		},
		Body:        a.Body,
		Kind:        a.Kind,
		AuthorEmail: a.AuthorEmail,
		AuthorName:  a.AuthorName,
		OwnerEmail:  a.OwnerEmail,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		Replies:     replies,
	}
}

func toAnnotationResponses(annotations []Annotation) []AnnotationResponse {
	result := make([]AnnotationResponse, 0, len(annotations))
	for i := range annotations {
		result = append(result, toAnnotationResponse(&annotations[i]))
	}
	return result
}
