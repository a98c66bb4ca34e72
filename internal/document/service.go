package document

import (
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/redis"
	"context"
	defError "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	CreateUserDocument(ctx context.Context, userID uint64, document *Document) error
	GetUserDocuments(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedDocuments, error)
	GetDocumentByID(ctx context.Context, docID uint64, userID uint64) (*DocumentShowResponse, error)
	GetDocumentForGuest(ctx context.Context, docID uint64) (*DocumentShowResponse, error)
	GetDocumentOwner(ctx context.Context, documentID uint64) (string, error)
	GetDocumentTitle(ctx context.Context, documentID uint64) (string, error)
	GetDocumentText(ctx context.Context, documentID uint64) (string, error)
	DeleteDocument(ctx context.Context, docID uint64, userID uint64) error
}

// Owner is the slice of a user account the document service needs
type Owner struct {
	ID    uint64
	Email string
	Name  string
}

type UserProvider interface {
	GetOwner(ctx context.Context, id uint64) (*Owner, error)
}

// Purger removes everything hanging off a document when it is deleted
type Purger interface {
	DeleteByDocument(ctx context.Context, documentID uint64) error
}

type DefaultService struct {
	repository   DocumentRepository
	userProvider UserProvider
	cache        *redis.Cache
	purgers      []Purger
}

func NewService(
	repository DocumentRepository,
	userProvider UserProvider,
	cache *redis.Cache,
	purgers ...Purger,
) Service {
	return &DefaultService{
		repository:   repository,
		userProvider: userProvider,
		cache:        cache,
		purgers:      purgers,
	}
}

func (s *DefaultService) CreateUserDocument(ctx context.Context, userID uint64, document *Document) error {
	if document.Content == "" {
		return errors.BadRequest("Document text can't be empty", nil)
	}

	err := s.repository.Create(ctx, userID, document)
	if err != nil {
		return errors.StorageUnavailable(err)
	}

	// increase cache key, so any new fetch will get new version
	versionKey := fmt.Sprintf("user:%d:docs:version", userID)
	s.cache.IncrementVersion(ctx, versionKey)
	return nil
}

type PaginatedDocuments struct {
	Data []DocumentListItem `json:"data"`
	Meta DocumentsMeta      `json:"meta"`
}

type DocumentListItem struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *DefaultService) GetUserDocuments(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedDocuments, error) {
	// Get the current data version for this user's documents
	versionKey := fmt.Sprintf("user:%d:docs:version", userID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("docs:u:%d:v:%d:p:%d:ps:%d", userID, v, page, pageSize)

	var result PaginatedDocuments
	// get data from cache
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	documents, meta, err := s.repository.ListByOwner(ctx, userID, page, pageSize)
	if err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	items := make([]DocumentListItem, 0, len(documents))
	for _, d := range documents {
		items = append(items, DocumentListItem{
			ID:        d.ID,
			Title:     d.Title,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	result = PaginatedDocuments{Data: items, Meta: meta}
	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, result, 24*time.Hour)

	return &result, nil
}

type DocumentShowResponse struct {
	ID         uint64    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	OwnerEmail string    `json:"owner_email"`
	OwnerName  string    `json:"owner_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *DefaultService) GetDocumentByID(ctx context.Context, docID uint64, userID uint64) (*DocumentShowResponse, error) {
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	// owners only; anyone else sees a missing document
	if doc.UserID != userID {
		return nil, errors.NotFound("Document not found", nil)
	}

	return s.toShowResponse(ctx, doc)
}

// GetDocumentForGuest serves a document to an already-resolved guest scope.
// The invite token was validated upstream, so no ownership check here.
func (s *DefaultService) GetDocumentForGuest(ctx context.Context, docID uint64) (*DocumentShowResponse, error) {
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.toShowResponse(ctx, doc)
}

func (s *DefaultService) GetDocumentOwner(ctx context.Context, documentID uint64) (string, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	owner, err := s.userProvider.GetOwner(ctx, doc.UserID)
	if err != nil {
		return "", errors.StorageUnavailable(err)
	}
	return owner.Email, nil
}

func (s *DefaultService) GetDocumentTitle(ctx context.Context, documentID uint64) (string, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Title, nil
}

func (s *DefaultService) GetDocumentText(ctx context.Context, documentID uint64) (string, error) {
	doc, err := s.findDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

func (s *DefaultService) DeleteDocument(ctx context.Context, docID uint64, userID uint64) error {
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return err
	}

	if doc.UserID != userID {
		return errors.Forbidden("Only the owner can delete a document", nil)
	}

	// annotations and invitations go first so nothing dangles if the
	// document delete fails
	for _, purger := range s.purgers {
		if err := purger.DeleteByDocument(ctx, docID); err != nil {
			return errors.StorageUnavailable(err)
		}
	}

	if err := s.repository.Delete(ctx, docID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Document not found", err)
		}
		return errors.StorageUnavailable(err)
	}

	// increase cache key, so any new fetch will get new version
	versionKey := fmt.Sprintf("user:%d:docs:version", userID)
	s.cache.IncrementVersion(ctx, versionKey)
	return nil
}

func (s *DefaultService) findDocument(ctx context.Context, docID uint64) (*Document, error) {
	doc, err := s.repository.FindByID(ctx, docID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Document not found", err)
		}
		return nil, errors.StorageUnavailable(err)
	}
	return doc, nil
}

func (s *DefaultService) toShowResponse(ctx context.Context, doc *Document) (*DocumentShowResponse, error) {
	owner, err := s.userProvider.GetOwner(ctx, doc.UserID)
	if err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	return &DocumentShowResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		Content:    doc.Content,
		OwnerEmail: owner.Email,
		OwnerName:  owner.Name,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}
