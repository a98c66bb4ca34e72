package document

import (
	"context"
	"testing"

	apiError "collaborative-annotation-engine/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of the DocumentRepository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID uint64, document *Document) error {
	args := m.Called(ctx, userID, document)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint64) (*Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, userID uint64, page, pageSize int) ([]Document, DocumentsMeta, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, DocumentsMeta{}, args.Error(2)
	}
	return args.Get(0).([]Document), args.Get(1).(DocumentsMeta), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mock implementation of the UserProvider interface
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetOwner(ctx context.Context, id uint64) (*Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Owner), args.Error(1)
}

// mock implementation of the Purger interface
type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) DeleteByDocument(ctx context.Context, documentID uint64) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apiError.APIError
	if !assert.ErrorAs(t, err, &apiErr) {
		return 0
	}
	return apiErr.Status
}

func stored() *Document {
	return &Document{
		ID:      7,
		Title:   "Welcome",
		Content: "Welcome to machine learning.",
		UserID:  1,
	}
}

func TestCreateUserDocument_EmptyText(t *testing.T) {
	service := NewService(new(MockRepository), new(MockUsers), nil)

	err := service.CreateUserDocument(context.Background(), 1, &Document{Title: "Empty"})
	assert.Equal(t, 400, statusOf(t, err))
}

func TestGetDocumentByID_OwnerOnly(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, uint64(7)).Return(stored(), nil)

	service := NewService(repo, new(MockUsers), nil)

	_, err := service.GetDocumentByID(context.Background(), 7, 2)
	assert.Equal(t, 404, statusOf(t, err))
}

func TestGetDocumentForGuest_SkipsOwnershipCheck(t *testing.T) {
	repo := new(MockRepository)
	users := new(MockUsers)
	repo.On("FindByID", mock.Anything, uint64(7)).Return(stored(), nil)
	users.On("GetOwner", mock.Anything, uint64(1)).Return(&Owner{ID: 1, Email: "owner@example.com", Name: "Owner"}, nil)

	service := NewService(repo, users, nil)

	doc, err := service.GetDocumentForGuest(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, "Welcome to machine learning.", doc.Content)
	assert.Equal(t, "owner@example.com", doc.OwnerEmail)
}

func TestServiceDeleteDocument_NotOwner(t *testing.T) {
	repo := new(MockRepository)
	purger := new(MockPurger)
	repo.On("FindByID", mock.Anything, uint64(7)).Return(stored(), nil)

	service := NewService(repo, new(MockUsers), nil, purger)

	err := service.DeleteDocument(context.Background(), 7, 2)
	assert.Equal(t, 403, statusOf(t, err))
	purger.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteDocument_PurgesDependentsFirst(t *testing.T) {
	repo := new(MockRepository)
	annotations := new(MockPurger)
	invitations := new(MockPurger)

	repo.On("FindByID", mock.Anything, uint64(7)).Return(stored(), nil)
	annotations.On("DeleteByDocument", mock.Anything, uint64(7)).Return(nil)
	invitations.On("DeleteByDocument", mock.Anything, uint64(7)).Return(nil)
	repo.On("Delete", mock.Anything, uint64(7)).Return(nil)

	service := NewService(repo, new(MockUsers), nil, annotations, invitations)

	err := service.DeleteDocument(context.Background(), 7, 1)
	assert.NoError(t, err)
	annotations.AssertExpectations(t)
	invitations.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestDeleteDocument_PurgeFailureAborts(t *testing.T) {
	repo := new(MockRepository)
	purger := new(MockPurger)

	repo.On("FindByID", mock.Anything, uint64(7)).Return(stored(), nil)
	purger.On("DeleteByDocument", mock.Anything, uint64(7)).Return(gorm.ErrInvalidDB)

	service := NewService(repo, new(MockUsers), nil, purger)

	err := service.DeleteDocument(context.Background(), 7, 1)
	assert.Equal(t, 500, statusOf(t, err))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
