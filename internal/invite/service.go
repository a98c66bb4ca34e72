package invite

import (
	"collaborative-annotation-engine/internal/access"
	"collaborative-annotation-engine/internal/errors"
	"collaborative-annotation-engine/internal/worker"
	"context"
	"crypto/rand"
	"encoding/hex"
	defError "errors"
	"log"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, documentID uint64, requesterEmail, inviteeEmail, inviteeName string) (*InvitationResponse, error)
	List(ctx context.Context, documentID uint64, requesterEmail string, page, pageSize int) ([]InvitationResponse, int64, error)
	Revoke(ctx context.Context, documentID, inviteID uint64, requesterEmail string) error
	GetInvite(ctx context.Context, token string) (*access.Invite, error)
}

type Mailer interface {
	SendInvite(ctx context.Context, to, name, documentTitle, token string) error
}

type DocumentProvider interface {
	GetDocumentOwner(ctx context.Context, documentID uint64) (string, error)
	GetDocumentTitle(ctx context.Context, documentID uint64) (string, error)
}

type TaskRunner interface {
	Submit(worker.Task)
}

type DefaultService struct {
	repository InviteRepository
	documents  DocumentProvider
	mailer     Mailer
	tasks      TaskRunner
	ttl        time.Duration
}

func NewService(
	repository InviteRepository,
	documents DocumentProvider,
	mailer Mailer,
	tasks TaskRunner,
	ttl time.Duration,
) Service {
	return &DefaultService{
		repository: repository,
		documents:  documents,
		mailer:     mailer,
		tasks:      tasks,
		ttl:        ttl,
	}
}

func (s *DefaultService) Create(ctx context.Context, documentID uint64, requesterEmail, inviteeEmail, inviteeName string) (*InvitationResponse, error) {
	ownerEmail, err := s.documents.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if ownerEmail != requesterEmail {
		return nil, errors.Forbidden("Only the document owner can invite collaborators", nil)
	}

	title, err := s.documents.GetDocumentTitle(ctx, documentID)
	if err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, errors.Internal(err)
	}

	invitation := &Invitation{
		Token:        token,
		DocumentID:   documentID,
		InviteeEmail: inviteeEmail,
		InviteeName:  inviteeName,
		ExpiresAt:    time.Now().UTC().Add(s.ttl),
	}

	if err := s.repository.Create(ctx, invitation); err != nil {
		return nil, errors.StorageUnavailable(err)
	}

	// Email delivery is best-effort: the invitation exists either way, and
	// the owner can still share the link by hand
	s.tasks.Submit(func(taskCtx context.Context) error {
		return s.mailer.SendInvite(taskCtx, inviteeEmail, inviteeName, title, token)
	})

	response := invitation.ToResponse()
	return &response, nil
}

func (s *DefaultService) List(ctx context.Context, documentID uint64, requesterEmail string, page, pageSize int) ([]InvitationResponse, int64, error) {
	ownerEmail, err := s.documents.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return nil, 0, err
	}
	if ownerEmail != requesterEmail {
		return nil, 0, errors.Forbidden("Only the document owner can list invitations", nil)
	}

	invitations, total, err := s.repository.ListByDocument(ctx, documentID, page, pageSize)
	if err != nil {
		return nil, 0, errors.StorageUnavailable(err)
	}

	result := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		result = append(result, invitations[i].ToResponse())
	}
	return result, total, nil
}

func (s *DefaultService) Revoke(ctx context.Context, documentID, inviteID uint64, requesterEmail string) error {
	ownerEmail, err := s.documents.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return err
	}
	if ownerEmail != requesterEmail {
		return errors.Forbidden("Only the document owner can revoke invitations", nil)
	}

	if err := s.repository.Delete(ctx, documentID, inviteID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Invitation not found", err)
		}
		return errors.StorageUnavailable(err)
	}

	log.Printf("Invitation %d for document %d revoked", inviteID, documentID)
	return nil
}

// GetInvite backs the access resolver's guest path. Unknown and revoked
// tokens are indistinguishable on purpose.
func (s *DefaultService) GetInvite(ctx context.Context, token string) (*access.Invite, error) {
	invitation, err := s.repository.FindByToken(ctx, token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Unauthorized("Invalid or expired invite", err)
		}
		return nil, errors.StorageUnavailable(err)
	}

	return &access.Invite{
		DocumentID:   invitation.DocumentID,
		InviteeEmail: invitation.InviteeEmail,
		InviteeName:  invitation.InviteeName,
		ExpiresAt:    invitation.ExpiresAt,
	}, nil
}

func generateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
