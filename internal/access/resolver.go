package access

import (
	"collaborative-annotation-engine/internal/errors"
	"context"
	"time"
)

// Identity is the per-request author identity. It is captured by value on
// annotations and replies, never stored as a foreign key.
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Scope is the resolved access context every annotation operation runs
// under. Owner sessions and invite tokens both end up here, so everything
// downstream stays scope-agnostic.
type Scope struct {
	Identity   Identity
	DocumentID uint64
	OwnerEmail string
	IsOwner    bool
}

// Invite is the slice of an invitation the resolver needs
type Invite struct {
	DocumentID   uint64
	InviteeEmail string
	InviteeName  string
	ExpiresAt    time.Time
}

type DocumentProvider interface {
	GetDocumentOwner(ctx context.Context, documentID uint64) (string, error)
}

type InviteProvider interface {
	GetInvite(ctx context.Context, token string) (*Invite, error)
}

type Resolver struct {
	documents DocumentProvider
	invites   InviteProvider
	now       func() time.Time
}

func NewResolver(documents DocumentProvider, invites InviteProvider) *Resolver {
	return &Resolver{
		documents: documents,
		invites:   invites,
		now:       time.Now,
	}
}

// ResolveOwner authenticates an owner-scoped request. The session identity
// must match the document's owner; anything else reads as a missing document
// so the route doesn't leak which documents exist.
func (r *Resolver) ResolveOwner(ctx context.Context, identity Identity, documentID uint64) (*Scope, error) {
	ownerEmail, err := r.documents.GetDocumentOwner(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if ownerEmail != identity.Email {
		return nil, errors.NotFound("Document not found", nil)
	}

	return &Scope{
		Identity:   identity,
		DocumentID: documentID,
		OwnerEmail: ownerEmail,
		IsOwner:    true,
	}, nil
}

// ResolveGuest authenticates an invite-token request. The owner email is
// resolved here because the guest path has no other way to learn who owns
// the document, and annotations must capture it at creation time.
func (r *Resolver) ResolveGuest(ctx context.Context, token string) (*Scope, error) {
	invite, err := r.invites.GetInvite(ctx, token)
	if err != nil {
		return nil, err
	}

	if r.now().After(invite.ExpiresAt) {
		return nil, errors.Unauthorized("Invite link has expired", nil)
	}

	ownerEmail, err := r.documents.GetDocumentOwner(ctx, invite.DocumentID)
	if err != nil {
		return nil, err
	}

	return &Scope{
		Identity: Identity{
			Email: invite.InviteeEmail,
			Name:  invite.InviteeName,
		},
		DocumentID: invite.DocumentID,
		OwnerEmail: ownerEmail,
		IsOwner:    false,
	}, nil
}
