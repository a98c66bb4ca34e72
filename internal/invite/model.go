package invite

import (
	"time"
)

// Invitation grants one invitee time-limited guest access to one document.
// The token is the whole credential; guests have no account.
type Invitation struct {
	ID           uint64
	Token        string `gorm:"uniqueIndex"`
	DocumentID   uint64 `gorm:"index"`
	InviteeEmail string
	InviteeName  string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// InvitationResponse is the API shape; the token is only ever shown to the
// owner who created it
type InvitationResponse struct {
	ID           uint64    `json:"id"`
	Token        string    `json:"token"`
	DocumentID   uint64    `json:"document_id"`
	InviteeEmail string    `json:"invitee_email"`
	InviteeName  string    `json:"invitee_name"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (i *Invitation) ToResponse() InvitationResponse {
	return InvitationResponse{
		ID:           i.ID,
		Token:        i.Token,
		DocumentID:   i.DocumentID,
		InviteeEmail: i.InviteeEmail,
		InviteeName:  i.InviteeName,
		ExpiresAt:    i.ExpiresAt,
		CreatedAt:    i.CreatedAt,
	}
}
