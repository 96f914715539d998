package domain

import (
	"context"
	"time"

	"inviteplanner/internal/paging"
)

// Event types an invitation can announce.
const (
	EventTypeWedding     = "wedding"
	EventTypeBirthday    = "birthday"
	EventTypeAnniversary = "anniversary"
	EventTypeBabyShower  = "baby_shower"
	EventTypeGraduation  = "graduation"
	EventTypeOther       = "other"
)

// EventTypes lists every accepted event type.
var EventTypes = []string{
	EventTypeWedding,
	EventTypeBirthday,
	EventTypeAnniversary,
	EventTypeBabyShower,
	EventTypeGraduation,
	EventTypeOther,
}

// Invitation is an event invitation owned by one user. ID is a sortable
// identifier assigned by the store; newer invitations sort after older ones.
// swagger:model Invitation
type Invitation struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	EventType string     `json:"event_type"`
	EventDate time.Time  `json:"event_date"`
	Venue     string     `json:"venue"`
	Hosts     []string   `json:"hosts"`
	Message   string     `json:"message"`
	IsDeleted bool       `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// InvitationID returns the invitation's identifier. Used as the paging key.
func InvitationID(inv *Invitation) string { return inv.ID }

// InvitationPatch carries a partial update. Nil fields are left unchanged.
type InvitationPatch struct {
	Title     *string
	EventType *string
	EventDate *time.Time
	Venue     *string
	Hosts     *[]string
	Message   *string
	UpdatedAt time.Time
}

// InvitationPage is one cursor page of a user's invitations.
type InvitationPage = paging.Page[*Invitation]

// InvitationRepository defines storage for invitations. Every read and write
// is scoped to the owning user and ignores soft-deleted invitations.
type InvitationRepository interface {
	paging.Store[*Invitation]
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, userID, id string) (*Invitation, error)
	Update(ctx context.Context, userID, id string, patch InvitationPatch) (*Invitation, error)
	SoftDelete(ctx context.Context, userID, id string, at time.Time) error
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// InvitationListParams selects one page of a user's invitations.
type InvitationListParams struct {
	Next     string
	Previous string
	Limit    int
}

// InvitationService defines invitation use cases for an authenticated user.
type InvitationService interface {
	Create(ctx context.Context, inv *Invitation) error
	List(ctx context.Context, userID string, params InvitationListParams) (*InvitationPage, error)
	Get(ctx context.Context, userID, id string) (*Invitation, error)
	Update(ctx context.Context, userID, id string, patch InvitationPatch) (*Invitation, error)
	Delete(ctx context.Context, userID, id string) error
}
