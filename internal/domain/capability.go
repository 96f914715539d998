package domain

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned when a user has no invitation capacity left.
var ErrQuotaExceeded = errors.New("invitation quota exceeded")

// Plans maps a plan type to the number of invitations it unlocks.
type Plans map[string]int

// Known reports whether planType is a configured plan.
func (p Plans) Known(planType string) bool {
	_, ok := p[planType]
	return ok
}

// Capabilities summarizes what a user's used payments entitle them to.
// swagger:model Capabilities
type Capabilities struct {
	UserID               string   `json:"user_id"`
	InvitationQuota      int      `json:"invitation_quota"`
	InvitationsUsed      int      `json:"invitations_used"`
	InvitationsRemaining int      `json:"invitations_remaining"`
	Plans                []string `json:"plans"`
}

// CapabilityService computes per-user entitlements.
type CapabilityService interface {
	ForUser(ctx context.Context, userID string) (*Capabilities, error)
}
