package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"inviteplanner/internal/domain"
)

type capabilityService struct {
	paymentRepo     domain.PaymentRepository
	invitationRepo  domain.InvitationRepository
	plans           domain.Plans
	freeInvitations int
	contextTimeout  time.Duration
}

// NewCapabilityService creates a CapabilityService. Every user gets
// freeInvitations; each payment they redeemed adds its plan's quota.
func NewCapabilityService(paymentRepo domain.PaymentRepository, invitationRepo domain.InvitationRepository, plans domain.Plans, freeInvitations int, timeout time.Duration) domain.CapabilityService {
	return &capabilityService{
		paymentRepo:     paymentRepo,
		invitationRepo:  invitationRepo,
		plans:           plans,
		freeInvitations: freeInvitations,
		contextTimeout:  timeout,
	}
}

func (s *capabilityService) ForUser(ctx context.Context, userID string) (*domain.Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	used, err := s.paymentRepo.ListUsedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list redeemed payments: %w", err)
	}
	count, err := s.invitationRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count invitations: %w", err)
	}

	caps := &domain.Capabilities{
		UserID:          userID,
		InvitationQuota: s.freeInvitations,
		InvitationsUsed: int(count),
		Plans:           []string{},
	}
	seen := make(map[string]bool)
	for _, p := range used {
		quota, ok := s.plans[p.PlanType]
		if !ok {
			continue
		}
		caps.InvitationQuota += quota
		if !seen[p.PlanType] {
			seen[p.PlanType] = true
			caps.Plans = append(caps.Plans, p.PlanType)
		}
	}
	sort.Strings(caps.Plans)
	caps.InvitationsRemaining = max(caps.InvitationQuota-caps.InvitationsUsed, 0)
	return caps, nil
}
