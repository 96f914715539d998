package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"inviteplanner/internal/domain"
	"inviteplanner/internal/paging"
)

const maxTitleLen = 200

type invitationService struct {
	invitationRepo domain.InvitationRepository
	capabilities   domain.CapabilityService
	paginator      *paging.Paginator[*domain.Invitation]
	contextTimeout time.Duration
	now            func() time.Time
}

// NewInvitationService creates an InvitationService. When capabilities is
// nil, creation is not quota-gated.
func NewInvitationService(invitationRepo domain.InvitationRepository, capabilities domain.CapabilityService, pageCfg paging.Config, timeout time.Duration) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		capabilities:   capabilities,
		paginator:      paging.New[*domain.Invitation](invitationRepo, domain.InvitationID, pageCfg),
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func cleanHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(title) > maxTitleLen {
		return fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, maxTitleLen)
	}
	return nil
}

func validateEventType(eventType string) error {
	if !slices.Contains(domain.EventTypes, eventType) {
		return fmt.Errorf("%w: event_type must be one of %s", domain.ErrInvalidInput, strings.Join(domain.EventTypes, ", "))
	}
	return nil
}

func (s *invitationService) Create(ctx context.Context, inv *domain.Invitation) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if inv.UserID == "" {
		return fmt.Errorf("%w: invitation owner is required", domain.ErrInvalidInput)
	}
	inv.Title = strings.TrimSpace(inv.Title)
	if err := validateTitle(inv.Title); err != nil {
		return err
	}
	if err := validateEventType(inv.EventType); err != nil {
		return err
	}
	inv.Venue = strings.TrimSpace(inv.Venue)
	inv.Hosts = cleanHosts(inv.Hosts)

	allowed := -1
	if s.capabilities != nil {
		caps, err := s.capabilities.ForUser(ctx, inv.UserID)
		if err != nil {
			return fmt.Errorf("failed to load capabilities: %w", err)
		}
		if caps.InvitationsRemaining <= 0 {
			return domain.ErrQuotaExceeded
		}
		allowed = caps.InvitationsUsed + caps.InvitationsRemaining
	}

	now := s.now()
	inv.IsDeleted = false
	inv.DeletedAt = nil
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	if allowed >= 0 {
		return s.confirmQuota(ctx, inv, allowed)
	}
	return nil
}

// confirmQuota recounts after the insert so that creates racing past the
// capability check cannot leave the owner above allowed. The losing insert is
// soft-deleted.
func (s *invitationService) confirmQuota(ctx context.Context, inv *domain.Invitation, allowed int) error {
	count, err := s.invitationRepo.CountByUser(ctx, inv.UserID)
	if err == nil && count <= int64(allowed) {
		return nil
	}
	if delErr := s.invitationRepo.SoftDelete(ctx, inv.UserID, inv.ID, s.now()); delErr != nil {
		return fmt.Errorf("failed to roll back invitation over quota: %w", errors.Join(err, delErr))
	}
	inv.ID = ""
	if err != nil {
		return fmt.Errorf("failed to confirm invitation quota: %w", err)
	}
	return domain.ErrQuotaExceeded
}

func (s *invitationService) List(ctx context.Context, userID string, params domain.InvitationListParams) (*domain.InvitationPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page, err := s.paginator.Page(ctx, paging.Request{
		OwnerID:  userID,
		Next:     params.Next,
		Previous: params.Previous,
		Limit:    params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return page, nil
}

func (s *invitationService) Get(ctx context.Context, userID, id string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) Update(ctx context.Context, userID, id string, patch domain.InvitationPatch) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if patch.EventType != nil {
		if err := validateEventType(*patch.EventType); err != nil {
			return nil, err
		}
	}
	if patch.Venue != nil {
		venue := strings.TrimSpace(*patch.Venue)
		patch.Venue = &venue
	}
	if patch.Hosts != nil {
		hosts := cleanHosts(*patch.Hosts)
		patch.Hosts = &hosts
	}
	patch.UpdatedAt = s.now()

	inv, err := s.invitationRepo.Update(ctx, userID, id, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.invitationRepo.SoftDelete(ctx, userID, id, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}
