package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inviteplanner/internal/domain"
)

type paymentService struct {
	paymentRepo    domain.PaymentRepository
	plans          domain.Plans
	contextTimeout time.Duration
	now            func() time.Time
}

// NewPaymentService creates a PaymentService. plans lists the plan types a
// payment may be recorded for; an empty set accepts any plan type.
func NewPaymentService(paymentRepo domain.PaymentRepository, plans domain.Plans, timeout time.Duration) domain.PaymentService {
	return &paymentService{
		paymentRepo:    paymentRepo,
		plans:          plans,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *paymentService) validatePlan(planType string) error {
	if len(s.plans) > 0 && !s.plans.Known(planType) {
		return fmt.Errorf("%w: unknown plan type %q", domain.ErrInvalidInput, planType)
	}
	return nil
}

func (s *paymentService) Create(ctx context.Context, p *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p.ReferenceNumber = strings.TrimSpace(p.ReferenceNumber)
	if p.ReferenceNumber == "" {
		return fmt.Errorf("%w: reference number is required", domain.ErrInvalidInput)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if err := s.validatePlan(p.PlanType); err != nil {
		return err
	}

	if _, err := s.paymentRepo.GetByReference(ctx, p.ReferenceNumber); err == nil {
		return domain.ErrDuplicateReference
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return fmt.Errorf("failed to check reference number: %w", err)
	}

	now := s.now()
	p.Status = domain.PaymentPending
	p.UsedAt = nil
	p.UsedBy = ""
	p.IsDeleted = false
	p.DeletedAt = nil
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return err
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *paymentService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

func (s *paymentService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Payment, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	payments, total, err := s.paymentRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, total, nil
}

// Update applies a partial update. A status change is validated against the
// payment's current status and written only while that status still holds.
func (s *paymentService) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if patch.ReferenceNumber != nil {
		ref := strings.TrimSpace(*patch.ReferenceNumber)
		if ref == "" {
			return nil, fmt.Errorf("%w: reference number is required", domain.ErrInvalidInput)
		}
		patch.ReferenceNumber = &ref
		if ref != current.ReferenceNumber {
			other, err := s.paymentRepo.GetByReference(ctx, ref)
			switch {
			case err == nil && other.ID != current.ID:
				return nil, domain.ErrDuplicateReference
			case err != nil && !errors.Is(err, domain.ErrPaymentNotFound):
				return nil, fmt.Errorf("failed to check reference number: %w", err)
			}
		}
	}
	if patch.Amount != nil && *patch.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if patch.PlanType != nil {
		if err := s.validatePlan(*patch.PlanType); err != nil {
			return nil, err
		}
	}

	// Redemption fields only move through Redeem.
	patch.UsedAt = nil
	patch.UsedBy = nil

	var expected *domain.PaymentStatus
	if patch.Status != nil {
		t, err := current.Status.TransitionTo(*patch.Status)
		if err != nil {
			return nil, err
		}
		if t.StampUsedAt {
			usedAt := s.now()
			patch.UsedAt = &usedAt
		}
		from := current.Status
		expected = &from
	}
	patch.UpdatedAt = s.now()

	return s.write(ctx, id, expected, patch)
}

// write persists patch and resolves a missed optimistic predicate into either
// a conflict or a not-found.
func (s *paymentService) write(ctx context.Context, id string, expected *domain.PaymentStatus, patch domain.PaymentPatch) (*domain.Payment, error) {
	updated, err := s.paymentRepo.Update(ctx, id, expected, patch)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, domain.ErrDuplicateReference) {
		return nil, err
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	if expected == nil {
		return nil, domain.ErrPaymentNotFound
	}
	if _, getErr := s.paymentRepo.GetByID(ctx, id); getErr == nil {
		return nil, domain.ErrPaymentConflict
	}
	return nil, domain.ErrPaymentNotFound
}

func (s *paymentService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.paymentRepo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

func (s *paymentService) Redeem(ctx context.Context, userID, reference string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference number is required", domain.ErrInvalidInput)
	}
	current, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if _, err := current.Status.TransitionTo(domain.PaymentUsed); err != nil {
		return nil, err
	}

	now := s.now()
	used := domain.PaymentUsed
	from := current.Status
	patch := domain.PaymentPatch{
		Status:    &used,
		UsedAt:    &now,
		UsedBy:    &userID,
		UpdatedAt: now,
	}
	return s.write(ctx, current.ID, &from, patch)
}
