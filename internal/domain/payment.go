package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for payment operations.
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrDuplicateReference = errors.New("reference number already in use")
	// ErrPaymentConflict is returned when the payment status changed between read and write.
	ErrPaymentConflict = errors.New("payment was modified concurrently")
	// ErrInvalidTransition is wrapped by every TransitionError.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrInvalidStatus is returned for a requested status outside the known set.
	ErrInvalidStatus = errors.New("invalid status transition")
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentVerified PaymentStatus = "VERIFIED"
	PaymentUsed     PaymentStatus = "USED"
	PaymentExpired  PaymentStatus = "EXPIRED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentVerified, PaymentUsed, PaymentExpired, PaymentRefunded:
		return true
	}
	return false
}

// TransitionError names the rule a rejected status change broke.
type TransitionError struct {
	From   PaymentStatus
	To     PaymentStatus
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// Transition is an accepted status change and the side effects it requires.
type Transition struct {
	From        PaymentStatus
	To          PaymentStatus
	StampUsedAt bool
}

// TransitionTo validates moving from s to next.
//
// PENDING is reachable from any state as an administrative override.
// VERIFIED only from PENDING, USED only from VERIFIED, EXPIRED only from
// PENDING or VERIFIED, and REFUNDED from anything but REFUNDED.
func (s PaymentStatus) TransitionTo(next PaymentStatus) (Transition, error) {
	t := Transition{From: s, To: next}
	switch next {
	case PaymentPending:
		return t, nil
	case PaymentVerified:
		if s != PaymentPending {
			return t, &TransitionError{From: s, To: next, Reason: "Only pending payments can be verified"}
		}
		return t, nil
	case PaymentUsed:
		if s != PaymentVerified {
			return t, &TransitionError{From: s, To: next, Reason: "Only verified payments can be used"}
		}
		t.StampUsedAt = true
		return t, nil
	case PaymentExpired:
		if s != PaymentPending && s != PaymentVerified {
			return t, &TransitionError{From: s, To: next, Reason: "Only pending or verified payments can be expired"}
		}
		return t, nil
	case PaymentRefunded:
		if s == PaymentRefunded {
			return t, &TransitionError{From: s, To: next, Reason: "Payment is already refunded"}
		}
		return t, nil
	}
	return t, ErrInvalidStatus
}

// Payment is a recorded payment that, once used, unlocks a plan's capabilities.
// swagger:model Payment
type Payment struct {
	ID              string        `json:"id"`
	Amount          float64       `json:"amount"`
	Currency        string        `json:"currency"`
	PaymentMethod   string        `json:"payment_method"`
	ReferenceNumber string        `json:"reference_number"`
	Description     string        `json:"description"`
	PlanType        string        `json:"plan_type"`
	Status          PaymentStatus `json:"status"`
	UsedAt          *time.Time    `json:"used_at"`
	UsedBy          string        `json:"used_by,omitempty"`
	CreatedBy       string        `json:"created_by"`
	IsDeleted       bool          `json:"-"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       *time.Time    `json:"-"`
}

// PaymentPatch carries a partial update. Nil fields are left unchanged.
type PaymentPatch struct {
	Amount          *float64
	Currency        *string
	PaymentMethod   *string
	ReferenceNumber *string
	Description     *string
	PlanType        *string
	Status          *PaymentStatus
	UsedAt          *time.Time
	UsedBy          *string
	UpdatedAt       time.Time
}

// PaymentRepository defines storage for payments. Soft-deleted payments are
// invisible to every method.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByReference(ctx context.Context, reference string) (*Payment, error)
	List(ctx context.Context, params PaginationParams) ([]*Payment, int, error)
	ListUsedBy(ctx context.Context, userID string) ([]*Payment, error)
	// Update atomically applies patch to the payment. When expectedStatus is
	// set the write only happens if the stored status still equals it.
	// Returns ErrPaymentNotFound when no payment matched, including when
	// the stored status no longer equals expectedStatus.
	Update(ctx context.Context, id string, expectedStatus *PaymentStatus, patch PaymentPatch) (*Payment, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// PaymentService defines payment administration and redemption.
type PaymentService interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	List(ctx context.Context, params PaginationParams) ([]*Payment, int, error)
	Update(ctx context.Context, id string, patch PaymentPatch) (*Payment, error)
	Delete(ctx context.Context, id string) error
	// Redeem marks the verified payment with the given reference as used by userID.
	Redeem(ctx context.Context, userID, reference string) (*Payment, error)
}
