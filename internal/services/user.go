package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"inviteplanner/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	roleRepo       domain.RoleRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	contextTimeout time.Duration
	now            func() time.Time
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(userRepo domain.UserRepository, roleRepo domain.RoleRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *userService) SignUp(ctx context.Context, email, password, name, lastName string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = normalizeEmail(email)
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	role, err := s.roleRepo.GetByCode(ctx, domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", domain.RoleUser, err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.NewUser(email, strings.TrimSpace(name), strings.TrimSpace(lastName), hash, salt, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	roleCodes, err := s.roleRepo.ListCodesByUserID(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load roles: %w", err)
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, roleCodes, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user.Name = strings.TrimSpace(user.Name)
	user.LastName = strings.TrimSpace(user.LastName)
	user.Email = normalizeEmail(user.Email)
	if !emailRegexp.MatchString(user.Email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *userService) PromoteToAdmin(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	role, err := s.roleRepo.GetByCode(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", domain.RoleAdmin, err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return user, nil
}
