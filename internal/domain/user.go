package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Role codes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, lastName, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Role represents an application role (e.g. admin, user)
type Role struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// NewRole returns a new Role with the given id and code.
func NewRole(id, code string) *Role {
	return &Role{ID: id, Code: code}
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the principal carries the given role code.
func (p Principal) HasRole(code string) bool {
	for _, r := range p.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	AssignRole(ctx context.Context, userID, roleID string) error
}

// RoleRepository defines the interface for role storage
type RoleRepository interface {
	GetByCode(ctx context.Context, code string) (*Role, error)
	// ListCodesByUserID returns the codes of the roles assigned to userID, sorted.
	ListCodesByUserID(ctx context.Context, userID string) ([]string, error)
}

// UserService defines the business logic for user accounts and authentication.
type UserService interface {
	SignUp(ctx context.Context, email, password, name, lastName string) (*User, error)
	// Login returns a signed token and the user. Unknown emails and wrong passwords both yield ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	// PromoteToAdmin grants the admin role to the user with the given email.
	PromoteToAdmin(ctx context.Context, email string) (*User, error)
}
