package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviteplanner/internal/delivery/http/helpers"
	"inviteplanner/internal/delivery/http/middleware"
	"inviteplanner/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	getByIDUser *domain.User
	getByIDErr  error
	updateErr   error
	lastUpdate  *domain.User
	signUpUser  *domain.User
	signUpErr   error
	lastSignUp  []string
	loginToken  string
	loginUser   *domain.User
	loginErr    error
}

func (f *fakeUserService) SignUp(ctx context.Context, email, password, name, lastName string) (*domain.User, error) {
	f.lastSignUp = []string{email, password, name, lastName}
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpUser, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDUser, nil
}

func (f *fakeUserService) Update(ctx context.Context, user *domain.User) error {
	f.lastUpdate = user
	return f.updateErr
}

func (f *fakeUserService) PromoteToAdmin(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

// fakeCapabilityService implements domain.CapabilityService for handler tests.
type fakeCapabilityService struct {
	caps *domain.Capabilities
	err  error
}

func (f *fakeCapabilityService) ForUser(ctx context.Context, userID string) (*domain.Capabilities, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.caps, nil
}

func TestUserController_SignUp(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"email":"alice@example.com","password":"secret123","name":"Alice","last_name":"Liddell"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "missing fields",
			body:           `{"email":"alice@example.com"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "password is required",
		},
		{
			name:           "short password",
			body:           `{"email":"alice@example.com","password":"short","name":"Alice"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "password must be at least 8 characters",
		},
		{
			name:           "unknown field",
			body:           `{"email":"alice@example.com","password":"secret123","name":"Alice","role":"admin"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:         "email taken",
			body:         `{"email":"alice@example.com","password":"secret123","name":"Alice"}`,
			fakeErr:      domain.ErrDuplicateEmail,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "service error",
			body:         `{"email":"alice@example.com","password":"secret123","name":"Alice"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{
				signUpUser: &domain.User{ID: "user-1", Email: "alice@example.com", Name: "Alice", CreatedAt: now, UpdatedAt: now},
				signUpErr:  tt.fakeErr,
			}
			ctrl := NewUserController(testLogger, fake, nil)

			req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusCreated {
				var u domain.User
				decodeData(t, envelope, &u)
				assert.Equal(t, "user-1", u.ID)
				assert.Equal(t, []string{"alice@example.com", "secret123", "Alice", "Liddell"}, fake.lastSignUp)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestUserController_Login(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"email":"alice@example.com","password":"secret123"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing password",
			body:         `{"email":"alice@example.com"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "invalid credentials",
			body:         `{"email":"alice@example.com","password":"wrong-pass"}`,
			fakeErr:      domain.ErrInvalidCredentials,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{
				loginToken: "bearer-token-xyz",
				loginUser:  &domain.User{ID: "id-1", Email: "alice@example.com", Name: "Alice", CreatedAt: now, UpdatedAt: now},
				loginErr:   tt.fakeErr,
			}
			ctrl := NewUserController(testLogger, fake, nil)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				var resp LoginResponse
				decodeData(t, envelope, &resp)
				assert.Equal(t, "bearer-token-xyz", resp.Token)
				assert.Equal(t, "Bearer", resp.TokenType)
				require.NotNil(t, resp.User)
				assert.Equal(t, "id-1", resp.User.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestUserController_GetMe(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		fakeUser      *domain.User
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
		checkUser     func(t *testing.T, u *domain.User)
	}{
		{
			name:          "success",
			contextUserID: "user-123",
			fakeUser:      &domain.User{ID: "user-123", Email: "a@b.com", Name: "Alice", CreatedAt: time.Now(), UpdatedAt: time.Now()},
			wantStatus:    http.StatusOK,
			checkUser: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "user-123", u.ID)
				assert.Equal(t, "a@b.com", u.Email)
				assert.Equal(t, "Alice", u.Name)
			},
		},
		{
			name:          "no user in context",
			contextUserID: "",
			wantStatus:    http.StatusUnauthorized,
			wantBodyCode:  helpers.ErrCodeUnauthorized,
		},
		{
			name:          "user not found",
			contextUserID: "user-123",
			fakeErr:       domain.ErrUserNotFound,
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeNotFound,
		},
		{
			name:          "service error",
			contextUserID: "user-123",
			fakeErr:       assert.AnError,
			wantStatus:    http.StatusInternalServerError,
			wantBodyCode:  helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{getByIDUser: tt.fakeUser, getByIDErr: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake, nil)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/me", nil)
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.GetMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK && tt.checkUser != nil {
				var u domain.User
				decodeData(t, envelope, &u)
				tt.checkUser(t, &u)
			}
			if tt.wantBodyCode != "" && tt.wantStatus != http.StatusOK {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestUserController_UpdateMe(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name           string
		contextUserID  string
		body           string
		fakeGetErr     error
		fakeUpdateErr  error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
		checkUpdate    func(t *testing.T, u *domain.User)
	}{
		{
			name:          "success update name",
			contextUserID: "user-123",
			body:          `{"name":"Alice Updated","last_name":"Smith"}`,
			wantStatus:    http.StatusOK,
			checkUpdate: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "Alice Updated", u.Name)
				assert.Equal(t, "Smith", u.LastName)
				assert.Equal(t, "a@b.com", u.Email)
			},
		},
		{
			name:          "success update email",
			contextUserID: "user-123",
			body:          `{"email":"new@example.com"}`,
			wantStatus:    http.StatusOK,
			checkUpdate: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "new@example.com", u.Email)
				assert.Equal(t, "Alice", u.Name)
			},
		},
		{
			name:          "no user in context",
			contextUserID: "",
			body:          `{"name":"x"}`,
			wantStatus:    http.StatusUnauthorized,
			wantBodyCode:  helpers.ErrCodeUnauthorized,
		},
		{
			name:           "invalid json",
			contextUserID:  "user-123",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "invalid email format",
			contextUserID:  "user-123",
			body:           `{"email":"not-an-email"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "email",
		},
		{
			name:          "duplicate email",
			contextUserID: "user-123",
			body:          `{"email":"taken@example.com"}`,
			fakeUpdateErr: domain.ErrDuplicateEmail,
			wantStatus:    http.StatusConflict,
			wantBodyCode:  helpers.ErrCodeConflict,
		},
		{
			name:          "user not found on get",
			contextUserID: "user-123",
			body:          `{"name":"x"}`,
			fakeGetErr:    domain.ErrUserNotFound,
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{
				getByIDUser: &domain.User{ID: "user-123", Email: "a@b.com", Name: "Alice", CreatedAt: now, UpdatedAt: now},
				getByIDErr:  tt.fakeGetErr,
				updateErr:   tt.fakeUpdateErr,
			}
			ctrl := NewUserController(testLogger, fake, nil)

			req := httptest.NewRequest(http.MethodPatch, "http://test/users/me", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.UpdateMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.lastUpdate)
				tt.checkUpdate(t, fake.lastUpdate)
				return
			}
			require.NotNil(t, envelope.Error)
			if tt.wantBodyCode != "" {
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestUserController_GetCapabilities(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		fake          *fakeCapabilityService
		wantStatus    int
		wantBodyCode  string
	}{
		{
			name:          "success",
			contextUserID: "user-123",
			fake: &fakeCapabilityService{caps: &domain.Capabilities{
				UserID: "user-123", InvitationQuota: 21, InvitationsUsed: 4, InvitationsRemaining: 17, Plans: []string{"premium"},
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:         "no user in context",
			fake:         &fakeCapabilityService{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:          "service error",
			contextUserID: "user-123",
			fake:          &fakeCapabilityService{err: assert.AnError},
			wantStatus:    http.StatusInternalServerError,
			wantBodyCode:  helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewUserController(testLogger, &fakeUserService{}, tt.fake)
			req := httptest.NewRequest(http.MethodGet, "http://test/users/me/capabilities", nil)
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.GetCapabilities(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				var caps domain.Capabilities
				decodeData(t, envelope, &caps)
				assert.Equal(t, 17, caps.InvitationsRemaining)
				assert.Equal(t, []string{"premium"}, caps.Plans)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}
