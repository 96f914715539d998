package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"inviteplanner/internal/domain"
	"inviteplanner/internal/paging"
)

func hexID(n int) string { return fmt.Sprintf("%024x", n) }

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	assigned  map[string][]string
	seq       int
	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:     make(map[string]*domain.User),
		assigned: make(map[string][]string),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.assigned[userID] = append(f.assigned[userID], roleID)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository on top of the assignments
// recorded by a fakeUserRepo.
type fakeRoleRepo struct {
	users  *fakeUserRepo
	byCode map[string]*domain.Role
}

func newFakeRoleRepo(users *fakeUserRepo) *fakeRoleRepo {
	return &fakeRoleRepo{
		users: users,
		byCode: map[string]*domain.Role{
			domain.RoleAdmin: domain.NewRole("role-admin", domain.RoleAdmin),
			domain.RoleUser:  domain.NewRole("role-user", domain.RoleUser),
		},
	}
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if r, ok := f.byCode[code]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListCodesByUserID(ctx context.Context, userID string) ([]string, error) {
	codes := []string{}
	for _, id := range f.users.assigned[userID] {
		for _, r := range f.byCode {
			if r.ID == id {
				codes = append(codes, r.Code)
			}
		}
	}
	sort.Strings(codes)
	return codes, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash:" + salt + ":" + password, nil
}

func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err       error
	lastRoles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRoles = roles
	return "token-" + userID, nil
}

// fakeInvitationRepo is an in-memory domain.InvitationRepository.
type fakeInvitationRepo struct {
	records  []*domain.Invitation
	seq      int
	findErr  error
	countErr error
}

func (f *fakeInvitationRepo) matching(fl paging.Filter, order paging.SortOrder) []*domain.Invitation {
	var out []*domain.Invitation
	for _, r := range f.records {
		if r.IsDeleted || r.UserID != fl.OwnerID {
			continue
		}
		if fl.AfterID != "" && r.ID <= fl.AfterID {
			continue
		}
		if fl.BeforeID != "" && r.ID >= fl.BeforeID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == paging.Descending {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeInvitationRepo) FindMany(ctx context.Context, fl paging.Filter, order paging.SortOrder, limit int) ([]*domain.Invitation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := f.matching(fl, order)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInvitationRepo) FindOne(ctx context.Context, fl paging.Filter, order paging.SortOrder) (*domain.Invitation, bool, error) {
	if f.findErr != nil {
		return nil, false, f.findErr
	}
	out := f.matching(fl, order)
	if len(out) == 0 {
		return nil, false, nil
	}
	return out[0], true, nil
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	f.seq++
	inv.ID = hexID(f.seq)
	cp := *inv
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeInvitationRepo) live(userID, id string) *domain.Invitation {
	for _, r := range f.records {
		if r.ID == id && r.UserID == userID && !r.IsDeleted {
			return r
		}
	}
	return nil
}

func (f *fakeInvitationRepo) GetByID(ctx context.Context, userID, id string) (*domain.Invitation, error) {
	r := f.live(userID, id)
	if r == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeInvitationRepo) Update(ctx context.Context, userID, id string, p domain.InvitationPatch) (*domain.Invitation, error) {
	r := f.live(userID, id)
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.EventType != nil {
		r.EventType = *p.EventType
	}
	if p.EventDate != nil {
		r.EventDate = *p.EventDate
	}
	if p.Venue != nil {
		r.Venue = *p.Venue
	}
	if p.Hosts != nil {
		r.Hosts = *p.Hosts
	}
	if p.Message != nil {
		r.Message = *p.Message
	}
	r.UpdatedAt = p.UpdatedAt
	cp := *r
	return &cp, nil
}

func (f *fakeInvitationRepo) SoftDelete(ctx context.Context, userID, id string, at time.Time) error {
	r := f.live(userID, id)
	if r == nil {
		return domain.ErrNotFound
	}
	r.IsDeleted = true
	r.DeletedAt = &at
	return nil
}

func (f *fakeInvitationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, r := range f.records {
		if r.UserID == userID && !r.IsDeleted {
			n++
		}
	}
	return n, nil
}

// fakePaymentRepo is an in-memory domain.PaymentRepository. Update honours
// the expected-status predicate atomically under mu.
type fakePaymentRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Payment
	seq       int
	onGet     func()
	afterGet  func()
	updates   int
	updateErr error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: make(map[string]*domain.Payment)}
}

// seed stores p as-is and returns its id.
func (f *fakePaymentRepo) seed(p domain.Payment) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = hexID(f.seq)
	f.byID[p.ID] = &p
	return p.ID
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if !existing.IsDeleted && existing.ReferenceNumber == p.ReferenceNumber {
			return domain.ErrDuplicateReference
		}
	}
	f.seq++
	p.ID = hexID(f.seq)
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	p, ok := f.byID[id]
	var cp domain.Payment
	if ok {
		cp = *p
	}
	f.mu.Unlock()
	if f.afterGet != nil {
		f.afterGet()
	}
	if !ok || cp.IsDeleted {
		return nil, domain.ErrPaymentNotFound
	}
	return &cp, nil
}

func (f *fakePaymentRepo) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if !p.IsDeleted && p.ReferenceNumber == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (f *fakePaymentRepo) sorted() []*domain.Payment {
	var out []*domain.Payment
	for _, p := range f.byID {
		if !p.IsDeleted {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakePaymentRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Payment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted()
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakePaymentRepo) ListUsedBy(ctx context.Context, userID string) ([]*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Payment{}
	for _, p := range f.sorted() {
		if p.UsedBy == userID && p.Status == domain.PaymentUsed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, id string, expected *domain.PaymentStatus, patch domain.PaymentPatch) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p, ok := f.byID[id]
	if !ok || p.IsDeleted || (expected != nil && p.Status != *expected) {
		return nil, domain.ErrPaymentNotFound
	}
	if patch.ReferenceNumber != nil {
		for _, other := range f.byID {
			if other.ID != id && !other.IsDeleted && other.ReferenceNumber == *patch.ReferenceNumber {
				return nil, domain.ErrDuplicateReference
			}
		}
		p.ReferenceNumber = *patch.ReferenceNumber
	}
	if patch.Amount != nil {
		p.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		p.Currency = *patch.Currency
	}
	if patch.PaymentMethod != nil {
		p.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.PlanType != nil {
		p.PlanType = *patch.PlanType
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.UsedAt != nil {
		usedAt := *patch.UsedAt
		p.UsedAt = &usedAt
	}
	if patch.UsedBy != nil {
		p.UsedBy = *patch.UsedBy
	}
	p.UpdatedAt = patch.UpdatedAt
	f.updates++
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok || p.IsDeleted {
		return domain.ErrPaymentNotFound
	}
	p.IsDeleted = true
	p.DeletedAt = &at
	return nil
}

// fakeCapabilities implements domain.CapabilityService for tests.
type fakeCapabilities struct {
	remaining int
	err       error
}

func (f *fakeCapabilities) ForUser(ctx context.Context, userID string) (*domain.Capabilities, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Capabilities{UserID: userID, InvitationsRemaining: f.remaining}, nil
}
