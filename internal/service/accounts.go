package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/store"
	"github.com/openparish/steptrack/pkg/cryptox"
	"github.com/openparish/steptrack/pkg/idx"
	"github.com/openparish/steptrack/pkg/slogx"
	"golang.org/x/time/rate"
)

// Login throttle defaults: 5 attempts per minute per username, matching the
// strict profile used on authentication endpoints elsewhere.
const (
	loginAttemptsPerMinute = 5
	loginBurst             = 5
)

// AccountService owns the account collection: provisioning, credential
// verification and admin-only management.
type AccountService struct {
	Store store.Store

	// Now is a clock hook for tests; nil means time.Now.
	Now func() time.Time

	mu       sync.Mutex
	throttle map[string]*rate.Limiter
}

func NewAccountService(st store.Store) *AccountService {
	return &AccountService{
		Store:    st,
		throttle: make(map[string]*rate.Limiter),
	}
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Provision creates a new account with a freshly salted digest. Returns
// false without error when the username is already taken, since that is an
// expected, recoverable outcome. Unknown roles are an error.
func (s *AccountService) Provision(ctx context.Context, username, password string, role domain.Role) (bool, error) {
	l := slogx.FromContext(ctx)

	if !role.Valid() {
		return false, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, role)
	}
	if username == "" {
		return false, fmt.Errorf("%w: username required", ErrInvalidArgument)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.Accounts().CreateAccount(ctx, domain.Account{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedDate:  s.now(),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		l.Info("account provisioning skipped, username taken", slog.String("username", username))
		return false, nil
	}
	if err != nil {
		return false, err
	}

	l.Info("account provisioned",
		slog.String("username", username),
		slog.String("role", string(role)),
	)
	return true, nil
}

// Verify checks a username/password pair. A missing account, a wrong
// password and a throttled attempt all produce the same (zero, false, nil)
// result, so callers cannot enumerate usernames. On success the account's
// last_login is stamped and the updated account is returned.
func (s *AccountService) Verify(ctx context.Context, username, password string) (domain.Account, bool, error) {
	l := slogx.FromContext(ctx)

	if !s.allowAttempt(username) {
		l.Warn("login attempt throttled", slog.String("username", username))
		return domain.Account{}, false, nil
	}

	account, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, false, nil
	}
	if err != nil {
		return domain.Account{}, false, err
	}

	if cryptox.VerifyPassword(password, account.PasswordHash) != nil {
		l.Info("login failed", slog.String("username", username))
		return domain.Account{}, false, nil
	}

	at := s.now()
	if err := s.Store.Accounts().UpdateLastLogin(ctx, account.ID, at); err != nil {
		return domain.Account{}, false, err
	}
	account.LastLogin = &at

	l.Info("login succeeded", slog.String("username", username))
	return account, true, nil
}

// ListAccounts returns every account. Admin only.
func (s *AccountService) ListAccounts(ctx context.Context, sess domain.Session) ([]domain.Account, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.Store.Accounts().ListAccounts(ctx)
}

// DeleteAccount removes an account by id. Admin only; store.ErrNotFound is
// surfaced when the id does not exist.
func (s *AccountService) DeleteAccount(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Accounts().DeleteAccount(ctx, id); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account deleted",
		slog.String("account_id", id),
		slog.String("username", account.Username),
	)
	return nil
}

// Bootstrap provisions the initial admin account when the accounts
// collection is empty. Returns true when an account was created.
func (s *AccountService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	empty, err := s.Store.Accounts().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	return s.Provision(ctx, username, password, domain.RoleAdmin)
}

func (s *AccountService) allowAttempt(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lim, ok := s.throttle[username]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/loginAttemptsPerMinute), loginBurst)
		s.throttle[username] = lim
	}
	return lim.Allow()
}
