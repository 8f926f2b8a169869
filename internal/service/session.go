package service

import (
	"context"
	"sync"

	"github.com/openparish/steptrack/internal/domain"
)

// SessionContext tracks the current session for a single-operator caller
// such as the CLI. It is a two-state machine: anonymous until a successful
// login, anonymous again after logout or a failed login. Gated operations
// never read it implicitly; callers pass the session value on every call.
type SessionContext struct {
	Accounts *AccountService

	mu      sync.Mutex
	current domain.Session
}

func NewSessionContext(accounts *AccountService) *SessionContext {
	return &SessionContext{
		Accounts: accounts,
		current:  domain.Anonymous(),
	}
}

// Login verifies the credentials. Success replaces any prior session and
// returns it; failure clears the session and reports false.
func (c *SessionContext) Login(ctx context.Context, username, password string) (domain.Session, bool, error) {
	account, ok, err := c.Accounts.Verify(ctx, username, password)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil || !ok {
		c.current = domain.Anonymous()
		return domain.Anonymous(), false, err
	}

	c.current = domain.NewSession(account)
	return c.current, true, nil
}

// Logout unconditionally returns the context to anonymous.
func (c *SessionContext) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = domain.Anonymous()
}

// Current returns the held session, anonymous if nobody is logged in.
func (c *SessionContext) Current() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
