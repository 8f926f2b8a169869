package domain

// Session is an authenticated (or anonymous) principal. It is an explicit
// value threaded into every gated call so permission checks stay pure and
// independent of any shared "current user" state.
type Session struct {
	Account *Account
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session { return Session{} }

// NewSession wraps an authenticated account.
func NewSession(account Account) Session {
	return Session{Account: &account}
}

// Authenticated reports whether the session holds an account.
func (s Session) Authenticated() bool { return s.Account != nil }

// Allows reports whether the session may perform the action. Anonymous
// sessions are denied everything.
func (s Session) Allows(a Action) bool {
	if s.Account == nil {
		return false
	}
	return s.Account.Role.Allows(a)
}

// IsAdmin reports whether the session holds an admin account. Account
// management is gated on this identity check rather than the capability
// table.
func (s Session) IsAdmin() bool {
	return s.Account != nil && s.Account.Role == RoleAdmin
}
