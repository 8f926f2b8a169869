package service

import (
	"testing"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/store"
	"github.com/openparish/steptrack/internal/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// testToday is the fixed clock used by service tests.
var testToday = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testToday }

func daysAgo(n int) time.Time {
	return testToday.AddDate(0, 0, -n)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func adminSession() domain.Session {
	return domain.NewSession(domain.Account{ID: "acct-admin", Username: "root", Role: domain.RoleAdmin})
}

func staffSession() domain.Session {
	return domain.NewSession(domain.Account{ID: "acct-staff", Username: "jo", Role: domain.RoleStaff})
}

func viewerSession() domain.Session {
	return domain.NewSession(domain.Account{ID: "acct-viewer", Username: "sam", Role: domain.RoleViewer})
}
