package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openparish/steptrack/internal/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, username, password_hash, role, created_date, last_login`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Username,
		a.PasswordHash,
		string(a.Role),
		fmtDate(a.CreatedDate),
		fmtOptionalDateTime(a.LastLogin),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET last_login = ? WHERE id = ?`,
		at.UTC().Format(dateTimeLayout), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a         domain.Account
		role      string
		created   string
		lastLogin sql.NullString
	)
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &role, &created, &lastLogin)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	if a.CreatedDate, err = parseDate(created); err != nil {
		return domain.Account{}, err
	}
	if a.LastLogin, err = parseOptionalDateTime(lastLogin); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}
