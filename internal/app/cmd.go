package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/service"
	"github.com/openparish/steptrack/pkg/slogx"
)

// Command is a CLI subcommand.
type Command string

const (
	CommandMigrate     Command = "migrate"
	CommandProvision   Command = "provision"
	CommandAccounts    Command = "accounts"
	CommandReport      Command = "report"
	CommandAutoArchive Command = "auto-archive"
	CommandHelp        Command = "help"
)

// ParseCommand maps the first argument onto a subcommand, defaulting to
// help.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandHelp
	}
	switch Command(args[0]) {
	case CommandMigrate, CommandProvision, CommandAccounts, CommandReport, CommandAutoArchive:
		return Command(args[0])
	default:
		return CommandHelp
	}
}

// Run executes one subcommand and returns. Gated commands authenticate with
// the operator credentials from the environment first.
func (app *Application) Run(args []string) error {
	ctx := context.Background()
	cmd := ParseCommand(args)

	switch cmd {
	case CommandMigrate:
		// Migrations already ran during New; nothing further to do.
		app.logger.Info("schema is up to date")
		return nil

	case CommandProvision:
		if len(args) < 3 {
			return errors.New("usage: steptrack provision <username> <role>")
		}
		return app.runProvision(ctx, args[1], domain.Role(args[2]))

	case CommandAccounts:
		return app.runAccounts(ctx)

	case CommandReport:
		if len(args) < 2 {
			return errors.New("usage: steptrack report <kind> [csv|json]")
		}
		format := service.FormatCSV
		if len(args) >= 3 {
			format = service.ExportFormat(args[2])
		}
		return app.runReport(ctx, domain.ReportKind(args[1]), format)

	case CommandAutoArchive:
		if len(args) < 2 {
			return errors.New("usage: steptrack auto-archive <months>")
		}
		months, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid months %q: %w", args[1], err)
		}
		return app.runAutoArchive(ctx, months)

	default:
		fmt.Fprintln(os.Stderr, `usage: steptrack <command>

commands:
  migrate                    apply pending schema migrations
  provision <user> <role>    create an account (password read from STEPTRACK_NEW_PASSWORD)
  accounts                   list accounts
  report <kind> [csv|json]   export a report to stdout
  auto-archive <months>      archive students inactive for the given months`)
		return nil
	}
}

// login authenticates the operator configured for this invocation.
func (app *Application) login(ctx context.Context) (domain.Session, error) {
	sess, ok, err := app.sessions.Login(ctx, app.cfg.Username, app.cfg.Password)
	if err != nil {
		return domain.Anonymous(), err
	}
	if !ok {
		return domain.Anonymous(), errors.New("authentication failed")
	}
	return sess, nil
}

func (app *Application) runProvision(ctx context.Context, username string, role domain.Role) error {
	ctx = slogx.WithOperation(ctx, "provision")

	sess, err := app.login(ctx)
	if err != nil {
		return err
	}
	defer app.sessions.Logout()

	if !sess.IsAdmin() {
		return errors.New("provisioning requires an admin operator")
	}

	password := os.Getenv("STEPTRACK_NEW_PASSWORD")
	if password == "" {
		return errors.New("STEPTRACK_NEW_PASSWORD must be set")
	}

	created, err := app.accounts.Provision(ctx, username, password, role)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("username %q already exists", username)
	}
	fmt.Printf("account %q created with role %s\n", username, role)
	return nil
}

func (app *Application) runAccounts(ctx context.Context) error {
	ctx = slogx.WithOperation(ctx, "accounts")

	sess, err := app.login(ctx)
	if err != nil {
		return err
	}
	defer app.sessions.Logout()

	accounts, err := app.accounts.ListAccounts(ctx, sess)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		last := "never"
		if a.LastLogin != nil {
			last = a.LastLogin.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%s\t%s\tlast login: %s\n", a.Username, a.Role, last)
	}
	return nil
}

func (app *Application) runReport(ctx context.Context, kind domain.ReportKind, format service.ExportFormat) error {
	ctx = slogx.WithOperation(ctx, "report")

	sess, err := app.login(ctx)
	if err != nil {
		return err
	}
	defer app.sessions.Logout()

	return app.reports.Export(ctx, sess, kind, format, domain.ReportFilter{}, os.Stdout)
}

func (app *Application) runAutoArchive(ctx context.Context, months int) error {
	ctx = slogx.WithOperation(ctx, "auto-archive")

	sess, err := app.login(ctx)
	if err != nil {
		return err
	}
	defer app.sessions.Logout()

	stats, err := app.students.AutoArchiveInactive(ctx, sess, months)
	if err != nil {
		return err
	}
	fmt.Printf("identified %d, archived %d, failed %d\n", stats.Identified, stats.Archived, stats.Failed)
	return nil
}
