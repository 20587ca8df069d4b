package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/keyring"
	"github.com/julianstephens/distill/internal/source/postgres"
)

// promptConnection asks for the connection string without echoing it
var promptConnection = func() (string, error) {
	var connStr string
	err := huh.NewInput().
		Title("PostgreSQL connection string").
		Description("Stored in the OS keyring; it is not echoed.").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("connection string cannot be empty")
			}
			return nil
		}).
		Value(&connStr).
		Run()
	return connStr, err
}

// KeyringSetCmd stores the archive connection string in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" optional:"" help:"PostgreSQL connection string; prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	connStr := cmd.ConnectionString
	if connStr == "" {
		var err error
		if connStr, err = promptConnection(); err != nil {
			return fmt.Errorf("failed to read connection string: %w", err)
		}
	}

	if !strings.HasPrefix(connStr, "postgres://") &&
		!strings.HasPrefix(connStr, "postgresql://") &&
		!strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(connStr); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is encrypted, so a password is accepted here
		fmt.Fprintln(ctx.Stdout, "⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Fprintln(ctx.Stdout, "   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.Connection.Set(connStr); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout, "✓ Connection string stored successfully in OS keyring")
	return nil
}

// KeyringGetCmd prints the stored connection string with the password masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.Connection.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'distill keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}
	fmt.Fprintln(ctx.Stdout, "Connection string retrieved from keyring:")
	fmt.Fprintln(ctx.Stdout, keyring.MaskPassword(connStr))
	return nil
}

// KeyringDeleteCmd removes the stored connection string
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Connection.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	fmt.Fprintln(ctx.Stdout, "✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Fprintln(ctx.Stdout, "❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	fmt.Fprintln(ctx.Stdout, "✓ OS keyring is available")

	_, err := keyring.Connection.Get()
	switch {
	case err == nil:
		fmt.Fprintln(ctx.Stdout, "✓ Connection string is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Fprintln(ctx.Stdout, "ℹ No connection string stored in keyring")
	default:
		return err
	}
	return nil
}
