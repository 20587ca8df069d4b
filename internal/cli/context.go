package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/distill/internal/config"
	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/keyring"
	"github.com/julianstephens/distill/internal/logger"
	"github.com/julianstephens/distill/internal/source"
	"github.com/julianstephens/distill/internal/source/postgres"
	"github.com/julianstephens/distill/internal/source/sqlite"
	"github.com/julianstephens/distill/internal/source/wfdb"
)

// Context is bound into every command's Run method
type Context struct {
	Ctx        context.Context
	Config     config.Config
	ConfigPath string
	Stdout     io.Writer
	Stderr     io.Writer

	archive source.Archive
}

// NewContext returns a Context writing to the process streams
func NewContext(ctx context.Context, cfg config.Config, configPath string) *Context {
	return &Context{
		Ctx:        ctx,
		Config:     cfg,
		ConfigPath: configPath,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// ArchiveKind names the database used by the archive commands. The WFDB
// source reads files directly, so archive commands then use SQLite.
func (c *Context) ArchiveKind() string {
	if c.Config.Source == constants.SourcePostgres {
		return constants.SourcePostgres
	}
	return constants.SourceSQLite
}

// Archive returns the configured archive without connecting to it
func (c *Context) Archive() (source.Archive, error) {
	if c.archive != nil {
		return c.archive, nil
	}
	switch c.ArchiveKind() {
	case constants.SourcePostgres:
		connStr, err := c.ConnectionString()
		if err != nil {
			return nil, err
		}
		c.archive = postgres.New(connStr)
	default:
		c.archive = sqlite.NewStore(c.Config.Database.Path)
	}
	return c.archive, nil
}

// SetArchive replaces the configured archive
func (c *Context) SetArchive(a source.Archive) {
	c.archive = a
}

// OpenArchive returns the archive after checking it is initialized and
// its schema is current
func (c *Context) OpenArchive() (source.Archive, error) {
	a, err := c.Archive()
	if err != nil {
		return nil, err
	}
	if err := a.Load(); err != nil {
		return nil, err
	}
	return a, nil
}

// Source returns the annotation source named by the configuration
func (c *Context) Source() (source.Source, error) {
	if c.Config.Source == constants.SourceWFDB {
		return c.WFDB(), nil
	}
	return c.OpenArchive()
}

// WFDB returns the annotation file source for the configured search path
func (c *Context) WFDB() *wfdb.Source {
	return wfdb.New(c.Config.WFDB.Path)
}

// ConnectionString resolves the PostgreSQL connection string from the
// configuration (file or DISTILL_DB_CONNECTION), falling back to the OS
// keyring. Configured strings must not embed a password.
func (c *Context) ConnectionString() (string, error) {
	if connStr := strings.TrimSpace(c.Config.Database.Connection); connStr != "" {
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return "", fmt.Errorf("%w; store it with 'distill keyring set' or use .pgpass instead", err)
			}
			return "", err
		}
		return connStr, nil
	}

	connStr, err := keyring.Connection.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection configured: set database.connection, %s or run 'distill keyring set'", constants.EnvDBConnection)
		}
		return "", err
	}
	logger.Debug("Using connection string from keyring")
	return connStr, nil
}

// Close releases the archive, if one was opened
func (c *Context) Close() error {
	if c.archive == nil {
		return nil
	}
	err := c.archive.Close()
	c.archive = nil
	return err
}
