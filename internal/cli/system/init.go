package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/distill/internal/backup"
	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/config"
	"github.com/julianstephens/distill/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite archive before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if ctx.ConfigPath != "" {
		created, err := config.WriteDefault(ctx.ConfigPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(ctx.Stdout, "Wrote default config to: %s\n", ctx.ConfigPath)
		}
	}

	archive, err := ctx.Archive()
	if err != nil {
		return err
	}

	if c.Force {
		if ctx.ArchiveKind() != constants.SourceSQLite {
			return fmt.Errorf("--force only applies to SQLite archives")
		}
		path := archive.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			// Close first so the file is not held open
			if err := archive.Close(); err != nil {
				return fmt.Errorf("failed to close existing archive: %w", err)
			}
			snap, err := backup.NewManager(path).Create()
			if err != nil {
				return fmt.Errorf("failed to snapshot existing archive: %w", err)
			}
			fmt.Fprintf(ctx.Stdout, "Saved snapshot of existing archive: %s\n", snap)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing archive: %w", err)
			}
			fmt.Fprintf(ctx.Stdout, "Deleted existing archive at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing archive: %w", err)
		}
	}

	if err := archive.Init(); err != nil {
		return err
	}

	current, _, err := archive.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "Initialized %s archive at: %s (schema version %d)\n",
		ctx.ArchiveKind(), archive.GetConfigPath(), current)
	return nil
}
