package archive

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/distill/internal/backup"
	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/constants"
)

func snapshots(ctx *cli.Context) (*backup.Manager, error) {
	if ctx.ArchiveKind() != constants.SourceSQLite {
		return nil, errors.New("snapshots are only supported for SQLite archives")
	}
	return backup.NewManager(ctx.Config.Database.Path), nil
}

// BackupCmd snapshots the SQLite archive
type BackupCmd struct{}

func (c *BackupCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshots(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "✓ Snapshot created: %s\n", path)
	return nil
}

// BackupsCmd lists the archive snapshots
type BackupsCmd struct{}

func (c *BackupsCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshots(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		fmt.Fprintln(ctx.Stdout, "No snapshots found.")
		fmt.Fprintf(ctx.Stdout, "Snapshots are stored in: %s\n", mgr.Dir())
		return nil
	}

	fmt.Fprintf(ctx.Stdout, "Available snapshots (%d total, keeping most recent %d):\n\n", len(snaps), backup.MaxSnapshots)
	for _, s := range snaps {
		fmt.Fprintf(ctx.Stdout, "  %s  %s  (%.1f KB)\n",
			s.Created.Format("2006-01-02 15:04:05"), filepath.Base(s.Path), float64(s.Size)/1024.0)
	}
	fmt.Fprintf(ctx.Stdout, "\nSnapshot directory: %s\n", mgr.Dir())
	return nil
}

// RestoreCmd replaces the SQLite archive with a snapshot
type RestoreCmd struct {
	Snapshot string `arg:"" help:"Snapshot file name or path."`
}

func (c *RestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := snapshots(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	if err := mgr.Restore(c.Snapshot); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "✓ Archive restored from %s\n", c.Snapshot)
	return nil
}
