// Package backup keeps timestamped snapshots of the SQLite annotation
// archive next to it, in a "backups" directory.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/logger"
)

const (
	// MaxSnapshots is the number of snapshots kept after rotation
	MaxSnapshots = 5
	// DirName is the snapshot directory, created beside the archive
	DirName = "backups"

	prefix     = constants.AppName + "-"
	suffix     = ".db"
	timeLayout = "20060102-150405"
)

// Snapshot describes one snapshot file
type Snapshot struct {
	Path    string
	Created time.Time
	Size    int64
}

// Manager snapshots and restores one archive file
type Manager struct {
	archivePath string
	dir         string
	now         func() time.Time
}

// NewManager returns a Manager for the archive at archivePath
func NewManager(archivePath string) *Manager {
	return &Manager{
		archivePath: archivePath,
		dir:         filepath.Join(filepath.Dir(archivePath), DirName),
		now:         time.Now,
	}
}

// Dir returns the snapshot directory
func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and rotates old ones
func (m *Manager) Create() (string, error) {
	if _, err := os.Stat(m.archivePath); err != nil {
		return "", fmt.Errorf("archive does not exist: %s", m.archivePath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}
	if err := m.vacuumInto(path); err != nil {
		return "", fmt.Errorf("failed to snapshot archive: %w", err)
	}

	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate archive snapshots", "dir", m.dir, "error", err)
	}
	return path, nil
}

// nextPath names a snapshot after the current second, adding a counter
// when several are taken within it
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(timeLayout)
	path := filepath.Join(m.dir, prefix+stamp+suffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique snapshot filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", prefix, stamp, n, suffix))
	}
}

func (m *Manager) vacuumInto(dest string) error {
	db, err := sql.Open("sqlite", m.archivePath+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ping(db); err != nil {
		return fmt.Errorf("archive appears to be corrupted: %w", err)
	}
	_, err = db.Exec("VACUUM INTO ?", dest)
	return err
}

// List returns the snapshots, newest first
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var snaps []Snapshot
	for _, entry := range entries {
		created, ok := parseName(entry.Name())
		if entry.IsDir() || !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:    filepath.Join(m.dir, entry.Name()),
			Created: created,
			Size:    info.Size(),
		})
	}

	slices.SortFunc(snaps, func(a, b Snapshot) int {
		if c := b.Created.Compare(a.Created); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return snaps, nil
}

// parseName extracts the creation time from a snapshot file name
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	if len(stamp) > len(timeLayout) {
		stamp = stamp[:len(timeLayout)]
	}
	t, err := time.ParseInLocation(timeLayout, stamp, time.Local)
	return t, err == nil
}

func (m *Manager) rotate() error {
	snaps, err := m.List()
	if err != nil {
		return err
	}
	for _, s := range snaps[min(len(snaps), MaxSnapshots):] {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove old snapshot %s: %w", s.Path, err)
		}
	}
	return nil
}

// Restore replaces the archive with a snapshot. The current archive is
// snapshotted first. The archive must not be open.
func (m *Manager) Restore(snapshot string) error {
	if !filepath.IsAbs(snapshot) && filepath.Base(snapshot) == snapshot {
		snapshot = filepath.Join(m.dir, snapshot)
	}
	if err := verify(snapshot); err != nil {
		return fmt.Errorf("snapshot %s is not a valid archive: %w", snapshot, err)
	}

	if _, err := os.Stat(m.archivePath); err == nil {
		// Not rotated
		path, err := m.nextPath()
		if err != nil {
			return err
		}
		if err := m.vacuumInto(path); err != nil {
			return fmt.Errorf("failed to snapshot archive before restore: %w", err)
		}
		logger.Info("Saved archive before restore", "snapshot", path)
	}

	tmp := m.archivePath + ".restore.tmp"
	if err := copyFile(snapshot, tmp); err != nil {
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.archivePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to restore archive: %w", err)
	}
	return nil
}

func verify(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return ping(db)
}

func ping(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
