package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/julianstephens/distill/internal/constants"
)

func TestLoadMissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != constants.SourceWFDB {
		t.Errorf("Source = %q, want %q", cfg.Source, constants.SourceWFDB)
	}
	if strings.HasPrefix(cfg.Database.Path, "~") {
		t.Errorf("Database.Path = %q, want home expanded", cfg.Database.Path)
	}
}

func TestLoadMissingRequiredFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Error("Load() of a missing explicit file should fail")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `source: sqlite
wfdb:
  path: [/data/apnea-ecg, /data/challenge]
database:
  path: /var/lib/distill/archive.db
log:
  debug: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != constants.SourceSQLite {
		t.Errorf("Source = %q", cfg.Source)
	}
	if !reflect.DeepEqual(cfg.WFDB.Path, []string{"/data/apnea-ecg", "/data/challenge"}) {
		t.Errorf("WFDB.Path = %v", cfg.WFDB.Path)
	}
	if cfg.Database.Path != "/var/lib/distill/archive.db" || !cfg.Log.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Dir == "" {
		t.Error("Log.Dir lost its default")
	}
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: edf\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("Load() error = %v, want unknown source", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("Load() of malformed YAML should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		constants.EnvSource:       "postgres",
		constants.EnvWFDBPath:     "/a" + string(filepath.ListSeparator) + "/b",
		constants.EnvDBConnection: "host=db user=distill",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Source != "postgres" {
		t.Errorf("Source = %q", cfg.Source)
	}
	if !reflect.DeepEqual(cfg.WFDB.Path, []string{"/a", "/b"}) {
		t.Errorf("WFDB.Path = %v", cfg.WFDB.Path)
	}
	if cfg.Database.Connection != "host=db user=distill" {
		t.Errorf("Database.Connection = %q", cfg.Database.Connection)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distill", "config.yaml")

	created, err := WriteDefault(path)
	if err != nil || !created {
		t.Fatalf("WriteDefault() = %v, %v; want created", created, err)
	}
	created, err = WriteDefault(path)
	if err != nil || created {
		t.Errorf("second WriteDefault() = %v, %v; want existing file kept", created, err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load(default file) error = %v", err)
	}
	if cfg.Source != constants.SourceWFDB || !reflect.DeepEqual(cfg.WFDB.Path, []string{"."}) {
		t.Errorf("default file loaded as %+v", cfg)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandHome("~/x/y")
	if err != nil || got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandHome() = %q, %v", got, err)
	}
	if got, _ := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome(/abs) = %q", got)
	}
}
