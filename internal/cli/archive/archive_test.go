package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/config"
	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source/wfdb"
)

func setupTestArchive(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.WFDB.Path = []string{dir}
	cfg.Database.Path = filepath.Join(dir, "distill.db")

	var out bytes.Buffer
	ctx := &cli.Context{
		Ctx:    context.Background(),
		Config: cfg,
		Stdout: &out,
		Stderr: &bytes.Buffer{},
	}
	archive, err := ctx.Archive()
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if err := archive.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close archive: %v", err)
		}
	})
	return ctx, &out, dir
}

var sample = []models.Annotation{
	{Time: 0, Code: 1},
	{Time: 6000, Code: 8, Sub: 2},
	{Time: 12000, Code: 22, Aux: "sleep"},
	{Time: 1_000_000, Code: 1, Chan: 1, Num: 3},
}

func TestImportListDump(t *testing.T) {
	ctx, out, dir := setupTestArchive(t)
	if err := wfdb.WriteFile(filepath.Join(dir, "a01.apn"), sample); err != nil {
		t.Fatalf("failed to write annotation file: %v", err)
	}

	if err := (&ImportCmd{Annotator: "apn", Records: []string{"a01"}}).Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 4 annotations from a01.apn") {
		t.Errorf("import output = %q", out.String())
	}

	out.Reset()
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Annotation sets (1 total)") || !strings.Contains(out.String(), "a01") {
		t.Errorf("list output = %q", out.String())
	}

	outDir := filepath.Join(dir, "dump")
	if err := (&DumpCmd{Annotator: "apn", Output: outDir, Records: []string{"a01"}}).Run(ctx); err != nil {
		t.Fatalf("dump failed: %v", err)
	}

	stream, err := wfdb.New([]string{outDir}).Open(ctx.Ctx, "a01", "apn")
	if err != nil {
		t.Fatalf("failed to open dumped file: %v", err)
	}
	defer stream.Close()
	var got []models.Annotation
	for {
		a, err := stream.Next()
		if err != nil {
			break
		}
		got = append(got, a)
	}
	if !reflect.DeepEqual(got, sample) {
		t.Errorf("dumped annotations = %+v, want %+v", got, sample)
	}
}

func TestImportMissingRecord(t *testing.T) {
	ctx, _, _ := setupTestArchive(t)

	err := (&ImportCmd{Annotator: "apn", Records: []string{"x99"}}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "no apn annotations for record x99") {
		t.Errorf("import error = %v", err)
	}
}

func TestDumpMissingSet(t *testing.T) {
	ctx, _, dir := setupTestArchive(t)

	err := (&DumpCmd{Annotator: "apn", Output: dir, Records: []string{"x99"}}).Run(ctx)
	if err == nil {
		t.Fatal("dump of a missing set should fail")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "x99.apn")); !os.IsNotExist(statErr) {
		t.Error("dump of a missing set wrote a file")
	}
}

func TestListEmpty(t *testing.T) {
	ctx, out, _ := setupTestArchive(t)

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No annotation sets found.") {
		t.Errorf("list output = %q", out.String())
	}
}
