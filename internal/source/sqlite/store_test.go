package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
)

func setupTestStore(t *testing.T) *Store {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "archive.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreImplementsArchive(t *testing.T) {
	var _ source.Archive = NewStore("unused.db")
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load() on a missing archive should fail")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("SchemaVersion() = %d, %d; want equal and at least 1", current, latest)
	}
}

func TestSaveAndOpen(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	anns := []models.Annotation{
		{Time: 0, Code: 1},
		{Time: 6000, Code: 8, Aux: "note"},
		{Time: 6000, Code: 1},
		{Time: 18000, Code: 8, Sub: -1, Chan: 2, Num: 3},
	}
	set, err := store.SaveSet(ctx, models.AnnotationSet{Record: "a01", Annotator: "apn", BatchID: "b1"}, anns)
	if err != nil {
		t.Fatalf("SaveSet() error = %v", err)
	}
	if set.ID == 0 || set.Count != len(anns) || set.ImportedAt == "" {
		t.Errorf("SaveSet() = %+v, want id, count and import time filled", set)
	}

	stream, err := store.Open(ctx, "a01", "apn")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := source.ReadAll(stream)
	stream.Close()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, anns) {
		t.Errorf("Open() read %+v, want %+v", got, anns)
	}
}

func TestOpenMissingSet(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Open(context.Background(), "x01", "apn"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
}

func TestSaveSetReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := []models.Annotation{{Time: 0, Code: 1}, {Time: 6000, Code: 1}}
	second := []models.Annotation{{Time: 0, Code: 8}}
	if _, err := store.SaveSet(ctx, models.AnnotationSet{Record: "a01", Annotator: "apn", BatchID: "b1"}, first); err != nil {
		t.Fatalf("SaveSet(first) error = %v", err)
	}
	if _, err := store.SaveSet(ctx, models.AnnotationSet{Record: "a01", Annotator: "apn", BatchID: "b2"}, second); err != nil {
		t.Fatalf("SaveSet(second) error = %v", err)
	}

	sets, err := store.ListSets(ctx)
	if err != nil {
		t.Fatalf("ListSets() error = %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("ListSets() returned %d sets, want 1", len(sets))
	}
	if sets[0].BatchID != "b2" || sets[0].Count != 1 {
		t.Errorf("ListSets()[0] = %+v, want batch b2 with 1 annotation", sets[0])
	}
}

func TestListSetsOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, pair := range [][2]string{{"b01", "apn"}, {"a01", "qrs"}, {"a01", "apn"}} {
		if _, err := store.SaveSet(ctx, models.AnnotationSet{Record: pair[0], Annotator: pair[1], BatchID: "b"}, nil); err != nil {
			t.Fatalf("SaveSet(%v) error = %v", pair, err)
		}
	}

	sets, err := store.ListSets(ctx)
	if err != nil {
		t.Fatalf("ListSets() error = %v", err)
	}
	var got []string
	for _, s := range sets {
		got = append(got, s.Record+"."+s.Annotator)
		if s.Count != 0 {
			t.Errorf("set %s.%s count = %d, want 0", s.Record, s.Annotator, s.Count)
		}
	}
	want := []string{"a01.apn", "a01.qrs", "b01.apn"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListSets() order = %v, want %v", got, want)
	}
}
