// Package source defines how the distiller reaches annotation data.
//
// A Source opens one annotation stream per (record, annotator) pair. Streams
// are read once, in time order, and must be closed by the caller.
package source

import (
	"context"
	"errors"

	"github.com/julianstephens/distill/internal/models"
)

// ErrNotFound is returned by Open when no annotations exist for the pair
var ErrNotFound = errors.New("annotation set not found")

// Source opens annotation streams
type Source interface {
	Open(ctx context.Context, record, annotator string) (Stream, error)
}

// Stream is a finite, non-restartable sequence of annotations in
// non-decreasing time order. Next returns io.EOF once exhausted.
type Stream interface {
	Next() (models.Annotation, error)
	Close() error
}

// Archive is a Source backed by a database that annotation sets can be
// written to and listed from.
type Archive interface {
	Source
	Init() error
	Load() error
	Close() error
	SaveSet(ctx context.Context, set models.AnnotationSet, anns []models.Annotation) (models.AnnotationSet, error)
	ListSets(ctx context.Context) ([]models.AnnotationSet, error)
	SchemaVersion() (current, latest int, err error)
	GetConfigPath() string
}
