package source

import (
	"context"
	"io"

	"github.com/julianstephens/distill/internal/models"
)

// SliceStream replays annotations held in memory
type SliceStream struct {
	anns []models.Annotation
	pos  int
}

// NewSliceStream returns a stream over anns in the given order
func NewSliceStream(anns []models.Annotation) *SliceStream {
	return &SliceStream{anns: anns}
}

func (s *SliceStream) Next() (models.Annotation, error) {
	if s.pos >= len(s.anns) {
		return models.Annotation{}, io.EOF
	}
	a := s.anns[s.pos]
	s.pos++
	return a, nil
}

func (s *SliceStream) Close() error {
	return nil
}

// Memory is a Source over annotation sets held in memory, keyed by record
// and annotator.
type Memory map[string]map[string][]models.Annotation

func (m Memory) Open(_ context.Context, record, annotator string) (Stream, error) {
	byAnnotator, ok := m[record]
	if !ok {
		return nil, ErrNotFound
	}
	anns, ok := byAnnotator[annotator]
	if !ok {
		return nil, ErrNotFound
	}
	return NewSliceStream(anns), nil
}

// ReadAll drains a stream into a slice
func ReadAll(s Stream) ([]models.Annotation, error) {
	var anns []models.Annotation
	for {
		a, err := s.Next()
		if err == io.EOF {
			return anns, nil
		}
		if err != nil {
			return anns, err
		}
		anns = append(anns, a)
	}
}
