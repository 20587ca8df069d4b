package source

import (
	"database/sql"
	"io"

	"github.com/julianstephens/distill/internal/models"
)

// AnnotationColumns is the column list a row stream expects, in order
const AnnotationColumns = "sample, code, sub, chan, num, aux"

// RowStream adapts query rows selecting AnnotationColumns to a Stream
type RowStream struct {
	rows *sql.Rows
}

// NewRowStream wraps rows; closing the stream closes them
func NewRowStream(rows *sql.Rows) *RowStream {
	return &RowStream{rows: rows}
}

func (s *RowStream) Next() (models.Annotation, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return models.Annotation{}, err
		}
		return models.Annotation{}, io.EOF
	}
	var a models.Annotation
	if err := s.rows.Scan(&a.Time, &a.Code, &a.Sub, &a.Chan, &a.Num, &a.Aux); err != nil {
		return models.Annotation{}, err
	}
	return a, nil
}

func (s *RowStream) Close() error {
	return s.rows.Close()
}
