package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
)

const (
	lookupSetQuery  = "SELECT id FROM annotation_sets WHERE record = $1 AND annotator = $2"
	streamQuery     = "SELECT " + source.AnnotationColumns + " FROM annotations WHERE set_id = $1 ORDER BY seq"
	deleteSetQuery  = "DELETE FROM annotation_sets WHERE record = $1 AND annotator = $2"
	insertSetQuery  = "INSERT INTO annotation_sets (record, annotator, batch_id) VALUES ($1, $2, $3) RETURNING id, imported_at"
	listSetsQuery   = `SELECT s.id, s.record, s.annotator, s.batch_id, s.imported_at, COUNT(a.seq)
		FROM annotation_sets s
		LEFT JOIN annotations a ON a.set_id = s.id
		GROUP BY s.id
		ORDER BY s.record, s.annotator`
	annotationTable = "annotations"
)

// Open streams the annotations of one set in the order they were imported
func (s *Store) Open(ctx context.Context, record, annotator string) (source.Stream, error) {
	if s.db == nil {
		return nil, errors.New("archive not loaded")
	}

	var setID int64
	err := s.db.QueryRowContext(ctx, lookupSetQuery, record, annotator).Scan(&setID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s.%s", source.ErrNotFound, record, annotator)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up annotation set: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, streamQuery, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	return source.NewRowStream(rows), nil
}

// SaveSet stores anns as the set for (set.Record, set.Annotator), replacing
// any set previously stored for the pair. Rows are loaded with COPY.
func (s *Store) SaveSet(ctx context.Context, set models.AnnotationSet, anns []models.Annotation) (models.AnnotationSet, error) {
	if s.db == nil {
		return set, errors.New("archive not loaded")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return set, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// annotations go with their set through ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, deleteSetQuery, set.Record, set.Annotator); err != nil {
		return set, fmt.Errorf("failed to clear annotation set: %w", err)
	}
	if err := tx.QueryRowContext(ctx, insertSetQuery, set.Record, set.Annotator, set.BatchID).Scan(&set.ID, &set.ImportedAt); err != nil {
		return set, fmt.Errorf("failed to insert annotation set: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(annotationTable, "set_id", "seq", "sample", "code", "sub", "chan", "num", "aux"))
	if err != nil {
		return set, fmt.Errorf("failed to prepare copy: %w", err)
	}
	for i, a := range anns {
		if _, err := stmt.ExecContext(ctx, set.ID, i, a.Time, a.Code, a.Sub, a.Chan, a.Num, a.Aux); err != nil {
			stmt.Close()
			return set, fmt.Errorf("failed to copy annotation %d: %w", i, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return set, fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return set, fmt.Errorf("failed to close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return set, fmt.Errorf("failed to commit annotation set: %w", err)
	}
	set.Count = len(anns)
	return set, nil
}

// ListSets returns every stored set ordered by record and annotator
func (s *Store) ListSets(ctx context.Context) ([]models.AnnotationSet, error) {
	if s.db == nil {
		return nil, errors.New("archive not loaded")
	}

	rows, err := s.db.QueryContext(ctx, listSetsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotation sets: %w", err)
	}
	defer rows.Close()

	var sets []models.AnnotationSet
	for rows.Next() {
		var set models.AnnotationSet
		if err := rows.Scan(&set.ID, &set.Record, &set.Annotator, &set.BatchID, &set.ImportedAt, &set.Count); err != nil {
			return nil, fmt.Errorf("failed to scan annotation set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}
