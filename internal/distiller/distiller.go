// Package distiller condenses per-record apnea annotations into either a
// severity bucket or a minute-by-minute grid grouped by hour.
package distiller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/grid"
	"github.com/julianstephens/distill/internal/logger"
	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
)

// Distiller processes records one at a time against a single source and
// writes one formatted block per record.
type Distiller struct {
	src source.Source
	out io.Writer
}

// New returns a Distiller reading from src and writing to out
func New(src source.Source, out io.Writer) *Distiller {
	return &Distiller{src: src, out: out}
}

// ProcessRecord distills one record and writes its block.
//
// A source that cannot be opened is reported inline with the
// "[no annotations]" marker and is not an error. The returned error is
// a configuration error or a cancelled ctx, both raised before anything
// is written for the record, a cancellation during the walk, or a failure
// to write the output. A cancelled walk never prints a marker or bucket.
func (d *Distiller) ProcessRecord(ctx context.Context, record string, cfg Config) (models.Result, error) {
	result := models.Result{Record: record, Annotator: cfg.Annotator}
	if err := cfg.Validate(); err != nil {
		return result, err
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("distill interrupted before %s: %w", record, err)
	}

	p := &printer{w: d.out, template: cfg.Template}
	p.printf("%s", record)

	stream, err := d.src.Open(ctx, record, cfg.Annotator)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("distill interrupted at %s: %w", record, ctxErr)
		}
		if !errors.Is(err, source.ErrNotFound) {
			logger.Warn("Failed to open annotations", "record", record, "annotator", cfg.Annotator, "error", err)
		}
		p.printf("%s\n", constants.NoAnnotationsMarker)
		return result, p.err
	}
	defer stream.Close()
	result.Found = true

	w := &grid.Walker{}
	for {
		a, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("distill interrupted at %s: %w", record, ctxErr)
			}
			logger.Warn("Annotation stream ended early", "record", record, "annotator", cfg.Annotator, "error", err)
			break
		}
		for s := range w.Step(a) {
			result.Slots = append(result.Slots, s.Kind)
			if s.Kind == models.SlotApnea {
				result.ApneaMinutes++
			}
			if cfg.Mode == models.ModeDetail {
				p.slot(s)
			}
		}
	}
	result.Bucket = models.Classify(result.ApneaMinutes)

	logger.Debug("Distilled record", "record", record, "mode", cfg.Mode, "minutes", w.Minutes(), "apnea_minutes", result.ApneaMinutes)

	if cfg.Mode == models.ModeClassify {
		p.bucket(result.Bucket)
	}
	p.printf("\n")
	if cfg.Mode == models.ModeDetail {
		p.printf("\n")
	}
	if p.err != nil {
		return result, fmt.Errorf("failed to write summary for %s: %w", record, p.err)
	}
	return result, nil
}
