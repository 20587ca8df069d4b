// Package archive holds the commands that copy annotation sets between
// WFDB files and the annotation archive.
package archive

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/logger"
	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
	"github.com/julianstephens/distill/internal/source/wfdb"
)

// ImportCmd copies WFDB annotation files into the archive
type ImportCmd struct {
	Annotator string   `short:"a" required:"" help:"Annotator name (annotation file suffix)."`
	Records   []string `arg:"" help:"Records to import."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	archive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}

	files := ctx.WFDB()
	batch := uuid.NewString()
	for _, record := range c.Records {
		anns, err := readSet(ctx, files, record, c.Annotator)
		if err != nil {
			return err
		}
		set, err := archive.SaveSet(ctx.Ctx, models.AnnotationSet{
			Record:    record,
			Annotator: c.Annotator,
			BatchID:   batch,
		}, anns)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", wfdb.FileName(record, c.Annotator), err)
		}
		logger.Info("Imported annotation set", "record", record, "annotator", c.Annotator, "count", set.Count, "batch", batch)
		fmt.Fprintf(ctx.Stdout, "✓ Imported %d annotations from %s\n", set.Count, wfdb.FileName(record, c.Annotator))
	}
	fmt.Fprintf(ctx.Stdout, "Batch: %s\n", batch)
	return nil
}

// ListCmd lists the annotation sets held in the archive
type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	archive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}
	sets, err := archive.ListSets(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to list annotation sets: %w", err)
	}

	if len(sets) == 0 {
		fmt.Fprintln(ctx.Stdout, "No annotation sets found.")
		fmt.Fprintf(ctx.Stdout, "Archive: %s\n", archive.GetConfigPath())
		return nil
	}

	fmt.Fprintf(ctx.Stdout, "Annotation sets (%d total):\n\n", len(sets))
	for _, s := range sets {
		fmt.Fprintf(ctx.Stdout, "  %-12s %-8s %7d  %s  %s\n", s.Record, s.Annotator, s.Count, s.ImportedAt, s.BatchID)
	}
	fmt.Fprintf(ctx.Stdout, "\nArchive: %s\n", archive.GetConfigPath())
	return nil
}

// DumpCmd writes an archived annotation set back out as a WFDB file
type DumpCmd struct {
	Annotator string   `short:"a" required:"" help:"Annotator name (annotation file suffix)."`
	Output    string   `short:"o" help:"Directory to write RECORD.ANNOTATOR files to." default:"." type:"path"`
	Records   []string `arg:"" help:"Records to dump."`
}

func (c *DumpCmd) Run(ctx *cli.Context) error {
	archive, err := ctx.OpenArchive()
	if err != nil {
		return err
	}

	for _, record := range c.Records {
		anns, err := readSet(ctx, archive, record, c.Annotator)
		if err != nil {
			return err
		}
		path := filepath.Join(c.Output, wfdb.FileName(record, c.Annotator))
		if err := wfdb.WriteFile(path, anns); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stdout, "✓ Wrote %d annotations to %s\n", len(anns), path)
	}
	return nil
}

func readSet(ctx *cli.Context, src source.Source, record, annotator string) ([]models.Annotation, error) {
	stream, err := src.Open(ctx.Ctx, record, annotator)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return nil, fmt.Errorf("no %s annotations for record %s", annotator, record)
		}
		return nil, err
	}
	defer stream.Close()

	anns, err := source.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", wfdb.FileName(record, annotator), err)
	}
	return anns, nil
}
