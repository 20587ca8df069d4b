package cli

import (
	"bufio"
	"fmt"

	"github.com/julianstephens/distill/internal/distiller"
	"github.com/julianstephens/distill/internal/logger"
)

// DistillCmd is the default command: distill -a ANNOTATOR [-s] RECORD...
type DistillCmd struct {
	Args []string `arg:"" optional:"" help:"-a ANNOTATOR [-s] [--template] RECORD1 [RECORD2 ...]"`
}

func (cmd *DistillCmd) Run(ctx *Context) error {
	jobs, err := Plan(cmd.Args, distiller.Config{})
	if err != nil {
		return err
	}

	src, err := ctx.Source()
	if err != nil {
		return err
	}

	out := bufio.NewWriter(ctx.Stdout)
	d := distiller.New(src, out)
	logger.Debug("Distilling records", "count", len(jobs), "source", ctx.Config.Source)
	for _, job := range jobs {
		if _, err := d.ProcessRecord(ctx.Ctx, job.Record, job.Config); err != nil {
			// what was already distilled still reaches stdout
			out.Flush()
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
