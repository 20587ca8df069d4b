package cli

import (
	"fmt"
	"io"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/distiller"
	"github.com/julianstephens/distill/internal/export"
	"github.com/julianstephens/distill/internal/models"
)

// ExportCmd writes the distilled records to an Excel workbook
type ExportCmd struct {
	Annotator string   `short:"a" required:"" help:"Annotator name (annotation file suffix)."`
	Output    string   `short:"o" help:"Workbook path." default:"${export_file}" type:"path"`
	Records   []string `arg:"" help:"Records to export."`
}

func (cmd *ExportCmd) Run(ctx *Context) error {
	src, err := ctx.Source()
	if err != nil {
		return err
	}

	cfg := distiller.Config{Annotator: cmd.Annotator, Mode: models.ModeClassify}
	d := distiller.New(src, io.Discard)

	results := make([]models.Result, 0, len(cmd.Records))
	found := 0
	for _, record := range cmd.Records {
		r, err := d.ProcessRecord(ctx.Ctx, record, cfg)
		if err != nil {
			return err
		}
		if r.Found {
			found++
		}
		results = append(results, r)
	}

	if err := export.WriteFile(cmd.Output, results); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "✓ Exported %d of %d records to %s\n", found, len(results), cmd.Output)
	return nil
}

// Vars are the kong interpolation variables used by the command structs
func Vars() map[string]string {
	return map[string]string{
		"version":     constants.Version,
		"export_file": constants.DefaultExportFile,
	}
}
