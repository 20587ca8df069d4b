package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/keyring"
	"github.com/julianstephens/distill/internal/source"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skipStyle  = lipgloss.NewStyle().Faint(true)
)

type DoctorCmd struct{}

type report struct {
	ctx      *cli.Context
	hasError bool
}

func (r *report) ok(name string) {
	fmt.Fprintln(r.ctx.Stdout, okStyle.Render("✓ "+name+": OK"))
}

func (r *report) fail(name string, err error) {
	r.hasError = true
	fmt.Fprintln(r.ctx.Stdout, failStyle.Render("❌ "+name+": FAIL"))
	fmt.Fprintf(r.ctx.Stdout, "   Error: %v\n", err)
}

func (r *report) warn(name string, err error) {
	fmt.Fprintln(r.ctx.Stdout, warnStyle.Render("⚠ "+name+": WARNING"))
	fmt.Fprintf(r.ctx.Stdout, "   %v\n", err)
}

func (r *report) skip(name, reason string) {
	fmt.Fprintln(r.ctx.Stdout, skipStyle.Render("⊘ "+name+": SKIPPED ("+reason+")"))
}

// check reports err as a failure, or OK when nil
func (r *report) check(name string, err error) bool {
	if err != nil {
		r.fail(name, err)
		return false
	}
	r.ok(name)
	return true
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Fprintln(ctx.Stdout, titleStyle.Render("Running diagnostics..."))
	fmt.Fprintln(ctx.Stdout)

	r := &report{ctx: ctx}

	if err := checkConfigFile(ctx); err != nil {
		r.warn("Config file", err)
	} else {
		r.ok("Config file")
	}
	r.check("Configuration", ctx.Config.Validate())

	if err := checkSearchPath(ctx); err != nil {
		r.warn("WFDB search path", err)
	} else {
		r.ok("WFDB search path")
	}

	// distilling from WFDB files never touches the archive
	archive, err := ctx.OpenArchive()
	switch {
	case err == nil:
		r.ok("Archive reachable")
		r.check("Schema version", checkSchemaVersion(archive))
	case ctx.Config.Source == constants.SourceWFDB:
		r.warn("Archive reachable", fmt.Errorf("%w (only the archive commands need it)", err))
		r.skip("Schema version", "archive not reachable")
	default:
		r.fail("Archive reachable", err)
		r.skip("Schema version", "archive not reachable")
	}

	if keyring.IsAvailable() {
		r.ok("OS keyring")
	} else {
		r.warn("OS keyring", keyring.ErrKeyringUnavailable)
	}

	fmt.Fprintln(ctx.Stdout)
	if r.hasError {
		fmt.Fprintln(ctx.Stdout, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Fprintln(ctx.Stdout, "All diagnostics passed!")
	return nil
}

func checkConfigFile(ctx *cli.Context) error {
	if ctx.ConfigPath == "" {
		return errors.New("no config file in use, built-in defaults apply")
	}
	if _, err := os.Stat(ctx.ConfigPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not found, built-in defaults apply (create it with 'distill init')", ctx.ConfigPath)
		}
		return err
	}
	return nil
}

func checkSearchPath(ctx *cli.Context) error {
	var missing []string
	for _, dir := range ctx.WFDB().Path() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("directories not found: %v", missing)
	}
	return nil
}

func checkSchemaVersion(archive source.Archive) error {
	current, latest, err := archive.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("archive schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'distill init')", current, latest)
	}
	return nil
}
