package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/cli/archive"
	"github.com/julianstephens/distill/internal/cli/system"
	"github.com/julianstephens/distill/internal/config"
	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/errors"
	"github.com/julianstephens/distill/internal/logger"
)

type CLI struct {
	Config string `help:"Config file path (default ~/.config/distill/config.yaml)." placeholder:"PATH"`
	Source string `help:"Annotation source: wfdb, sqlite or postgres." placeholder:"SOURCE"`
	Debug  bool   `help:"Write debug logs to stderr."`

	Distill cli.DistillCmd   `cmd:"" passthrough:"" help:"Distill annotation files (default command)."`
	Init    system.InitCmd   `cmd:"" help:"Write the default config and initialize the annotation archive."`
	Doctor  system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Archive struct {
		Import  archive.ImportCmd  `cmd:"" help:"Copy WFDB annotation files into the archive."`
		List    archive.ListCmd    `cmd:"" help:"List archived annotation sets."`
		Dump    archive.DumpCmd    `cmd:"" help:"Write archived annotation sets as WFDB files."`
		Backup  archive.BackupCmd  `cmd:"" help:"Snapshot the SQLite archive."`
		Backups archive.BackupsCmd `cmd:"" help:"List archive snapshots."`
		Restore archive.RestoreCmd `cmd:"" help:"Restore the SQLite archive from a snapshot."`
	} `cmd:"" help:"Manage the annotation archive."`
	Export  cli.ExportCmd `cmd:"" help:"Write classifications and minute grids to an Excel workbook."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check whether the OS keyring is available."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Version system.VersionCmd `cmd:"" help:"Show version information."`
}

func newParser(grammar *CLI) (*kong.Kong, error) {
	return kong.New(grammar,
		kong.Name(constants.AppName),
		kong.Description("Condense per-minute apnea annotations into classifications or hourly grids."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars(cli.Vars()),
		kong.Writers(os.Stderr, os.Stderr),
		kong.Exit(func(int) { os.Exit(errors.ExitUsage) }),
	)
}

// route makes the default command explicit. Unless the first token after
// the long global flags names a command, the remaining tokens belong to
// distill, which walks them in order itself.
func route(app *kong.Application, args []string) []string {
	commands := map[string]bool{}
	for _, child := range app.Children {
		commands[child.Name] = true
		for _, alias := range child.Aliases {
			commands[alias] = true
		}
	}
	flags := map[string]*kong.Flag{}
	for _, f := range app.Flags {
		flags["--"+f.Name] = f
	}

	i := 0
	for i < len(args) {
		name, _, hasValue := strings.Cut(args[i], "=")
		if name == "--help" {
			return args
		}
		f, ok := flags[name]
		if !ok {
			break
		}
		i++
		if !hasValue && !f.IsBool() {
			i++
		}
	}
	if i > len(args) || (i < len(args) && commands[args[i]]) {
		return args
	}
	return slices.Concat(args[:i:i], []string{"distill"}, args[i:])
}

func main() {
	var grammar CLI
	parser, err := newParser(&grammar)
	if err != nil {
		errors.Fatal(err)
	}

	kctx, err := parser.Parse(route(parser.Model, os.Args[1:]))
	parser.FatalIfErrorf(err)

	cfgPath := grammar.Config
	cfg, err := config.Load(cfgPathOrDefault(cfgPath), cfgPath != "")
	if err != nil {
		errors.Fatal(err)
	}
	cfg.ApplyEnv(os.Getenv)
	if grammar.Source != "" {
		cfg.Source = grammar.Source
	}
	if grammar.Debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, Dir: cfg.Log.Dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "source", cfg.Source, "version", constants.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	appCtx := cli.NewContext(ctx, cfg, cfgPathOrDefault(cfgPath))

	err = kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close archive", "error", cerr)
	}
	stop()

	if err != nil {
		if errors.IsUsage(err) {
			errors.FatalUsage(err, cli.Usage)
		}
		errors.Fatal(err)
	}
}

func cfgPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultPath()
	}
	return path
}
