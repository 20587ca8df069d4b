package cli

import (
	"fmt"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/distiller"
	"github.com/julianstephens/distill/internal/errors"
	"github.com/julianstephens/distill/internal/models"
)

// Usage is printed for every usage or configuration error of the default
// command
var Usage = fmt.Sprintf("Usage:\n"+
	"   %[1]s -a ANNOTATOR [-s] RECORD1 [RECORD2 ...]\n"+
	"where ANNOTATOR is the annotator name (suffix) of the files to be 'distilled'\n"+
	"and RECORD1, RECORD2, etc. are the record names for these files.\n"+
	"Options may be repeated between records and apply to the records after them:\n"+
	"   -s          print one classification letter (A, B or C) per record\n"+
	"   --template  mask letters with '?' as in the challenge templates\n"+
	"Run '%[1]s --help' for the administrative commands.\n", constants.AppName)

// Job is one record together with the configuration in force where the
// record appeared on the command line
type Job struct {
	Record string
	Config distiller.Config
}

// Plan walks the default command's arguments in order. Options change the
// configuration for the records that follow them; each record captures a
// copy. The whole line is checked before any job runs.
func Plan(args []string, base distiller.Config) ([]Job, error) {
	if len(args) < 2 {
		return nil, errors.NewUsageError("too few arguments")
	}

	cfg := base
	var jobs []Job
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--template" {
			cfg.Template = true
			continue
		}
		if len(arg) == 0 || arg[0] != '-' {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{Record: arg, Config: cfg})
			continue
		}

		var opt byte
		if len(arg) > 1 {
			opt = arg[1]
		}
		switch opt {
		case 'a':
			i++
			if i >= len(args) {
				return nil, errors.NewUsageError("annotator must follow -a")
			}
			cfg.Annotator = args[i]
		case 'h':
			return nil, &errors.UsageError{}
		case 's':
			cfg.Mode = models.ModeClassify
		default:
			return nil, errors.NewUsageError("unrecognized option %s", arg)
		}
	}
	return jobs, nil
}
