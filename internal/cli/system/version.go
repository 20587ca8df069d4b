package system

import (
	"fmt"

	"github.com/julianstephens/distill/internal/cli"
	"github.com/julianstephens/distill/internal/constants"
)

type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *cli.Context) error {
	fmt.Fprintf(ctx.Stdout, "%s %s\n", constants.AppName, constants.Version)
	return nil
}
