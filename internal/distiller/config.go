package distiller

import (
	"strings"

	"github.com/julianstephens/distill/internal/errors"
	"github.com/julianstephens/distill/internal/models"
)

// Config is the per-record run configuration. It is built once from parsed
// arguments and passed by value, so a record never sees later changes.
type Config struct {
	Annotator string
	Mode      models.Mode
	Template  bool
}

// Validate checks that the configuration can be used to process a record
func (c Config) Validate() error {
	if strings.TrimSpace(c.Annotator) == "" {
		return errors.NewConfigError("annotator must be set with -a before the first record")
	}
	return nil
}
