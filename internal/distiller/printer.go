package distiller

import (
	"fmt"
	"io"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/models"
)

// printer writes one record block. The first write error sticks and turns
// later writes into no-ops.
type printer struct {
	w        io.Writer
	template bool
	err      error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) symbol(c byte) {
	if p.err != nil {
		return
	}
	if p.template && c != 'X' {
		c = constants.TemplateSymbol
	}
	_, p.err = p.w.Write([]byte{c})
}

// slot prints a detail slot, opening a new hour row on every 60th minute
func (p *printer) slot(s models.Slot) {
	if s.Minute%constants.MinutesPerHour == 0 {
		p.printf("\n%2d ", s.Hour())
	}
	p.symbol(s.Kind.Symbol())
}

func (p *printer) bucket(b models.Bucket) {
	p.printf(" ")
	p.symbol(byte(b))
}
