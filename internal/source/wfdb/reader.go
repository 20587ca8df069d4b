package wfdb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/distill/internal/constants"
	"github.com/julianstephens/distill/internal/models"
)

// Reader decodes annotations from an MIT-format stream
type Reader struct {
	r      *bufio.Reader
	time   int64
	num    int
	chn    int
	header bool
	done   bool
}

// NewReader returns a Reader decoding r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), header: true}
}

// Next returns the next annotation, or io.EOF at the end of the file.
// Header notes at sample 0 (aux text starting with "## ") are skipped.
func (d *Reader) Next() (models.Annotation, error) {
	for {
		a, err := d.read()
		if err != nil {
			return a, err
		}
		if d.header && a.Time == 0 && a.Code == constants.CodeNote && strings.HasPrefix(a.Aux, "## ") {
			continue
		}
		d.header = false
		return a, nil
	}
}

func (d *Reader) read() (models.Annotation, error) {
	if d.done {
		return models.Annotation{}, io.EOF
	}
	for {
		w, err := d.word()
		if err == io.EOF {
			// a file cut at a word boundary ends like one with an end marker
			d.done = true
			return models.Annotation{}, io.EOF
		}
		if err != nil {
			return models.Annotation{}, err
		}

		code, value := split(w)
		switch code {
		case 0:
			if value == 0 {
				d.done = true
				return models.Annotation{}, io.EOF
			}
		case codeSkip:
			interval, err := d.skip()
			if err != nil {
				return models.Annotation{}, err
			}
			d.time += interval
			continue
		case codeNum, codeSub, codeChn, codeAux:
			// modifier with no annotation to attach to
			if err := d.modifier(code, value, &models.Annotation{}); err != nil {
				return models.Annotation{}, err
			}
			continue
		}

		d.time += int64(value)
		a := models.Annotation{Time: d.time, Code: code}
		if err := d.modifiers(&a); err != nil {
			return models.Annotation{}, err
		}
		a.Num = d.num
		a.Chan = d.chn
		return a, nil
	}
}

// modifiers consumes the NUM, SUB, CHN and AUX words that follow an annotation
func (d *Reader) modifiers(a *models.Annotation) error {
	for {
		peek, err := d.r.Peek(2)
		if err != nil {
			// end of data right after an annotation; the next read reports it
			return nil
		}
		code, value := split(binary.LittleEndian.Uint16(peek))
		if code < codeNum {
			return nil
		}
		if _, err := d.r.Discard(2); err != nil {
			return err
		}
		if err := d.modifier(code, value, a); err != nil {
			return err
		}
	}
}

func (d *Reader) modifier(code, value int, a *models.Annotation) error {
	switch code {
	case codeNum:
		d.num = signed(value)
	case codeSub:
		a.Sub = signed(value)
	case codeChn:
		d.chn = value
	case codeAux:
		size := value + value%2
		buf := make([]byte, size)
		if _, err := io.ReadFull(d.r, buf); err != nil {
			return fmt.Errorf("truncated aux field: %w", unexpected(err))
		}
		a.Aux = strings.TrimRight(string(buf[:value]), "\x00")
	}
	return nil
}

func (d *Reader) word() (uint16, error) {
	var buf [2]byte
	n, err := io.ReadFull(d.r, buf[:])
	if err == io.ErrUnexpectedEOF && n == 1 {
		return 0, fmt.Errorf("truncated annotation word: %w", err)
	}
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// skip reads the 32-bit interval following a SKIP word. The high 16 bits
// come first, each half little-endian.
func (d *Reader) skip() (int64, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, fmt.Errorf("truncated skip interval: %w", unexpected(err))
	}
	hi := uint32(binary.LittleEndian.Uint16(buf[0:2]))
	lo := uint32(binary.LittleEndian.Uint16(buf[2:4]))
	return int64(int32(hi<<16 | lo)), nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
