package wfdb

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/julianstephens/distill/internal/models"
)

// Writer encodes annotations in MIT format. Close must be called to write
// the end marker and flush.
type Writer struct {
	w    *bufio.Writer
	time int64
	num  int
	chn  int
}

// NewWriter returns a Writer encoding to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one annotation
func (e *Writer) Write(a models.Annotation) error {
	if a.Code < 1 || a.Code > maxCode {
		return fmt.Errorf("annotation code %d out of range 1-%d", a.Code, maxCode)
	}
	if len(a.Aux) > maxAux {
		return fmt.Errorf("aux string of %d bytes exceeds %d", len(a.Aux), maxAux)
	}

	delta := a.Time - e.time
	if delta < 0 || delta > maxDelta {
		if delta < math.MinInt32 || delta > math.MaxInt32 {
			return fmt.Errorf("interval %d before sample %d does not fit a skip", delta, a.Time)
		}
		if err := e.skip(int32(delta)); err != nil {
			return err
		}
		delta = 0
	}
	if err := e.put(word(a.Code, int(delta))); err != nil {
		return err
	}
	e.time = a.Time

	if a.Sub != 0 {
		if err := e.put(word(codeSub, a.Sub)); err != nil {
			return err
		}
	}
	if a.Chan != e.chn {
		if err := e.put(word(codeChn, a.Chan)); err != nil {
			return err
		}
		e.chn = a.Chan
	}
	if a.Num != e.num {
		if err := e.put(word(codeNum, a.Num)); err != nil {
			return err
		}
		e.num = a.Num
	}
	if a.Aux != "" {
		if err := e.put(word(codeAux, len(a.Aux))); err != nil {
			return err
		}
		buf := []byte(a.Aux)
		if len(buf)%2 == 1 {
			buf = append(buf, 0)
		}
		if _, err := e.w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close writes the end-of-file marker and flushes buffered data
func (e *Writer) Close() error {
	if err := e.put(0); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Writer) skip(interval int32) error {
	if err := e.put(word(codeSkip, 0)); err != nil {
		return err
	}
	u := uint32(interval)
	if err := e.put(uint16(u >> 16)); err != nil {
		return err
	}
	return e.put(uint16(u))
}

func (e *Writer) put(w uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], w)
	_, err := e.w.Write(buf[:])
	return err
}
