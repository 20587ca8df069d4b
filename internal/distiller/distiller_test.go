package distiller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	derrors "github.com/julianstephens/distill/internal/errors"
	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
)

const (
	codeN = 1
	codeA = 8
)

// minutes builds one on-grid annotation per code, starting at sample 0
func minutes(codes ...int) []models.Annotation {
	anns := make([]models.Annotation, len(codes))
	for i, c := range codes {
		anns[i] = models.Annotation{Time: int64(i) * 6000, Code: c}
	}
	return anns
}

func repeat(code, n int) []int {
	codes := make([]int, n)
	for i := range codes {
		codes[i] = code
	}
	return codes
}

func run(t *testing.T, src source.Source, record string, cfg Config) (string, models.Result) {
	t.Helper()
	var out bytes.Buffer
	res, err := New(src, &out).ProcessRecord(context.Background(), record, cfg)
	if err != nil {
		t.Fatalf("ProcessRecord(%s) returned error: %v", record, err)
	}
	return out.String(), res
}

func TestProcessRecordClassify(t *testing.T) {
	tests := []struct {
		name  string
		apnea int
		want  string
	}{
		{"four minutes", 4, "r01 C\n"},
		{"five minutes", 5, "r01 B\n"},
		{"ninety nine minutes", 99, "r01 B\n"},
		{"one hundred minutes", 100, "r01 A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := append(repeat(codeA, tt.apnea), repeat(codeN, 20)...)
			src := source.Memory{"r01": {"apn": minutes(codes...)}}

			out, res := run(t, src, "r01", Config{Annotator: "apn", Mode: models.ModeClassify})
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			if res.ApneaMinutes != tt.apnea {
				t.Errorf("ApneaMinutes = %d, want %d", res.ApneaMinutes, tt.apnea)
			}
		})
	}
}

func TestProcessRecordClassifyIgnoresUnknownCodes(t *testing.T) {
	anns := minutes(append(repeat(22, 10), repeat(codeA, 4)...)...)
	src := source.Memory{"r01": {"apn": anns}}

	out, _ := run(t, src, "r01", Config{Annotator: "apn", Mode: models.ModeClassify})
	if out != "r01 C\n" {
		t.Errorf("output = %q, want %q", out, "r01 C\n")
	}
}

func TestProcessRecordDetailAlternating(t *testing.T) {
	var codes []int
	var want strings.Builder
	for i := 0; i < 60; i++ {
		if i%2 == 0 {
			codes = append(codes, codeN)
			want.WriteByte('N')
		} else {
			codes = append(codes, codeA)
			want.WriteByte('A')
		}
	}
	src := source.Memory{"a01": {"apn": minutes(codes...)}}

	out, _ := run(t, src, "a01", Config{Annotator: "apn"})
	expected := "a01\n 0 " + want.String() + "\n\n"
	if out != expected {
		t.Errorf("output = %q, want %q", out, expected)
	}
	if strings.Contains(out, "X") {
		t.Error("output contains X for a gapless stream")
	}
}

func TestProcessRecordDetailGap(t *testing.T) {
	anns := []models.Annotation{
		{Time: 0, Code: codeN},
		{Time: 6000, Code: codeN},
		{Time: 18000, Code: codeA},
		{Time: 24000, Code: codeN},
	}
	src := source.Memory{"a02": {"apn": anns}}

	out, res := run(t, src, "a02", Config{Annotator: "apn"})
	if out != "a02\n 0 NNXAN\n\n" {
		t.Errorf("output = %q, want %q", out, "a02\n 0 NNXAN\n\n")
	}
	if res.Slots[2] != models.SlotUnknown || res.Slots[3] != models.SlotApnea {
		t.Errorf("slots = %v, want unknown at 3rd and apnea at 4th position", res.Slots)
	}
}

func TestProcessRecordStaleAnnotation(t *testing.T) {
	anns := []models.Annotation{
		{Time: 0, Code: codeN},
		{Time: 6000, Code: codeA},
		{Time: 6000, Code: codeN},
		{Time: 0, Code: codeA},
		{Time: 12000, Code: codeA},
	}
	src := source.Memory{"a03": {"apn": anns}}

	out, res := run(t, src, "a03", Config{Annotator: "apn"})
	if out != "a03\n 0 NAA\n\n" {
		t.Errorf("output = %q, want %q", out, "a03\n 0 NAA\n\n")
	}
	if res.ApneaMinutes != 2 {
		t.Errorf("ApneaMinutes = %d, want 2", res.ApneaMinutes)
	}
}

func TestProcessRecordHourRows(t *testing.T) {
	src := source.Memory{"a04": {"apn": minutes(repeat(codeN, 125)...)}}

	out, _ := run(t, src, "a04", Config{Annotator: "apn"})
	lines := strings.Split(out, "\n")
	// record id, three rows, then the two terminating line breaks
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6: %q", len(lines), out)
	}
	if lines[0] != "a04" {
		t.Errorf("first line = %q, want record id", lines[0])
	}
	wantPrefixes := []string{" 0 ", " 1 ", " 2 "}
	wantLens := []int{60, 60, 5}
	for i, line := range lines[1:4] {
		if !strings.HasPrefix(line, wantPrefixes[i]) {
			t.Errorf("row %d = %q, want prefix %q", i, line, wantPrefixes[i])
		}
		if n := len(line) - 3; n != wantLens[i] {
			t.Errorf("row %d has %d slots, want %d", i, n, wantLens[i])
		}
	}
	if lines[4] != "" || lines[5] != "" {
		t.Errorf("record block not followed by a blank line: %q", out)
	}
}

func TestProcessRecordWideHourNumber(t *testing.T) {
	src := source.Memory{"a05": {"apn": minutes(repeat(codeN, 601)...)}}

	out, _ := run(t, src, "a05", Config{Annotator: "apn"})
	if !strings.Contains(out, "\n 9 ") || !strings.Contains(out, "\n10 N\n") {
		t.Errorf("hour numbers not right-aligned to width 2: %q", out[len(out)-80:])
	}
}

func TestProcessRecordNoAnnotations(t *testing.T) {
	src := source.Memory{"a01": {"apn": minutes(codeN)}}

	for _, mode := range []models.Mode{models.ModeDetail, models.ModeClassify} {
		out, res := run(t, src, "x99", Config{Annotator: "apn", Mode: mode})
		if out != "x99 [no annotations]\n" {
			t.Errorf("%s: output = %q, want %q", mode, out, "x99 [no annotations]\n")
		}
		if res.Found {
			t.Errorf("%s: Found = true for missing record", mode)
		}
	}

	out, _ := run(t, src, "a01", Config{Annotator: "qrs", Mode: models.ModeClassify})
	if out != "a01 [no annotations]\n" {
		t.Errorf("other annotator: output = %q", out)
	}
}

func TestProcessRecordEmptyStream(t *testing.T) {
	src := source.Memory{"a06": {"apn": nil}}

	out, _ := run(t, src, "a06", Config{Annotator: "apn"})
	if out != "a06\n\n" {
		t.Errorf("detail output = %q, want %q", out, "a06\n\n")
	}
	out, _ = run(t, src, "a06", Config{Annotator: "apn", Mode: models.ModeClassify})
	if out != "a06 C\n" {
		t.Errorf("classify output = %q, want %q", out, "a06 C\n")
	}
}

func TestProcessRecordTemplate(t *testing.T) {
	anns := []models.Annotation{{Time: 0, Code: codeN}, {Time: 12000, Code: codeA}}
	src := source.Memory{"a07": {"apn": anns}}

	out, _ := run(t, src, "a07", Config{Annotator: "apn", Template: true})
	if out != "a07\n 0 ?X?\n\n" {
		t.Errorf("detail template = %q, want %q", out, "a07\n 0 ?X?\n\n")
	}
	out, _ = run(t, src, "a07", Config{Annotator: "apn", Mode: models.ModeClassify, Template: true})
	if out != "a07 ?\n" {
		t.Errorf("classify template = %q, want %q", out, "a07 ?\n")
	}
}

func TestProcessRecordMissingAnnotator(t *testing.T) {
	var out bytes.Buffer
	_, err := New(source.Memory{}, &out).ProcessRecord(context.Background(), "a01", Config{})
	if !derrors.IsUsage(err) {
		t.Fatalf("ProcessRecord() error = %v, want configuration error", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing written", out.String())
	}
}

type failingStream struct {
	anns []models.Annotation
}

func (s *failingStream) Next() (models.Annotation, error) {
	if len(s.anns) == 0 {
		return models.Annotation{}, errors.New("truncated annotation file")
	}
	a := s.anns[0]
	s.anns = s.anns[1:]
	return a, nil
}

func (s *failingStream) Close() error { return nil }

type streamSource struct{ stream source.Stream }

func (s streamSource) Open(context.Context, string, string) (source.Stream, error) {
	return s.stream, nil
}

func TestProcessRecordReadErrorEndsWalk(t *testing.T) {
	src := streamSource{&failingStream{anns: minutes(codeA, codeA)}}

	out, res := run(t, src, "a08", Config{Annotator: "apn", Mode: models.ModeClassify})
	if out != "a08 C\n" {
		t.Errorf("output = %q, want %q", out, "a08 C\n")
	}
	if res.ApneaMinutes != 2 {
		t.Errorf("ApneaMinutes = %d, want 2", res.ApneaMinutes)
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestProcessRecordWriteError(t *testing.T) {
	src := source.Memory{"a01": {"apn": minutes(codeN)}}
	_, err := New(src, errWriter{}).ProcessRecord(context.Background(), "a01", Config{Annotator: "apn"})
	if err == nil {
		t.Fatal("ProcessRecord() expected write error, got nil")
	}
}

// ctxSource honors cancellation the way the database sources do
type ctxSource struct {
	anns   []models.Annotation
	cancel func()
	// cancelAfter cancels once this many annotations were read; -1 never
	cancelAfter int
}

type ctxStream struct {
	ctx  context.Context
	src  *ctxSource
	read int
}

func (s *ctxSource) Open(ctx context.Context, _, _ string) (source.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ctxStream{ctx: ctx, src: s}, nil
}

func (s *ctxStream) Next() (models.Annotation, error) {
	if s.read == s.src.cancelAfter {
		s.src.cancel()
	}
	if err := s.ctx.Err(); err != nil {
		return models.Annotation{}, err
	}
	if s.read >= len(s.src.anns) {
		return models.Annotation{}, io.EOF
	}
	a := s.src.anns[s.read]
	s.read++
	return a, nil
}

func (s *ctxStream) Close() error { return nil }

func TestProcessRecordCancelledBeforeOpen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &ctxSource{anns: minutes(codeA), cancel: cancel, cancelAfter: -1}

	for _, mode := range []models.Mode{models.ModeDetail, models.ModeClassify} {
		var out bytes.Buffer
		_, err := New(src, &out).ProcessRecord(ctx, "a01", Config{Annotator: "apn", Mode: mode})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: ProcessRecord() error = %v, want context.Canceled", mode, err)
		}
		if out.Len() != 0 {
			t.Errorf("%s: output = %q, want nothing written", mode, out.String())
		}
	}
}

func TestProcessRecordCancelledDuringOpen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := cancelOnOpen{cancel: cancel}

	var out bytes.Buffer
	_, err := New(src, &out).ProcessRecord(ctx, "a01", Config{Annotator: "apn", Mode: models.ModeClassify})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessRecord() error = %v, want context.Canceled", err)
	}
	if strings.Contains(out.String(), "no annotations") {
		t.Errorf("output = %q, a cancelled open must not print the marker", out.String())
	}
}

type cancelOnOpen struct{ cancel func() }

func (s cancelOnOpen) Open(ctx context.Context, _, _ string) (source.Stream, error) {
	s.cancel()
	return nil, ctx.Err()
}

func TestProcessRecordCancelledMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &ctxSource{anns: minutes(repeat(codeA, 120)...), cancel: cancel, cancelAfter: 3}

	var out bytes.Buffer
	_, err := New(src, &out).ProcessRecord(ctx, "a01", Config{Annotator: "apn", Mode: models.ModeClassify})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ProcessRecord() error = %v, want context.Canceled", err)
	}
	if out.String() != "a01" {
		t.Errorf("output = %q, want only the record id without a bucket", out.String())
	}
}
