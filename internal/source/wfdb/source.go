package wfdb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"

	"github.com/julianstephens/distill/internal/logger"
	"github.com/julianstephens/distill/internal/models"
	"github.com/julianstephens/distill/internal/source"
)

// Source finds annotation files named RECORD.ANNOTATOR along a search path
type Source struct {
	path []string
}

// New returns a Source searching the given directories in order.
// An empty path searches the current directory.
func New(path []string) *Source {
	if len(path) == 0 {
		path = []string{"."}
	}
	return &Source{path: path}
}

// SplitPath splits a WFDB search path. Entries are separated by ':', ';'
// or white space. A drive letter ("C:\db" or "C:/db") stays attached to its
// path on Windows.
func SplitPath(s string) []string {
	var dirs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			dirs = append(dirs, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ':' && runtime.GOOS == "windows" && isDrive(s, i, cur.Len()):
			cur.WriteByte(c)
		case c == ':' || c == ';' || unicode.IsSpace(rune(c)):
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return dirs
}

// isDrive reports whether the ':' at i follows a lone drive letter
func isDrive(s string, i, entryLen int) bool {
	return entryLen == 1 && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '/')
}

// Path returns the directories searched, in order
func (s *Source) Path() []string {
	return s.path
}

// FileName returns the base name of the annotation file for a pair
func FileName(record, annotator string) string {
	return record + "." + annotator
}

// Locate returns the first existing annotation file for the pair
func (s *Source) Locate(record, annotator string) (string, error) {
	name := FileName(record, annotator)
	for _, dir := range s.path {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Skipping unreadable search path entry", "path", candidate, "error", err)
		}
	}
	return "", fmt.Errorf("%w: %s", source.ErrNotFound, name)
}

// Open opens the annotation file for the pair. The returned stream closes
// the file.
func (s *Source) Open(ctx context.Context, record, annotator string) (source.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Locate(record, annotator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation file: %w", err)
	}
	logger.Debug("Opened annotation file", "path", path)
	return &fileStream{Reader: NewReader(f), f: f, ctx: ctx}, nil
}

type fileStream struct {
	*Reader
	f   *os.File
	ctx context.Context
}

// Next stops with the context's error once it is cancelled
func (s *fileStream) Next() (models.Annotation, error) {
	if err := s.ctx.Err(); err != nil {
		return models.Annotation{}, err
	}
	return s.Reader.Next()
}

func (s *fileStream) Close() error {
	return s.f.Close()
}

// WriteFile writes anns as an MIT-format annotation file
func WriteFile(path string, anns []models.Annotation) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create annotation file: %w", err)
	}
	w := NewWriter(f)
	for _, a := range anns {
		if err := w.Write(a); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode annotation at sample %d: %w", a.Time, err)
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
