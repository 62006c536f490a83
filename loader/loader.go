// Package loader reads ledger files from disk and expands their include
// entries.
//
// The loader supports two modes of operation:
//   - Simple mode: parses a single file, include entries are passed through
//   - Follow mode: replaces every include entry with the entries of the
//     included file, recursively
//
// When following includes, relative paths are resolved from the directory of
// the including file. A file that is included a second time is skipped; a file
// that includes itself, directly or through other files, is an error.
//
// Example usage:
//
//	// Load a single file without following includes
//	ldr := loader.New()
//	result, err := ldr.Load(ctx, "main.ledger")
//
//	// Stream the expanded entries into a ledger session
//	ldr = loader.New(loader.WithFollowIncludes())
//	err = ldr.Walk(ctx, "main.ledger", func(file *parser.File, entry ast.Tracked[ast.Entry]) error {
//	    return l.ProcessEntry(ctx, file, entry)
//	})
package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/ledger/ast"
	"github.com/robinvdvleuten/ledger/parser"
	"github.com/robinvdvleuten/ledger/telemetry"
)

var (
	errEmptyPath   = errors.New("empty path")
	errIsDirectory = errors.New("is a directory")
	errCycle       = errors.New("include cycle")
)

// Loader handles loading and parsing of ledger files.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithFollowIncludes())
type Loader struct {
	// FollowIncludes determines whether include entries are expanded.
	FollowIncludes bool
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFollowIncludes configures the loader to replace include entries with
// the entries of the included files.
func WithFollowIncludes() Option {
	return func(l *Loader) {
		l.FollowIncludes = true
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SourceFile is one file read while loading.
type SourceFile struct {
	Path     string
	Source   string
	Warnings []parser.Warning
}

// Entry is an entry together with the file it was read from.
type Entry struct {
	File  *parser.File
	Entry ast.Tracked[ast.Entry]
}

// Result holds everything read by Load.
type Result struct {
	// Root is the absolute path of the file Load was called with.
	Root string
	// Files lists every loaded file in the order it was first read.
	Files []SourceFile
	// Entries are the entries in expanded file order.
	Entries []Entry
}

// File returns the loaded file with the given path.
func (r *Result) File(path string) (SourceFile, bool) {
	for _, f := range r.Files {
		if f.Path == path {
			return f, true
		}
	}
	return SourceFile{}, false
}

// WalkFunc receives every entry in expanded file order. Returning an error
// stops the walk; the error is returned from Walk as is.
type WalkFunc func(file *parser.File, entry ast.Tracked[ast.Entry]) error

// Load reads the file at path and returns its entries.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, &LoadError{Kind: IO, Path: path, Err: err}
	}

	result := &Result{Root: root}
	w := l.walker(result)
	if err := w.walkPath(ctx, path, nil); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadBytes parses data as if it had been read from a file called name.
// Includes are resolved relative to the directory of name.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*Result, error) {
	result := &Result{Root: name}
	w := l.walker(result)
	if err := w.walkSource(ctx, name, data); err != nil {
		return nil, err
	}
	return result, nil
}

// Walk streams the entries of the file at path to fn without collecting them.
func (l *Loader) Walk(ctx context.Context, path string, fn WalkFunc) error {
	w := &walker{loader: l, fn: fn, loaded: make(map[string]bool)}
	return w.walkPath(ctx, path, nil)
}

func (l *Loader) walker(result *Result) *walker {
	return &walker{
		loader: l,
		result: result,
		loaded: make(map[string]bool),
		fn: func(file *parser.File, entry ast.Tracked[ast.Entry]) error {
			result.Entries = append(result.Entries, Entry{File: file, Entry: entry})
			return nil
		},
	}
}

// walker tracks state during recursive loading.
type walker struct {
	loader *Loader
	result *Result
	fn     WalkFunc

	// loaded holds the absolute paths of files already read.
	loaded map[string]bool
	// stack holds the absolute paths of the files currently being walked.
	stack []string
}

// site is the include entry that named a file.
type site struct {
	file *parser.File
	span ast.Span
}

func (s *site) fail(kind ErrorKind, path string, err error) *LoadError {
	e := &LoadError{Kind: kind, Path: path, Err: err}
	if s != nil {
		e.Filename, e.Source, e.Span = s.file.Filename, s.file.Source, s.span
	}
	return e
}

func (w *walker) walkPath(ctx context.Context, path string, from *site) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return from.fail(IO, path, err)
	}
	if slices.Contains(w.stack, abs) {
		return from.fail(BadIncludePath, path, errCycle)
	}
	if w.loaded[abs] {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("include skipped, file already loaded")
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return from.fail(IO, path, err)
	}
	if info.IsDir() {
		return from.fail(BadIncludePath, path, errIsDirectory)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return from.fail(IO, path, err)
	}

	return w.walkSource(ctx, path, data)
}

func (w *walker) walkSource(ctx context.Context, path string, data []byte) error {
	timer := telemetry.StartTimer(ctx, telemetry.Load, filepath.Base(path))
	defer timer.End()

	if abs, err := filepath.Abs(path); err == nil {
		w.loaded[abs] = true
		w.stack = append(w.stack, abs)
		defer func() { w.stack = w.stack[:len(w.stack)-1] }()
	}

	file, err := parser.ParseBytes(ctx, path, data)
	if err != nil {
		return &LoadError{Kind: Parse, Path: path, Err: err}
	}

	if w.result != nil {
		w.result.Files = append(w.result.Files, SourceFile{Path: path, Source: file.Source, Warnings: file.Warnings})
	}
	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("entries", len(file.Entries)).
		Msg("file loaded")

	for _, entry := range file.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		include, ok := entry.Value.(*ast.Include)
		if !ok || !w.loader.FollowIncludes {
			if err := w.fn(file, entry); err != nil {
				return err
			}
			continue
		}

		from := &site{file: file, span: entry.Span}
		if include.Path == "" {
			return from.fail(BadIncludePath, include.Path, errEmptyPath)
		}
		target := include.Path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		timer.Count("includes", 1)
		if err := w.walkPath(ctx, target, from); err != nil {
			return err
		}
	}

	return nil
}
