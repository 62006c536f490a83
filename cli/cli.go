// Package cli implements the commands of the ledger command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/ledger/loader"
	"github.com/robinvdvleuten/ledger/output"
)

const (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

// stdinName is the file name reported for input read from stdin.
const stdinName = "<stdin>"

func printSuccess(w io.Writer, message string) {
	styles := output.NewStyles(w)
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Success(successSymbol), message)
}

func printError(w io.Writer, message string) {
	styles := output.NewStyles(w)
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error(errorSymbol), styles.Error(message))
}

func printInfof(w io.Writer, format string, args ...any) {
	styles := output.NewStyles(w)
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.FilePath(infoSymbol), fmt.Sprintf(format, args...))
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal(os.Stdin) {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isTerminalWriter reports whether w is a terminal. Buffers and pipes are not.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// FileOrStdin accepts either a file path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil (read by loader).
type FileOrStdin struct {
	Filename string
	Contents []byte
}

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin(os.Stdin)
	}

	if _, err := os.Stat(filename); err != nil {
		return err
	}
	f.Filename = filename
	f.Contents = nil

	return nil
}

// EnsureContents populates Contents from stdin if Filename is empty.
func (f *FileOrStdin) EnsureContents() error {
	if f.Filename == "" {
		return f.readStdin(os.Stdin)
	}
	return nil
}

func (f *FileOrStdin) readStdin(r io.Reader) error {
	contents, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinName
	f.Contents = contents
	return nil
}

// IsStdin reports whether the input was read from stdin.
func (f *FileOrStdin) IsStdin() bool {
	return f.Filename == stdinName
}

// GetAbsoluteFilename returns the absolute path, or "<stdin>" for stdin.
func (f *FileOrStdin) GetAbsoluteFilename() string {
	if f.IsStdin() {
		return f.Filename
	}
	absPath, err := filepath.Abs(f.Filename)
	if err != nil {
		return f.Filename
	}
	return absPath
}

// Load loads the input using LoadBytes for stdin or Load for files.
func (f *FileOrStdin) Load(ctx context.Context, ldr *loader.Loader) (*loader.Result, error) {
	if f.IsStdin() {
		return ldr.LoadBytes(ctx, f.Filename, f.Contents)
	}
	return ldr.Load(ctx, f.GetAbsoluteFilename())
}

// Walk streams the entries of the input to fn. Stdin is loaded in one go
// first since there is no path to walk from.
func (f *FileOrStdin) Walk(ctx context.Context, ldr *loader.Loader, fn loader.WalkFunc) error {
	if !f.IsStdin() {
		return ldr.Walk(ctx, f.GetAbsoluteFilename(), fn)
	}

	result, err := ldr.LoadBytes(ctx, f.Filename, f.Contents)
	if err != nil {
		return err
	}
	for _, e := range result.Entries {
		if err := fn(e.File, e.Entry); err != nil {
			return err
		}
	}
	return nil
}
