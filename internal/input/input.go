// Package input opens the source of guesses.
package input

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/term"
)

// LabelStdin identifies console input in stored games.
const LabelStdin = "stdin"

// Source is an opened stream of guess tokens.
type Source struct {
	io.Reader
	// Label describes where tokens come from ("stdin" or "file:<path>").
	Label string
	// Interactive is true when a person is typing at a terminal.
	Interactive bool

	closer io.Closer
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open returns the file at path, or fallback when path is empty or the file
// does not exist. A missing file is reported on warn and is not an error.
func Open(path string, fallback io.Reader, warn io.Writer) (*Source, error) {
	if path == "" {
		return fallbackSource(fallback), nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, werr := fmt.Fprintf(warn, "input file not found: %s; reading from %s\n", path, LabelStdin); werr != nil {
				// Best-effort warning.
				_ = werr
			}
			return fallbackSource(fallback), nil
		}
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return &Source{
		Reader: file,
		Label:  "file:" + path,
		closer: file,
	}, nil
}

func fallbackSource(r io.Reader) *Source {
	return &Source{
		Reader:      r,
		Label:       LabelStdin,
		Interactive: isTerminal(r),
	}
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
