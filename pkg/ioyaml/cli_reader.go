// Package ioyaml reads YAML documents from a file flag or piped stdin.
package ioyaml

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// FileReader decodes a T from the file named by its flag, falling back to
// stdin when the flag is empty.
type FileReader[T any] struct {
	fileFlagValue string

	// Stdin is read when no file is given. Defaults to os.Stdin.
	Stdin *os.File
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to YAML file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Source names where Read takes its input from.
func (fr *FileReader[T]) Source() string {
	if fr.fileFlagValue != "" {
		return fr.fileFlagValue
	}
	return "stdin"
}

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		stdin := fr.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		if term.IsTerminal(int(stdin.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe YAML input")
		}
		reader = stdin
	}

	return Decode[T](reader)
}

// Decode reads one YAML document, rejecting unknown fields.
func Decode[T any](r io.Reader) (T, error) {
	var out T
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode YAML: %w", err)
	}
	return out, nil
}
