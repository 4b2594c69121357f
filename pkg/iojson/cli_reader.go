package iojson

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a JSON document from the file named by its flag, or
// from stdin when the flag is empty.
type FileReader struct {
	fileFlagValue string
	stdin         *os.File
}

func (fr *FileReader) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to JSON file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Given reports whether the file flag was set.
func (fr *FileReader) Given() bool {
	return fr.fileFlagValue != ""
}

// Read returns the raw document.
func (fr *FileReader) Read() ([]byte, error) {
	var reader io.Reader

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		in := fr.in()
		if term.IsTerminal(int(in.Fd())) {
			return nil, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = in
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func (fr *FileReader) in() *os.File {
	if fr.stdin != nil {
		return fr.stdin
	}
	return os.Stdin
}
