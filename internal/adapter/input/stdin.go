package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// StdinAdapter reads toast entries from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Import reads entries from standard input.
// Supports three formats:
// 1. a JSON array of entries
// 2. JSON lines, one entry per line
// 3. plain text, one toast per line as "title" or "title<TAB>description"
func (a *StdinAdapter) Import(ctx context.Context) ([]Entry, error) {
	scanner := bufio.NewScanner(a.reader)
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var lines [][]byte
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{Source: "stdin", Message: "failed to read stdin", Err: err}
	}
	if len(lines) == 0 {
		return nil, nil
	}

	if lines[0][0] == '[' {
		return parseJSONArray(bytes.Join(lines, []byte("\n")))
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var entry Entry
		if line[0] == '{' {
			if err := json.Unmarshal(line, &entry); err != nil {
				return nil, &AdapterError{Source: "stdin", Message: "failed to parse JSON line", Err: err}
			}
		} else {
			title, desc, _ := strings.Cut(string(line), "\t")
			entry = Entry{Title: title, Description: desc}
		}
		if e, ok := clean(entry); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// parseJSONArray parses a JSON array of entries.
func parseJSONArray(data []byte) ([]Entry, error) {
	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &AdapterError{Source: "stdin", Message: "failed to parse JSON input", Err: err}
	}

	entries := make([]Entry, 0, len(raw))
	for _, entry := range raw {
		if e, ok := clean(entry); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// clean sanitizes text fields and drops entries with nothing to show.
func clean(e Entry) (Entry, bool) {
	e.Title = sanitizeString(e.Title)
	e.Description = sanitizeString(e.Description)
	e.AppName = sanitizeString(e.AppName)
	return e, e.Title != "" || e.Description != ""
}
