// Package idlist reads compound-identifier lists from local files.
//
// Two shapes are supported: plain text with one identifier per line, and CSV
// with a named identifier column. Registry exports are frequently produced on
// Windows, so the reader also handles legacy single-byte encodings and a
// UTF-8 BOM.
package idlist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Options controls how the identifier file is interpreted.
type Options struct {
	// Column names the CSV column holding identifiers. Empty means the file
	// is plain text, one identifier per line.
	Column string

	// Encoding names the file's character encoding when it is not UTF-8.
	// Supported values: "windows-1252", "latin-1", "iso-8859-1", "utf-8",
	// and empty (UTF-8).
	Encoding string
}

// Read loads identifiers from path. Blank lines and surrounding whitespace
// are dropped; order and duplicates are preserved otherwise.
func Read(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idlist: open: %w", err)
	}
	defer f.Close()

	r, err := decodeReader(f, opts.Encoding)
	if err != nil {
		return nil, err
	}

	var ids []string
	if opts.Column != "" {
		ids, err = readCSV(r, opts.Column)
	} else {
		ids, err = readLines(r)
	}
	if err != nil {
		return nil, fmt.Errorf("idlist: %s: %w", path, err)
	}
	return ids, nil
}

// decodeReader wraps r so downstream readers see UTF-8.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8":
		return r, nil
	case "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("idlist: unsupported encoding %q", encoding)
	}
}

// readLines reads one identifier per line, skipping blanks.
func readLines(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// readCSV reads the named column from a headered CSV file.
func readCSV(r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = stripBOM(header)

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found in header %v", column, header)
	}

	var ids []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if idx >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[idx])
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// stripBOM removes a UTF-8 BOM from the first header field if present.
func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}
