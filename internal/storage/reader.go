package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/san-kum/solctra/internal/coil"
	"github.com/san-kum/solctra/internal/vec"
)

var (
	// ErrMalformedRecord indicates a coordinate line that is not three numbers.
	ErrMalformedRecord = errors.New("storage: malformed coordinate record")

	// ErrNoCoils indicates a resource directory without coil files.
	ErrNoCoils = errors.New("storage: no coil files found")
)

// ParseError locates a malformed record in an input file.
type ParseError struct {
	Path    string
	Line    int
	Wrapped error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}

// ReadPoints reads coordinate triples from path. Fields may be separated by
// commas, tabs or spaces. Blank lines and lines starting with '#' are
// skipped, as is a non-numeric header on the first record. Files ending in
// .gz are decompressed. max <= 0 reads every record.
func ReadPoints(path string, max int) ([]vec.Vector3, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	return parsePoints(r, path, max)
}

func parsePoints(r io.Reader, path string, max int) ([]vec.Vector3, error) {
	points := make([]vec.Vector3, 0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	first := true
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := splitFields(text)
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}

		p, err := parseRecord(fields)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Wrapped: err}
		}
		points = append(points, p)
		if max > 0 && len(points) >= max {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return points, nil
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\t' || r == ' ' || r == ';'
	})
}

func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			return false
		}
	}
	return len(fields) > 0
}

func parseRecord(fields []string) (vec.Vector3, error) {
	if len(fields) != 3 {
		return vec.Vector3{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedRecord, len(fields))
	}
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vec.Vector3{}, fmt.Errorf("%w: field %d %q", ErrMalformedRecord, i+1, f)
		}
		c[i] = v
	}
	return vec.New(c[0], c[1], c[2]), nil
}

// ReadCoilDir loads one coil per regular file in dir, in lexicographic
// filename order. Hidden files and subdirectories are ignored. The returned
// names are the file names in load order.
func ReadCoilDir(dir string) (coil.Set, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	set := make(coil.Set, 0, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		points, err := ReadPoints(filepath.Join(dir, entry.Name()), 0)
		if err != nil {
			return nil, nil, err
		}
		set = append(set, coil.Coil(points))
		names = append(names, entry.Name())
	}

	if len(set) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoCoils, dir)
	}

	return set, names, nil
}

// WriteCoilDir writes each coil to dir as coil_NNN.txt, tab separated, so
// that ReadCoilDir loads them back in the same order.
func WriteCoilDir(dir string, set coil.Set) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i, c := range set {
		path := filepath.Join(dir, fmt.Sprintf("coil_%03d.txt", i))
		if err := writeCoil(path, c); err != nil {
			return err
		}
	}
	return nil
}

func writeCoil(path string, c coil.Coil) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, p := range c {
		fmt.Fprintf(w, "%s\t%s\t%s\n", vec.FormatComponent(p.X), vec.FormatComponent(p.Y), vec.FormatComponent(p.Z))
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePoints writes points as a particle file with an "x,y,z" header.
func WritePoints(path string, points []vec.Vector3) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	w.WriteString("x,y,z\n")
	for _, p := range points {
		w.WriteString(p.String())
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
