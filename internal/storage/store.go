package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/san-kum/solctra/internal/field"
	"github.com/san-kum/solctra/internal/tracer"
	"github.com/san-kum/solctra/internal/vec"
)

const (
	snapshotPrefix = "out_"
	snapshotExt    = ".csv"
	gzipExt        = ".gz"
	metadataFile   = "metadata.json"
)

var snapshotHeader = []string{"x", "y", "z"}

// Store is an output directory holding one CSV file per snapshot plus the
// run metadata. It implements tracer.Sink.
type Store struct {
	baseDir  string
	compress bool
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// SetCompress switches snapshot output to gzip-compressed files.
func (s *Store) SetCompress(on bool) { s.compress = on }

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// SnapshotPath returns the file a snapshot of step is written to.
func (s *Store) SnapshotPath(step int) string {
	name := snapshotPrefix + strconv.Itoa(step) + snapshotExt
	if s.compress {
		name += gzipExt
	}
	return filepath.Join(s.baseDir, name)
}

// WriteSnapshot writes a header row "x,y,z" followed by one row per particle
// in set order.
func (s *Store) WriteSnapshot(snap tracer.Snapshot) error {
	path := s.SnapshotPath(snap.Step)
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := s.encodeSnapshot(f, snap); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func (s *Store) encodeSnapshot(f io.Writer, snap tracer.Snapshot) error {
	var zw *gzip.Writer
	out := f
	if s.compress {
		zw = gzip.NewWriter(f)
		out = zw
	}

	bw := bufio.NewWriter(out)
	w := csv.NewWriter(bw)
	if err := w.Write(snapshotHeader); err != nil {
		return err
	}

	row := make([]string, 3)
	for i := 0; i < snap.Len(); i++ {
		p := snap.Position(i)
		row[0] = vec.FormatComponent(p.X)
		row[1] = vec.FormatComponent(p.Y)
		row[2] = vec.FormatComponent(p.Z)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

// Snapshots lists the snapshot steps present in the directory, ascending.
func (s *Store) Snapshots() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	steps := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if step, ok := parseSnapshotName(entry.Name()); ok {
			steps = append(steps, step)
		}
	}
	sort.Ints(steps)
	return steps, nil
}

func parseSnapshotName(name string) (int, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) {
		return 0, false
	}
	name = strings.TrimSuffix(name, gzipExt)
	if !strings.HasSuffix(name, snapshotExt) {
		return 0, false
	}
	step, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExt))
	if err != nil || step < 0 {
		return 0, false
	}
	return step, true
}

// LoadSnapshot reads back the positions written for step, whether plain or
// compressed.
func (s *Store) LoadSnapshot(step int) ([]vec.Vector3, error) {
	plain := filepath.Join(s.baseDir, snapshotPrefix+strconv.Itoa(step)+snapshotExt)
	if _, err := os.Stat(plain); err == nil {
		return ReadPoints(plain, 0)
	}
	return ReadPoints(plain+gzipExt, 0)
}

type RunMetadata struct {
	ID             string       `json:"id"`
	Timestamp      time.Time    `json:"timestamp"`
	Device         field.Device `json:"device"`
	Integrator     string       `json:"integrator"`
	Steps          int          `json:"steps"`
	StepSize       float64      `json:"step_size"`
	WriteFrequency int          `json:"write_frequency"`
	Workers        int          `json:"workers"`
	Coils          []string     `json:"coils"`
	Segments       int          `json:"segments"`
	Particles      int          `json:"particles"`
	StepsTaken     int          `json:"steps_taken"`
	Active         int          `json:"active"`
	Diverged       int          `json:"diverged"`
	Snapshots      []int        `json:"snapshots"`
	Elapsed        string       `json:"elapsed"`
}

// NewRunID derives a run identifier from the start time.
func NewRunID(start time.Time) string {
	return fmt.Sprintf("run_%d", start.Unix())
}

func (s *Store) SaveMetadata(meta RunMetadata) error {
	metaFile, err := os.Create(filepath.Join(s.baseDir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) LoadMetadata() (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}
