package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/san-kum/secular/internal/dynamo"
)

const (
	LastStateFile = "last_state.txt"
	LogFile       = "log.txt"
	MetadataFile  = "run.json"
)

// Store is one run's output directory.
type Store struct {
	baseDir   string
	precision int
}

func New(baseDir string, precision int) *Store {
	if precision <= 0 {
		precision = 12
	}
	return &Store{baseDir: baseDir, precision: precision}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// TrajectoryPath is where task id's sampled rows go.
func (s *Store) TrajectoryPath(id int) string {
	return filepath.Join(s.baseDir, "output_"+strconv.Itoa(id)+".txt")
}

// OpenShared creates the last-state and log sinks shared by all workers.
func (s *Store) OpenShared() (lastState, log *Sink, err error) {
	lastState, err = OpenSink(filepath.Join(s.baseDir, LastStateFile))
	if err != nil {
		return nil, nil, err
	}
	log, err = OpenSink(filepath.Join(s.baseDir, LogFile))
	if err != nil {
		lastState.Close()
		return nil, nil, err
	}
	return lastState, log, nil
}

// FormatRecord renders "id t x0 x1 …" with the store's precision.
func (s *Store) FormatRecord(id int, t float64, x dynamo.State) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(id))
	b.WriteByte(' ')
	appendRow(&b, t, x, s.precision)
	return b.String()
}

func appendRow(b *strings.Builder, t float64, x dynamo.State, precision int) {
	b.WriteString(strconv.FormatFloat(t, 'g', precision, 64))
	for _, v := range x {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'g', precision, 64))
	}
}

// Sink is an append-only text file safe for concurrent writers. Each
// WriteLine lands as one contiguous line.
type Sink struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

func OpenSink(path string) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{file: f, w: bufio.NewWriter(f)}, nil
}

func (s *Sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.WriteString(line); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// Trajectory is one task's sampled output file. It is owned by a single
// worker.
type Trajectory struct {
	file      *os.File
	w         *bufio.Writer
	precision int
	buf       strings.Builder
}

func (s *Store) CreateTrajectory(id int) (*Trajectory, error) {
	f, err := os.Create(s.TrajectoryPath(id))
	if err != nil {
		return nil, err
	}
	return &Trajectory{file: f, w: bufio.NewWriter(f), precision: s.precision}, nil
}

func (tr *Trajectory) WriteRow(t float64, x dynamo.State) error {
	tr.buf.Reset()
	appendRow(&tr.buf, t, x, tr.precision)
	tr.buf.WriteByte('\n')
	_, err := tr.w.WriteString(tr.buf.String())
	return err
}

func (tr *Trajectory) Close() error {
	if err := tr.w.Flush(); err != nil {
		tr.file.Close()
		return err
	}
	return tr.file.Close()
}

// RunMetadata summarises one invocation of the integrator.
type RunMetadata struct {
	Input     string             `json:"input"`
	StartID   int                `json:"start_id"`
	EndID     int                `json:"end_id"`
	Workers   int                `json:"workers"`
	Stepper   string             `json:"stepper"`
	AbsTol    float64            `json:"abs_tol"`
	RelTol    float64            `json:"rel_tol"`
	StopAIn   float64            `json:"stop_a_in"`
	GROuter   bool               `json:"gr_outer"`
	Started   time.Time          `json:"started"`
	Elapsed   float64            `json:"elapsed_seconds"`
	Counts    map[string]int     `json:"counts"`
	MaxDrifts map[string]float64 `json:"max_drifts,omitempty"`
}

func (s *Store) SaveMetadata(meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(s.baseDir, MetadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) LoadMetadata() (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
