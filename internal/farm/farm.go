// Package farm runs tasks from one input stream on a fixed pool of
// workers. Each task is integrated start to finish by a single worker.
package farm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/sim"
	"github.com/san-kum/secular/internal/task"
)

// Range is an inclusive task-id filter.
type Range struct {
	Start, End int
}

// NewRange validates the bounds and orders them.
func NewRange(start, end int) (Range, error) {
	if start <= 0 || end <= 0 {
		return Range{}, errors.New("task id cannot be smaller than 1")
	}
	if start > end {
		start, end = end, start
	}
	return Range{Start: start, End: end}, nil
}

func (r Range) Contains(id int) bool { return r.Start <= id && id <= r.End }

// Len is the number of ids the range admits.
func (r Range) Len() int { return r.End - r.Start + 1 }

// Workers resolves a worker-count flag. "auto" picks min(tasks, GOMAXPROCS).
func Workers(spec string, tasks int) (int, error) {
	if spec == "auto" || spec == "" {
		return max(1, min(tasks, runtime.GOMAXPROCS(0))), nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("wrong format of worker count %q: want a positive integer or auto", spec)
	}
	return n, nil
}

// Cursor hands out lines of r one at a time to concurrent callers.
type Cursor struct {
	mu   sync.Mutex
	sc   *bufio.Scanner
	line int
	done bool
}

func NewCursor(r io.Reader) *Cursor {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)
	return &Cursor{sc: sc}
}

// Next returns the next line and its 1-based number. ok is false once
// the input is exhausted.
func (c *Cursor) Next() (text string, line int, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return "", c.line, false, nil
	}
	if !c.sc.Scan() {
		c.done = true
		return "", c.line, false, c.sc.Err()
	}
	c.line++
	return c.sc.Text(), c.line, true, nil
}

// Summary counts task outcomes over one run.
type Summary struct {
	Finished     int
	MaxIteration int
	Failed       int
	Skipped      int
	MaxDrifts    map[string]float64
}

func (s *Summary) add(o Outcome) {
	switch {
	case o.Status == sim.Finished:
		s.Finished++
	case o.Status == sim.MaxIterationAborted:
		s.MaxIteration++
	default:
		s.Failed++
	}
	if s.MaxDrifts == nil {
		s.MaxDrifts = make(map[string]float64)
	}
	for k, v := range o.Metrics {
		s.MaxDrifts[k] = max(s.MaxDrifts[k], v)
	}
}

// Counts flattens the summary for run metadata.
func (s Summary) Counts() map[string]int {
	return map[string]int{
		"finished":      s.Finished,
		"max_iteration": s.MaxIteration,
		"failed":        s.Failed,
		"skipped":       s.Skipped,
	}
}

// Farm reads tasks from a Cursor and runs those whose id is in Range.
type Farm struct {
	Workers int
	Range   Range
	Runner  TaskRunner
	Logger  *zap.Logger

	// OnOutcome, when set, is called from worker goroutines after every
	// task.
	OnOutcome func(Outcome)
}

// TaskRunner integrates one decoded task.
type TaskRunner interface {
	Run(ctx context.Context, t *task.Task) (Outcome, error)
}

// Run processes every line of r. Per-task numeric failures and
// max-iteration aborts are counted, not returned. The first I/O failure
// or context cancellation stops all workers.
func (f *Farm) Run(ctx context.Context, r io.Reader) (Summary, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := max(1, f.Workers)

	cursor := NewCursor(r)
	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				text, lineNo, ok, err := cursor.Next()
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				if !ok {
					return nil
				}

				id, _, err := task.Resolve(text)
				if err != nil || !f.Range.Contains(id) {
					continue
				}

				t, err := task.Decode(text)
				if err != nil {
					logger.Warn("skipping task", zap.Int("line", lineNo), zap.Int("task", id), zap.Error(err))
					mu.Lock()
					summary.Skipped++
					mu.Unlock()
					continue
				}

				out, err := f.Runner.Run(gctx, t)
				if err != nil {
					return err
				}

				mu.Lock()
				summary.add(out)
				mu.Unlock()

				if f.OnOutcome != nil {
					f.OnOutcome(out)
				}
			}
		})
	}

	err := g.Wait()
	return summary, err
}

// softFailure reports whether err ends only the task it came from.
func softFailure(err error) bool {
	return errors.Is(err, dynamo.ErrInvalidState) ||
		errors.Is(err, dynamo.ErrStepTooSmall) ||
		errors.Is(err, dynamo.ErrDimensionMismatch)
}
