package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/secular/internal/dynamo"
	"github.com/san-kum/secular/internal/orbit"
	"github.com/san-kum/secular/internal/storage"
	"github.com/san-kum/secular/internal/task"
)

func newPlotCmd() *cobra.Command {
	var (
		columns []string
		input   string
		id      int
		height  int
		width   int
	)
	cmd := &cobra.Command{
		Use:   "plot [trajectory]",
		Short: "plot trajectory columns",
		Long: `Plots columns of a trajectory file against time. A column is either a
state index (0, 1, …) or one of the derived quantities:

  e1     inner eccentricity |e1|
  a1     inner semi-major axis in AU (needs --input and --id)
  i_mut  mutual inclination in degrees (needs --input and --id)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			times, states, err := storage.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			if len(states) == 0 {
				return fmt.Errorf("no data to plot")
			}

			var t *task.Task
			if input != "" {
				t, err = findTask(input, id)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "samples: %d  t: [%g, %g]\n\n", len(times), times[0], times[len(times)-1])
			for _, col := range columns {
				data, err := series(states, col, t)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, asciigraph.Plot(data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(col+" vs time"),
				))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&columns, "column", "c", []string{"e1"}, "columns to plot")
	cmd.Flags().StringVarP(&input, "input", "i", "", "task file the trajectory came from")
	cmd.Flags().IntVar(&id, "id", 0, "task id inside --input")
	cmd.Flags().IntVar(&height, "height", 10, "graph height")
	cmd.Flags().IntVar(&width, "width", 80, "graph width")
	return cmd
}

// findTask returns the first line of path whose id is id.
func findTask(path string, id int) (*task.Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanTask(f, id)
}

func scanTask(r io.Reader, id int) (*task.Task, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		got, _, err := task.Resolve(sc.Text())
		if err != nil || got != id {
			continue
		}
		return task.Decode(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("task %d not found", id)
}

// series extracts one plottable value per trajectory row.
func series(states [][]float64, column string, t *task.Task) ([]float64, error) {
	var fn func(x dynamo.State) float64

	switch column {
	case "e1":
		fn = func(x dynamo.State) float64 { return r3.Norm(x.Vec(dynamo.E1)) }

	case "a1":
		if t == nil {
			return nil, fmt.Errorf("column a1 needs --input and --id")
		}
		fn = t.Constants().InnerA

	case "i_mut":
		if t == nil {
			return nil, fmt.Errorf("column i_mut needs --input and --id")
		}
		avg := t.Layout.Averaging
		fn = func(x dynamo.State) float64 {
			outer := x.Vec(dynamo.L2)
			if avg == dynamo.Single {
				outer = r3.Cross(x.Vec(dynamo.R), x.Vec(dynamo.V))
			}
			cos := r3.Dot(r3.Unit(x.Vec(dynamo.L1)), r3.Unit(outer))
			return orbit.Rad2deg(math.Acos(max(-1, min(1, cos))))
		}

	default:
		idx, err := strconv.Atoi(strings.TrimPrefix(column, "x"))
		if err != nil {
			return nil, fmt.Errorf("unknown column %q", column)
		}
		fn = func(x dynamo.State) float64 { return x[idx] }
		for _, row := range states {
			if idx < 0 || idx >= len(row) {
				return nil, fmt.Errorf("column %d out of range for %d-wide rows", idx, len(row))
			}
		}
	}

	data := make([]float64, len(states))
	for i, row := range states {
		if len(row) < int(dynamo.S1) {
			return nil, fmt.Errorf("row %d has %d values, want at least %d", i, len(row), int(dynamo.S1))
		}
		data[i] = fn(dynamo.State(row))
	}
	return data, nil
}
