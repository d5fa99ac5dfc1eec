package storage

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadTrajectory reads a trajectory file back into times and state rows.
// Blank lines are skipped; any unparsable value is an error.
func LoadTrajectory(path string) (times []float64, states [][]float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		row := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: %w", path, line, err)
			}
			row[i] = v
		}
		times = append(times, row[0])
		states = append(states, row[1:])
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return times, states, nil
}
