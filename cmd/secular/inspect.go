package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/secular/internal/secular"
	"github.com/san-kum/secular/internal/task"
)

func newInspectCmd() *cobra.Command {
	var grOuter bool
	cmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "decode a task file without integrating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return inspect(cmd.OutOrStdout(), f, secular.Options{GROuter: grOuter})
		},
	}
	cmd.Flags().BoolVar(&grOuter, "gr-outer", false, "render titles as with outer-orbit GR enabled")
	return cmd
}

func inspect(out io.Writer, r io.Reader, opts secular.Options) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tID\tMODE\tSPINS\tT_END\tTITLE")

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		t, err := task.Decode(text)
		if err != nil {
			fmt.Fprintf(w, "%d\t-\t-\t-\t-\t%v\n", line, err)
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%g\t%s\n", line, t.ID, t.Layout.Averaging, t.Layout.Spins, t.EndTime, t.Title(opts))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return w.Flush()
}
