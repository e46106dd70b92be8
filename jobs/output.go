package jobs

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/gazebo-tooling/gz-dashboard/errors"
)

var (
	header  = color.New(color.Bold)
	failed  = color.New(color.FgRed)
	summary = color.New(color.FgRed, color.Bold)
)

// Output writes the result of each job to w, followed by a summary line when
// any job failed.
func Output(w io.Writer, results []Result) {
	for _, r := range results {
		header.Fprintf(w, "=== %s (%s) ===\n", r.Job, r.Job.Type())
		out := strings.TrimRight(r.Output, "\n")
		if out != "" {
			fmt.Fprintln(w, out)
		}
		if r.Failed() && r.Err != nil {
			msg := errors.Report(r.Err)
			if r.Attempts > 1 {
				msg = fmt.Sprintf("%s (after %d attempts)", msg, r.Attempts)
			}
			failed.Fprintln(w, msg)
		}
	}

	if n := Failed(results); n > 0 {
		summary.Fprintf(w, "%d of %d repositories failed\n", n, len(results))
	}
}
