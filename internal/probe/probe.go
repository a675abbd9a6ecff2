// Package probe checks which sequences exist under an asset base.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ingyamilmolinar/seqplayer/core/loader"
)

var ErrMissing = errors.New("sequences missing")

// Checker is satisfied by both asset fetchers.
type Checker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

type Result struct {
	Style, Word string
	Variant     int
	Path        string
	Present     bool
	Err         error
}

// Run checks frame 01 of every combination, at most parallel at a time.
// Results keep catalog order.
func Run(ctx context.Context, ck Checker, paths loader.PathTemplate, styles, words []string, variants, parallel int) []Result {
	var results []Result
	for _, s := range styles {
		for _, w := range words {
			for v := 1; v <= variants; v++ {
				results = append(results, Result{Style: s, Word: w, Variant: v, Path: paths.Path(s, w, v, 1)})
			}
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i := range results {
		g.Go(func() error {
			results[i].Present, results[i].Err = ck.Exists(ctx, results[i].Path)
			return nil
		})
	}
	g.Wait()
	return results
}

// Report prints one line per result and a summary. It fails with
// ErrMissing unless everything is present.
func Report(out io.Writer, results []Result) error {
	present := 0
	for _, r := range results {
		status := "missing"
		switch {
		case r.Err != nil:
			status = "error"
		case r.Present:
			status = "ok"
			present++
		}
		fmt.Fprintf(out, "%-8s %s/%s/v%d  %s", status, r.Style, r.Word, r.Variant, r.Path)
		if r.Err != nil {
			fmt.Fprintf(out, "  (%v)", r.Err)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d of %d sequences present\n", present, len(results))
	if present < len(results) {
		return fmt.Errorf("%d %w", len(results)-present, ErrMissing)
	}
	return nil
}
