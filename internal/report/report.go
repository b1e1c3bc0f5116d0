package report

import (
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/frame"
)

type (
	FunctionStats struct {
		Fingerprint uint64 `json:"fingerprint"`
		Path        string `json:"path"`
		Name        string `json:"name"`
		Line        int64  `json:"line"`
		InApp       bool   `json:"in_app"`
		Cumulative  uint64 `json:"cumulative"`
		Self        uint64 `json:"self"`
	}

	Options struct {
		// TopN keeps only the first N functions once sorted, 0 keeps everything.
		TopN      int
		InAppOnly bool
	}
)

// Fingerprint hashes the identity of a row so reports from different
// sessions can be joined on it.
func Fingerprint(path, name string, line int64) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = h.WriteString(":")
	_, _ = h.WriteString(name)
	_, _ = h.WriteString(":")
	_, _ = h.WriteString(strconv.FormatInt(line, 10))
	return h.Sum64()
}

// Build turns exported rows into function stats ordered by cumulative then
// self samples, heaviest first.
func Build(rows []callable.Row, opts Options) []FunctionStats {
	functions := make([]FunctionStats, 0, len(rows))
	for _, r := range rows {
		f := frame.Frame{Function: r.Name, Path: r.Path, Line: r.Line}
		inApp := f.IsPythonApplicationFrame()
		if opts.InAppOnly && !inApp {
			continue
		}
		functions = append(functions, FunctionStats{
			Fingerprint: Fingerprint(r.Path, r.Name, r.Line),
			Path:        r.Path,
			Name:        r.Name,
			Line:        r.Line,
			InApp:       inApp,
			Cumulative:  r.Cumulative,
			Self:        r.Self,
		})
	}
	sort.Slice(functions, func(i, j int) bool {
		a, b := functions[i], functions[j]
		if a.Cumulative != b.Cumulative {
			return a.Cumulative > b.Cumulative
		}
		if a.Self != b.Self {
			return a.Self > b.Self
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Line < b.Line
	})
	if opts.TopN > 0 && len(functions) > opts.TopN {
		functions = functions[:opts.TopN]
	}
	return functions
}

// Select returns the rows Build keeps for opts, in the same order.
func Select(rows []callable.Row, opts Options) []callable.Row {
	functions := Build(rows, opts)
	selected := make([]callable.Row, 0, len(functions))
	for _, f := range functions {
		selected = append(selected, callable.Row{
			Path:       f.Path,
			Name:       f.Name,
			Line:       f.Line,
			Cumulative: f.Cumulative,
			Self:       f.Self,
		})
	}
	return selected
}
