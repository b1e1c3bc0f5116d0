package report

import (
	"time"

	"github.com/google/pprof/profile"

	"github.com/getsentry/callstat/internal/callable"
)

// ToPprof builds a profile with one single-location sample per callable.
// Sample values are [self, cumulative], so cumulative counts are read with
// -sample_index=cumulative rather than derived from stacks.
func ToPprof(rows []callable.Row, captureTime time.Time) (*profile.Profile, error) {
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "samples", Unit: "count"},
			{Type: "cumulative", Unit: "count"},
		},
		DefaultSampleType: "samples",
		TimeNanos:         captureTime.UnixNano(),
	}

	functions := make(map[functionKey]*profile.Function)
	for _, r := range rows {
		key := functionKey{path: r.Path, name: r.Name}
		fn, ok := functions[key]
		if !ok {
			fn = &profile.Function{
				ID:         uint64(len(prof.Function)) + 1,
				Name:       r.Name,
				SystemName: r.Name,
				Filename:   r.Path,
			}
			functions[key] = fn
			prof.Function = append(prof.Function, fn)
		}
		loc := &profile.Location{
			ID:   uint64(len(prof.Location)) + 1,
			Line: []profile.Line{{Function: fn, Line: r.Line}},
		}
		prof.Location = append(prof.Location, loc)
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(r.Self), int64(r.Cumulative)},
		})
	}

	if err := prof.CheckValid(); err != nil {
		return nil, err
	}
	return prof, nil
}

type functionKey struct {
	path string
	name string
}
