package sample

import (
	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/frame"
)

type (
	// Stack is an observed call stack, root first and leaf last.
	Stack []frame.Frame

	// Recorder accumulates samples, usually a *callable.Registry.
	Recorder interface {
		RecordSampleN(c callable.Callable, kind callable.SampleKind, n uint64)
	}
)

// Leaf returns the actively executing frame.
func (s Stack) Leaf() (frame.Frame, bool) {
	if len(s) == 0 {
		return frame.Frame{}, false
	}
	return s[len(s)-1], true
}

// Record attributes weight observations of s to r. The leaf gets weight self
// samples and every distinct callable on the stack gets weight cumulative
// samples, so recursive frames are only counted once per observation.
func Record(r Recorder, s Stack, weight uint64) {
	leaf, ok := s.Leaf()
	if !ok || weight == 0 {
		return
	}
	seen := make(map[callable.Callable]struct{}, len(s))
	for _, f := range s {
		c := f.Callable()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		r.RecordSampleN(c, callable.CumulativeSample, weight)
	}
	r.RecordSampleN(leaf.Callable(), callable.SelfSample, weight)
}
