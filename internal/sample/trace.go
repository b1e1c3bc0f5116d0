package sample

import (
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/getsentry/callstat/internal/frame"
)

type (
	Sample struct {
		ElapsedSinceStartNS uint64 `json:"elapsed_since_start_ns"`
		StackID             int    `json:"stack_id"`
		ThreadID            uint64 `json:"thread_id"`
	}

	// Trace is a sampled profile where stacks reference frames by index,
	// leaf first, and samples reference stacks by index.
	Trace struct {
		Frames  []frame.Frame `json:"frames"`
		Samples []Sample      `json:"samples"`
		Stacks  [][]int       `json:"stacks"`
	}
)

func ParseTrace(r io.Reader) (Trace, error) {
	var t Trace
	if err := gojson.NewDecoder(r).Decode(&t); err != nil {
		return Trace{}, err
	}
	if err := t.validate(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

func (t Trace) validate() error {
	for i, s := range t.Stacks {
		for _, frameID := range s {
			if frameID < 0 || frameID >= len(t.Frames) {
				return fmt.Errorf("stack %d references unknown frame %d", i, frameID)
			}
		}
	}
	for i, s := range t.Samples {
		if s.StackID < 0 || s.StackID >= len(t.Stacks) {
			return fmt.Errorf("sample %d references unknown stack %d", i, s.StackID)
		}
	}
	return nil
}

// CollectFrames returns the frames of a stack, root first.
func (t Trace) CollectFrames(stackID int) Stack {
	stack := t.Stacks[stackID]
	frames := make(Stack, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		frames = append(frames, t.Frames[stack[i]])
	}
	return frames
}

// Record attributes every sample of the trace to r. Idle samples, with an
// empty stack, are skipped.
func (t Trace) Record(r Recorder) {
	stacks := make(map[int]Stack)
	for _, s := range t.Samples {
		stack, ok := stacks[s.StackID]
		if !ok {
			stack = t.CollectFrames(s.StackID)
			stacks[s.StackID] = stack
		}
		Record(r, stack, 1)
	}
}
