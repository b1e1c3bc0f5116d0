package sample

import (
	"errors"
	"strings"
	"testing"

	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/testutil"
)

func TestParseFolded(t *testing.T) {
	type parsed struct {
		Stack  Stack
		Weight uint64
	}
	tests := []struct {
		name  string
		input string
		want  []parsed
	}{
		{
			name:  "empty input",
			input: "",
		},
		{
			name:  "counts and blank lines",
			input: "main (/app.py:1);foo (/a.py:10) 3\n\nmain (/app.py:1);foo (/a.py:10);bar (/a.py:20) 2\n",
			want: []parsed{
				{Stack: Stack{mainFrame, fooFrame}, Weight: 3},
				{Stack: Stack{mainFrame, fooFrame, barFrame}, Weight: 2},
			},
		},
		{
			name:  "missing count",
			input: "main (/app.py:1);foo (/a.py:10)",
			want: []parsed{
				{Stack: Stack{mainFrame, fooFrame}, Weight: 1},
			},
		},
		{
			name:  "frames without location",
			input: "<module>;threading.run 5\n<lambda> at",
			want: []parsed{
				{Stack: Stack{{Function: "<module>"}, {Function: "threading.run"}}, Weight: 5},
				{Stack: Stack{{Function: "<lambda> at"}}, Weight: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []parsed
			err := ParseFolded(strings.NewReader(tt.input), func(s Stack, weight uint64) error {
				got = append(got, parsed{Stack: s, Weight: weight})
				return nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := testutil.Diff(got, tt.want); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}

func TestParseFoldedErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "negative count",
			input: "main (/app.py:1) -2",
			want:  "line 1: invalid sample count",
		},
		{
			name:  "bad frame",
			input: "main (/app.py:1) 1\nmain (/app.py:x) 1",
			want:  "line 2: invalid frame",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseFolded(strings.NewReader(tt.input), func(Stack, uint64) error { return nil })
			if err == nil || !strings.HasPrefix(err.Error(), tt.want) {
				t.Fatalf("expected error starting with %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParseFoldedStopsOnCallbackError(t *testing.T) {
	errStop := errors.New("stop")
	var calls int
	err := ParseFolded(strings.NewReader("a 1\nb 1\n"), func(Stack, uint64) error {
		calls++
		return errStop
	})
	if !errors.Is(err, errStop) || calls != 1 {
		t.Fatalf("expected to stop after the first stack, got %v after %d calls", err, calls)
	}
}

func TestParseFoldedIntoRegistry(t *testing.T) {
	input := strings.Join([]string{
		"main (/app.py:1);foo (/a.py:10) 2",
		"main (/app.py:1);foo (/a.py:10);bar (/a.py:20) 1",
		"main (/app.py:1) 1",
	}, "\n")
	r := callable.NewRegistry()
	err := ParseFolded(strings.NewReader(input), func(s Stack, weight uint64) error {
		Record(r, s, weight)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []callable.Row{
		row(mainRow, 4, 1),
		row(fooRow, 3, 2),
		row(barRow, 1, 1),
	}
	if diff := testutil.Diff(r.Export(), want, testutil.UnorderedRows); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestParseFoldedLargeCount(t *testing.T) {
	r := callable.NewRegistry()
	err := ParseFolded(strings.NewReader("main (/app.py:1);foo (/a.py:10) 5000000000\n"), func(s Stack, weight uint64) error {
		Record(r, s, weight)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []callable.Row{
		row(mainRow, 5_000_000_000, 0),
		row(fooRow, 5_000_000_000, 5_000_000_000),
	}
	if diff := testutil.Diff(r.Export(), want, testutil.UnorderedRows); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}
