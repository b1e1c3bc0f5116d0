package main

import (
	"context"
	"errors"
	"strings"
	"os"
	"path/filepath"
	"testing"

	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/report"
	"github.com/getsentry/callstat/internal/storageutil"
	"github.com/getsentry/callstat/internal/testutil"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	folded := filepath.Join(dir, "stacks.txt")
	err := os.WriteFile(folded, []byte("main (/app/main.py:1);foo (/app/a.py:10) 2\n"), 0o644)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trace := filepath.Join(dir, "trace.json")
	err = os.WriteFile(trace, []byte(`{
		"frames": [
			{"function": "main", "abs_path": "/app/main.py", "lineno": 1},
			{"function": "bar", "abs_path": "/app/a.py", "lineno": 20}
		],
		"stacks": [[1, 0]],
		"samples": [{"stack_id": 0, "thread_id": 1}]
	}`), 0o644)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports := t.TempDir()
	config := ServiceConfig{
		ReportsBucket: "file://" + reports,
		ReportFormat:  "json",
	}
	objectName, rows, err := run(context.Background(), config, []string{folded, trace})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 3 {
		t.Fatalf("expected 3 functions, got %d", rows)
	}

	bucket, err := storageutil.OpenBucket(context.Background(), config.ReportsBucket)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer bucket.Close()
	var got []report.FunctionStats
	if err := storageutil.UnmarshalCompressed(context.Background(), bucket, objectName, &got); err != nil {
		t.Fatalf("we should be able to read the report: %v", err)
	}
	want := []report.FunctionStats{
		{Path: "/app/main.py", Name: "main", Line: 1, InApp: true, Cumulative: 3},
		{Path: "/app/a.py", Name: "foo", Line: 10, InApp: true, Cumulative: 2, Self: 2},
		{Path: "/app/a.py", Name: "bar", Line: 20, InApp: true, Cumulative: 1, Self: 1},
	}
	for i := range want {
		want[i].Fingerprint = report.Fingerprint(want[i].Path, want[i].Name, want[i].Line)
	}
	if diff := testutil.Diff(got, want); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ServiceConfig
		inputs []string
	}{
		{
			name:   "unknown format",
			config: ServiceConfig{ReportsBucket: "mem://", ReportFormat: "csv"},
		},
		{
			name:   "missing input",
			config: ServiceConfig{ReportsBucket: "mem://", ReportFormat: "json"},
			inputs: []string{filepath.Join(t.TempDir(), "missing.txt")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(context.Background(), tt.config, tt.inputs); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SENTRY_ENVIRONMENT", "production")
	t.Setenv("CALLSTAT_CONFIG", "")
	t.Setenv("CALLSTAT_TOP_N", "5")

	config, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Environment != "production" || config.TopN != 5 || config.ReportFormat != "json" {
		t.Fatalf("unexpected config: %+v", config)
	}

	t.Setenv("SENTRY_ENVIRONMENT", "staging")
	if _, err := loadConfig(); err == nil {
		t.Fatal("expected an error for an unknown environment")
	}
}

func TestRecordInputStopsWhenCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	registry := callable.NewRegistry()
	tests := []struct {
		name  string
		input string
	}{
		{name: "stacks.txt", input: "main (/app/main.py:1) 1\n"},
		{name: "trace.json", input: `{"frames": [], "stacks": [], "samples": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := recordInput(ctx, registry, tt.name, strings.NewReader(tt.input))
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
		})
	}
	if registry.Len() != 0 {
		t.Fatalf("nothing should have been recorded, got %d callables", registry.Len())
	}
}

func TestRunCanceled(t *testing.T) {
	input := filepath.Join(t.TempDir(), "stacks.txt")
	if err := os.WriteFile(input, []byte("main (/app/main.py:1) 1\n"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := ServiceConfig{ReportsBucket: "mem://", ReportFormat: "json"}
	if _, _, err := run(ctx, config, []string{input}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
