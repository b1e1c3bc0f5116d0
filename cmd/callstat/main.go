package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/logutil"
	"github.com/getsentry/callstat/internal/report"
	"github.com/getsentry/callstat/internal/sample"
	"github.com/getsentry/callstat/internal/storageutil"
)

var release string

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	if err := logutil.ConfigureLogger(config.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("error configuring logger")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         config.SentryDSN,
		Environment: config.Environment,
		Release:     release,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}
	defer sentry.Flush(5 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	objectName, rows, err := run(ctx, config, os.Args[1:])
	if err != nil {
		sentry.CaptureException(err)
		sentry.Flush(5 * time.Second)
		log.Fatal().Err(err).Msg("error aggregating samples")
	}
	log.Info().
		Str("bucket", config.ReportsBucket).
		Str("object", objectName).
		Int("functions", rows).
		Msg("report written")
}

// run aggregates every input into one registry and writes the report.
// Without inputs, samples are read from stdin in the folded format.
func run(ctx context.Context, config ServiceConfig, inputs []string) (string, int, error) {
	format, err := report.ParseFormat(config.ReportFormat)
	if err != nil {
		return "", 0, err
	}

	registry := callable.NewLocked(callable.NewRegistry())
	if len(inputs) == 0 {
		if err := recordInput(ctx, registry, "-", os.Stdin); err != nil {
			return "", 0, err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, input := range inputs {
			input := input
			g.Go(func() error {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				return recordInput(gctx, registry, input, f)
			})
		}
		if err := g.Wait(); err != nil {
			return "", 0, err
		}
	}

	bucket, err := storageutil.OpenBucket(ctx, config.ReportsBucket)
	if err != nil {
		return "", 0, fmt.Errorf("opening bucket %s: %w", config.ReportsBucket, err)
	}
	defer bucket.Close()

	rows := registry.Export()
	objectName := fmt.Sprintf("%s.%s", uuid.New().String(), format.Extension())
	opts := report.Options{TopN: config.TopN, InAppOnly: config.InAppOnly}
	if err := report.Write(ctx, bucket, objectName, format, rows, opts); err != nil {
		return "", 0, fmt.Errorf("writing report: %w", err)
	}
	return objectName, len(rows), nil
}

// recordInput reads a trace when the input is a .json file and folded
// stacks otherwise. It stops between stacks once ctx is done.
func recordInput(ctx context.Context, r sample.Recorder, name string, in io.Reader) error {
	var stacks int
	if filepath.Ext(name) == ".json" {
		trace, err := sample.ParseTrace(in)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		trace.Record(r)
		stacks = len(trace.Samples)
	} else {
		err := sample.ParseFolded(in, func(s sample.Stack, weight uint64) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample.Record(r, s, weight)
			stacks++
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	log.Debug().Str("input", name).Int("stacks", stacks).Msg("input recorded")
	return nil
}
