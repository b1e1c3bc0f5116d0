package report

import (
	"context"
	"fmt"
	"time"

	"gocloud.dev/blob"

	"github.com/getsentry/callstat/internal/callable"
	"github.com/getsentry/callstat/internal/storageutil"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatPprof Format = "pprof"
)

func (f Format) Extension() string {
	switch f {
	case FormatPprof:
		return "pb.gz"
	default:
		return "json.lz4"
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatPprof:
		return f, nil
	}
	return "", fmt.Errorf("report format <%s> not supported", s)
}

// Write stores the rows in the bucket under objectName. Both formats keep the
// functions selected by opts.
func Write(ctx context.Context, b *blob.Bucket, objectName string, format Format, rows []callable.Row, opts Options) error {
	switch format {
	case FormatJSON:
		return storageutil.CompressedWrite(ctx, b, objectName, Build(rows, opts))
	case FormatPprof:
		prof, err := ToPprof(Select(rows, opts), time.Now())
		if err != nil {
			return err
		}
		w, err := b.NewWriter(ctx, objectName, &blob.WriterOptions{ContentType: "application/octet-stream"})
		if err != nil {
			return err
		}
		if err := prof.Write(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}
	return fmt.Errorf("report format <%s> not supported", format)
}
