package sample

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/getsentry/callstat/internal/frame"
)

const maxFoldedLineSize = 4 * 1024 * 1024

// ParseFolded reads stacks in the collapsed format, one per line:
//
//	main (/app.py:1);handle (/app.py:12);parse (/json.py:40) 17
//
// A line without a trailing count is a single observation.
func ParseFolded(r io.Reader, cb func(s Stack, weight uint64) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, bufio.MaxScanTokenSize), maxFoldedLineSize)
	var lineNumber int
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		stack, weight, err := parseFoldedLine(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if err := cb(stack, weight); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseFoldedLine(line string) (Stack, uint64, error) {
	weight := uint64(1)
	trace := line
	if i := strings.LastIndexByte(line, ' '); i != -1 {
		count := line[i+1:]
		if looksLikeCount(count) {
			w, err := strconv.ParseUint(count, 10, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("invalid sample count %q: %w", count, err)
			}
			weight = w
			trace = strings.TrimSpace(line[:i])
		}
	}

	parts := strings.Split(trace, ";")
	stack := make(Stack, 0, len(parts))
	for _, p := range parts {
		f, err := frame.Parse(p)
		if err != nil {
			return nil, 0, err
		}
		stack = append(stack, f)
	}
	return stack, weight, nil
}

// looksLikeCount reports whether the last field of a line is meant as a
// sample count rather than the tail of a frame.
func looksLikeCount(s string) bool {
	return s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9'))
}
