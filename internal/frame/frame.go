package frame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getsentry/callstat/internal/callable"
)

// ErrInvalidFrame is returned when a frame can't be parsed from its text form.
var ErrInvalidFrame = errors.New("invalid frame")

type (
	Frame struct {
		Function string `json:"function,omitempty"`
		Line     int64  `json:"lineno,omitempty"`
		Module   string `json:"module,omitempty"`
		Path     string `json:"abs_path,omitempty"`
	}
)

// Callable returns the identity samples of this frame are attributed to.
func (f Frame) Callable() callable.Callable {
	return callable.Callable{
		Path: f.Path,
		Name: f.Function,
		Line: f.Line,
	}
}

// String renders the frame the way Parse reads it back.
func (f Frame) String() string {
	if f.Path == "" && f.Line == 0 {
		return f.Function
	}
	return fmt.Sprintf("%s (%s:%d)", f.Function, f.Path, f.Line)
}

// Parse reads a frame written as "function (path:line)". The location is
// the parenthesised group closing the frame, so paths may hold balanced
// parentheses. A frame whose last group has no ':' only carries a function
// name, which makes "process (deprecated)" a name. A function name ending in
// a group like "(a:1)" can't be told apart from a location.
func Parse(s string) (Frame, error) {
	s = strings.TrimSpace(s)
	i := locationStart(s)
	if i == -1 {
		return Frame{Function: s}, nil
	}
	location := s[i+2 : len(s)-1]
	j := strings.LastIndexByte(location, ':')
	if j == -1 {
		return Frame{Function: s}, nil
	}
	line, err := strconv.ParseInt(location[j+1:], 10, 64)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %q: %v", ErrInvalidFrame, s, err)
	}
	return Frame{
		Function: s[:i],
		Line:     line,
		Path:     location[:j],
	}, nil
}

// locationStart returns the index of the " (" opening the group that ends s,
// or -1 when s doesn't end with a balanced group.
func locationStart(s string) int {
	if !strings.HasSuffix(s, ")") {
		return -1
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				if i > 0 && s[i-1] == ' ' {
					return i - 1
				}
				return -1
			}
		}
	}
	return -1
}

func (f Frame) IsPythonApplicationFrame() bool {
	if strings.Contains(f.Path, "/site-packages/") ||
		strings.Contains(f.Path, "/dist-packages/") ||
		strings.Contains(f.Path, "\\site-packages\\") ||
		strings.Contains(f.Path, "\\dist-packages\\") {
		return false
	}

	if f.Module == "" {
		return !isPythonStdlibPath(f.Path)
	}
	module := strings.SplitN(f.Module, ".", 2)
	_, ok := pythonStdlib[module[0]]
	return !ok
}

// isPythonStdlibPath matches files installed under lib/pythonX.Y.
func isPythonStdlibPath(p string) bool {
	p = strings.ReplaceAll(p, "\\", "/")
	i := strings.Index(p, "/lib/python")
	if i == -1 {
		return false
	}
	rest := p[i+len("/lib/python"):]
	return len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9'
}

var pythonStdlib = map[string]struct{}{
	"abc":             {},
	"argparse":        {},
	"asyncio":         {},
	"collections":     {},
	"concurrent":      {},
	"contextlib":      {},
	"copy":            {},
	"dataclasses":     {},
	"datetime":        {},
	"email":           {},
	"encodings":       {},
	"enum":            {},
	"functools":       {},
	"http":            {},
	"importlib":       {},
	"inspect":         {},
	"io":              {},
	"itertools":       {},
	"json":            {},
	"logging":         {},
	"multiprocessing": {},
	"os":              {},
	"pathlib":         {},
	"queue":           {},
	"re":              {},
	"selectors":       {},
	"socket":          {},
	"socketserver":    {},
	"ssl":             {},
	"subprocess":      {},
	"sys":             {},
	"threading":       {},
	"typing":          {},
	"unittest":        {},
	"urllib":          {},
	"uuid":            {},
	"weakref":         {},
	"xml":             {},
	"zipfile":         {},
}
