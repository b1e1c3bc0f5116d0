package callable

type (
	// Callable identifies a source-level call site samples are attributed to.
	Callable struct {
		Path string `json:"path"`
		Name string `json:"name"`
		Line int64  `json:"line"`
	}

	// ID is the interned identity of a Callable. Valid ids start at 1.
	ID uint64

	SampleKind uint8
)

const (
	// SelfSample means the callable was the actively executing frame.
	SelfSample SampleKind = iota
	// CumulativeSample means the callable was somewhere on the active stack.
	CumulativeSample
)

func (k SampleKind) String() string {
	switch k {
	case SelfSample:
		return "self"
	case CumulativeSample:
		return "cumulative"
	}
	return "unknown"
}
