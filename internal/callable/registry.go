package callable

import "sync"

type (
	// Row is the flattened view of one interned callable and its counters.
	Row struct {
		Path       string `json:"path"`
		Name       string `json:"name"`
		Line       int64  `json:"line"`
		Cumulative uint64 `json:"cumulative"`
		Self       uint64 `json:"self"`
	}

	// Registry interns callables and aggregates their sample counts for
	// one profiling session. It is not safe for concurrent use, see Locked.
	Registry struct {
		interner *Interner
		stats    statsTable
	}

	// Locked serializes access to a Registry shared by several samplers.
	Locked struct {
		mu sync.Mutex
		r  *Registry
	}
)

func NewRegistry() *Registry {
	return &Registry{
		interner: NewInterner(),
	}
}

// RecordSample attributes one observation of kind to c.
func (r *Registry) RecordSample(c Callable, kind SampleKind) {
	id := r.interner.Intern(c)
	r.stats.update(id, kind)
}

// RecordSampleN attributes n observations of kind to c at once. The callable
// is interned even when n is 0.
func (r *Registry) RecordSampleN(c Callable, kind SampleKind, n uint64) {
	id := r.interner.Intern(c)
	r.stats.add(id, kind, n)
}

// Export returns one row per interned callable with its current counts.
// Callers must not rely on the order of the rows.
func (r *Registry) Export() []Row {
	rows := make([]Row, 0, r.interner.Len())
	for i, c := range r.interner.callables {
		s := r.stats.stats[i]
		rows = append(rows, Row{
			Path:       c.Path,
			Name:       c.Name,
			Line:       c.Line,
			Cumulative: s.Cumulative,
			Self:       s.Self,
		})
	}
	return rows
}

// Len returns the number of distinct callables recorded.
func (r *Registry) Len() int {
	return r.interner.Len()
}

func (r *Registry) Lookup(id ID) (Callable, bool) {
	return r.interner.Lookup(id)
}

func (r *Registry) Stats(id ID) (Stats, bool) {
	return r.stats.get(id)
}

func NewLocked(r *Registry) *Locked {
	return &Locked{r: r}
}

func (l *Locked) RecordSample(c Callable, kind SampleKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.RecordSample(c, kind)
}

func (l *Locked) RecordSampleN(c Callable, kind SampleKind, n uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.RecordSampleN(c, kind, n)
}

func (l *Locked) Export() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Export()
}

func (l *Locked) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Len()
}
