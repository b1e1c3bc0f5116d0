package callable

type Stats struct {
	Cumulative uint64 `json:"cumulative"`
	Self       uint64 `json:"self"`
}

// statsTable holds one Stats per id, stored at index id-1.
type statsTable struct {
	stats []Stats
}

func (t *statsTable) touch(id ID) *Stats {
	for int(id) > len(t.stats) {
		t.stats = append(t.stats, Stats{})
	}
	return &t.stats[id-1]
}

func (t *statsTable) update(id ID, kind SampleKind) {
	t.add(id, kind, 1)
}

// add increments the counter matching kind by n.
func (t *statsTable) add(id ID, kind SampleKind, n uint64) {
	s := t.touch(id)
	switch kind {
	case SelfSample:
		s.Self += n
	case CumulativeSample:
		s.Cumulative += n
	}
}

func (t *statsTable) get(id ID) (Stats, bool) {
	if id == 0 || int(id) > len(t.stats) {
		return Stats{}, false
	}
	return t.stats[id-1], true
}

func (t *statsTable) len() int {
	return len(t.stats)
}
