package callable

// Interner maps callables to sequential ids starting at 1.
// It is not safe for concurrent use.
type Interner struct {
	ids       map[Callable]ID
	callables []Callable
}

func NewInterner() *Interner {
	return &Interner{
		ids: make(map[Callable]ID),
	}
}

// Intern returns the id of c, assigning the next one if c has not been seen.
func (in *Interner) Intern(c Callable) ID {
	if id, ok := in.ids[c]; ok {
		return id
	}
	in.callables = append(in.callables, c)
	id := ID(len(in.callables))
	in.ids[c] = id
	return id
}

// Lookup returns the callable interned as id.
func (in *Interner) Lookup(id ID) (Callable, bool) {
	if id == 0 || int(id) > len(in.callables) {
		return Callable{}, false
	}
	return in.callables[id-1], true
}

// Len returns the number of interned callables, which is also the last id assigned.
func (in *Interner) Len() int {
	return len(in.callables)
}
