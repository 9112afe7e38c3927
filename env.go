// env.go: the lexical environment chain (spec §3, §4.4). Each frame is a
// flat name-to-value table with a strong reference to its parent; closures
// extend a chain's lifetime by holding their own reference to it.
package ember

// Env is one frame of the environment chain.
type Env struct {
	parent *Env
	table  map[string]Value
	rc     *rc
}

// NewEnv creates a fresh frame parented to parent (nil for the global frame).
func NewEnv(parent *Env) *Env {
	if parent != nil {
		parent.acquire()
	}
	return &Env{parent: parent, table: make(map[string]Value), rc: newRC()}
}

func (e *Env) acquire() {
	if e == nil {
		return
	}
	e.rc.n++
}

func (e *Env) release() {
	if e == nil {
		return
	}
	e.rc.n--
	if e.rc.n > 0 {
		return
	}
	for _, v := range e.table {
		Release(v)
	}
	e.parent.release()
}

// Get scans the chain innermost-first; ok is false on a total miss (spec
// says a plain Get returns null, Identifier evaluation is what raises the
// "undefined variable" error on a miss — see eval.go).
func (e *Env) Get(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.table[name]; ok {
			return v, true
		}
	}
	return Null(), false
}

// GetLocal looks up name only in this frame, not the parent chain — used
// for method resolution on a pattern's own environment (spec §4.3 bases).
func (e *Env) GetLocal(name string) (Value, bool) {
	v, ok := e.table[name]
	return v, ok
}

// Def binds name in the current frame, replacing (and releasing) any prior
// value under that name (spec §4.4).
func (e *Env) Def(name string, v Value) {
	if old, ok := e.table[name]; ok {
		Release(old)
	}
	e.table[name] = v
}

// Set replaces name in the nearest frame that already binds it; if no frame
// does, it behaves like Def on the current frame (spec §4.4).
func (e *Env) Set(name string, v Value) {
	for f := e; f != nil; f = f.parent {
		if old, ok := f.table[name]; ok {
			Release(old)
			f.table[name] = v
			return
		}
	}
	e.Def(name, v)
}
