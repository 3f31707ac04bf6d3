package trie

// DefaultDatabase is the name every new session is pinned to.
const DefaultDatabase = "db0"

// Registry is the name -> database map. Every client session is pinned
// to exactly one database from a Registry.
type Registry struct {
	dbs map[string]*Database
}

// NewRegistry builds a registry pre-seeded with DefaultDatabase.
func NewRegistry(now int64) *Registry {
	r := &Registry{dbs: make(map[string]*Database)}
	r.dbs[DefaultDatabase] = New(DefaultDatabase, now)
	return r
}

// GetOrCreate returns the named database, creating it if it doesn't
// exist yet (backing the USE opcode's "selects or creates" contract).
func (r *Registry) GetOrCreate(name string, now int64) *Database {
	if db, ok := r.dbs[name]; ok {
		return db
	}
	db := New(name, now)
	r.dbs[name] = db
	return db
}

// Get returns the named database and whether it exists.
func (r *Registry) Get(name string) (*Database, bool) {
	db, ok := r.dbs[name]
	return db, ok
}

// Len returns the number of databases in the registry.
func (r *Registry) Len() int { return len(r.dbs) }

// TotalSize sums Size() across every database in the registry.
func (r *Registry) TotalSize() int {
	var n int
	for _, db := range r.dbs {
		n += db.Size()
	}
	return n
}

// Each iterates every database in the registry. Order is unspecified
// (map iteration), matching the registry's set, not sequence, semantics.
func (r *Registry) Each(fn func(*Database)) {
	for _, db := range r.dbs {
		fn(db)
	}
}
