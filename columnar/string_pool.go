package columnar

// StringID identifies an interned string in a StringPool. The zero id is
// reserved as the null sentinel: it never refers to stored bytes.
type StringID uint32

// NullStringID is the id stored for rows without a string value.
const NullStringID StringID = 0

// StringPool de-duplicates the strings referenced by string columns. Ids
// are dense and stable for the lifetime of the pool; columns store ids and
// read the backing string through Get.
type StringPool struct {
	strings []string
	index   map[string]StringID
}

// NewStringPool creates an empty pool with the null id pre-reserved.
func NewStringPool() *StringPool {
	return &StringPool{
		strings: []string{""}, // slot 0 backs NullStringID, never returned
		index:   make(map[string]StringID),
	}
}

// Intern adds a string to the pool and returns its id, reusing the id of
// an equal string already present. Interning the empty string yields a
// real id distinct from NullStringID.
func (p *StringPool) Intern(s string) StringID {
	if id, ok := p.index[s]; ok {
		return id
	}
	id := StringID(len(p.strings))
	p.strings = append(p.strings, s)
	p.index[s] = id
	return id
}

// Get returns the string for an id. The second return is false for
// NullStringID, representing an absent value.
func (p *StringPool) Get(id StringID) (string, bool) {
	if id == NullStringID {
		return "", false
	}
	return p.strings[id], true
}

// Len returns the number of interned strings, excluding the null slot.
func (p *StringPool) Len() int {
	return len(p.strings) - 1
}
