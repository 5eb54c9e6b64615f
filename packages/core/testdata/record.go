package testdata

// Record is a single row of test data with its key order preserved from
// the source document.
type Record struct {
	keys   []string
	values map[string]any
}

func (r *Record) set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the record's keys in document order.
func (r *Record) Keys() []string {
	return r.keys
}

// Get returns the value for a key and whether the key exists.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of keys in the record.
func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns a copy of the record as a plain mapping.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// Tuple is one record flattened into the canonical column order.
type Tuple []any

// Table is the result of materializing a data file: the canonical column
// order plus one tuple per source record, in input order.
type Table struct {
	Columns []string
	Tuples  []Tuple
}
