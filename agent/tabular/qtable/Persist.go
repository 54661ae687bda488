package qtable

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samuelfneumann/mazemouse/state"
	"github.com/samuelfneumann/mazemouse/utils/floatutils"
)

// PersistenceError reports a failure to save, load, or import a Table
type PersistenceError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

var errMalformed = errors.New("malformed table data")

// IsMalformed returns whether or not an error reports that persisted
// table data could not be understood
func IsMalformed(err error) bool {
	return errors.Is(err, errMalformed)
}

// Entry is a single state and its action values. Entries are
// serialized as the pair [stateKey, [v0, v1, v2, v3]].
type Entry struct {
	Key    state.Key
	Values Values
}

// MarshalJSON implements the json.Marshaler interface
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{e.Key.String(), e.Values.Slice()})
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: entry has %d elements, want 2", errMalformed,
			len(pair))
	}

	var key string
	if err := json.Unmarshal(pair[0], &key); err != nil {
		return fmt.Errorf("%w: state key: %v", errMalformed, err)
	}
	k, err := state.ParseKey(key)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}

	var values []*float64
	if err := json.Unmarshal(pair[1], &values); err != nil {
		return fmt.Errorf("%w: values of %q: %v", errMalformed, key, err)
	}
	if len(values) != state.Actions {
		return fmt.Errorf("%w: state %q has %d values, want %d", errMalformed,
			key, len(values), state.Actions)
	}

	var v Values
	for i, value := range values {
		if value == nil {
			return fmt.Errorf("%w: state %q has a null value", errMalformed,
				key)
		}
		v[i] = *value
	}

	e.Key = k
	e.Values = v
	return nil
}

// Export returns every state of the Table with its action values,
// ordered by state
func (t *Table) Export() []Entry {
	keys := t.Keys()
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: k, Values: *t.values[k]}
	}
	return entries
}

// Import replaces the contents of the Table with entries. If any entry
// is malformed (a duplicate state or a non-finite value) an error is
// returned and the Table is left untouched.
func (t *Table) Import(entries []Entry) error {
	values := make(map[state.Key]*Values, len(entries))
	for _, e := range entries {
		if _, ok := values[e.Key]; ok {
			return &PersistenceError{"import", fmt.Errorf("%w: duplicate "+
				"state %v", errMalformed, e.Key)}
		}
		if !floatutils.AllFinite(e.Values.Slice()...) {
			return &PersistenceError{"import", fmt.Errorf("%w: non-finite "+
				"values %v for state %v", errMalformed, e.Values, e.Key)}
		}
		copied := e.Values
		values[e.Key] = &copied
	}

	t.values = values
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Export())
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *Table) UnmarshalJSON(data []byte) error {
	var entries *[]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		if IsMalformed(err) {
			return &PersistenceError{"unmarshal", err}
		}
		return &PersistenceError{"unmarshal", fmt.Errorf("%w: %v",
			errMalformed, err)}
	}
	if entries == nil {
		return &PersistenceError{"unmarshal", fmt.Errorf("%w: want an "+
			"array of entries, have null", errMalformed)}
	}
	if t.values == nil {
		t.values = make(map[state.Key]*Values)
	}
	return t.Import(*entries)
}

// Save saves the Table as JSON to filename
func (t *Table) Save(filename string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return &PersistenceError{"save", err}
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return &PersistenceError{"save", err}
	}
	return nil
}

// Load replaces the contents of the Table with the Table saved in
// filename. On failure the Table is left untouched.
func (t *Table) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return &PersistenceError{"load", err}
	}

	loaded := New()
	if err := json.Unmarshal(data, loaded); err != nil {
		return &PersistenceError{"load", err}
	}
	t.values = loaded.values
	return nil
}
