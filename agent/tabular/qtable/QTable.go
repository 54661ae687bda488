// Package qtable implements sparse tabular action-value functions
// indexed by state.Key
package qtable

import (
	"fmt"
	"sort"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/mazemouse/state"
)

// Values holds the action values of a single state, indexed by
// state.Action
type Values [state.Actions]float64

// Slice returns the Values as a slice
func (v Values) Slice() []float64 {
	return v[:]
}

// Table is a sparse mapping from state.Key to action values. States
// that have not been seen have all-zero action values. A Table is not
// safe for concurrent use.
type Table struct {
	values map[state.Key]*Values
}

// New returns a new, empty Table
func New() *Table {
	return &Table{values: make(map[state.Key]*Values)}
}

// Ensure adds k to the Table with all-zero action values if it is not
// yet present and returns its action values
func (t *Table) Ensure(k state.Key) Values {
	v, ok := t.values[k]
	if !ok {
		v = &Values{}
		t.values[k] = v
	}
	return *v
}

// Values returns the action values of k without adding k to the Table
func (t *Table) Values(k state.Key) Values {
	if v, ok := t.values[k]; ok {
		return *v
	}
	return Values{}
}

// At returns the value of action a in state k
func (t *Table) At(k state.Key, a state.Action) float64 {
	if v, ok := t.values[k]; ok {
		return v[a]
	}
	return 0
}

// Set sets the value of action a in state k
func (t *Table) Set(k state.Key, a state.Action, value float64) {
	v, ok := t.values[k]
	if !ok {
		v = &Values{}
		t.values[k] = v
	}
	v[a] = value
}

// Max returns the largest action value of k
func (t *Table) Max(k state.Key) float64 {
	v := t.Values(k)
	return floats.Max(v.Slice())
}

// Has returns whether k has been added to the Table
func (t *Table) Has(k state.Key) bool {
	_, ok := t.values[k]
	return ok
}

// Len returns the number of states in the Table
func (t *Table) Len() int {
	return len(t.values)
}

// Keys returns the states of the Table ordered by their string form
func (t *Table) Keys() []state.Key {
	keys := make([]state.Key, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Reset removes all states from the Table
func (t *Table) Reset() {
	t.values = make(map[state.Key]*Values)
}

// Clone returns a deep copy of the Table
func (t *Table) Clone() *Table {
	clone := &Table{values: make(map[state.Key]*Values, len(t.values))}
	for k, v := range t.values {
		copied := *v
		clone.values[k] = &copied
	}
	return clone
}

// Equal returns whether both Tables hold the same states with the same
// action values
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() {
		return false
	}
	for k, v := range t.values {
		w, ok := other.values[k]
		if !ok || *v != *w {
			return false
		}
	}
	return true
}

// SizeReport returns a human readable report of the memory used by the
// Table entries
func (t *Table) SizeReport() string {
	entry := int(unsafe.Sizeof(state.Key{})) + int(unsafe.Sizeof(Values{})) +
		int(unsafe.Sizeof(&Values{}))
	mem := t.Len() * entry
	return fmt.Sprintf("States: %d\t Mem: %v", t.Len(),
		datasize.ByteSize(mem).HumanReadable())
}

func (t *Table) String() string {
	var b strings.Builder
	for _, k := range t.Keys() {
		v := t.values[k]
		fmt.Fprintf(&b, "%14v: %7.2f %7.2f %7.2f %7.2f\n", k, v[0], v[1], v[2],
			v[3])
	}
	return b.String()
}
