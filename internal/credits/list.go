package credits

import (
	"encoding/json"
	"fmt"
)

// List is the ordered, mutable set of workloads owned by one session.
// Insertion order drives display order and positional naming.
type List struct {
	items []Workload
}

// NewList returns a list holding the single starting workload.
func NewList() *List {
	return &List{items: []Workload{DefaultWorkload(0)}}
}

// NewListFrom wraps workloads without validating them.
func NewListFrom(workloads []Workload) *List {
	items := make([]Workload, len(workloads))
	copy(items, workloads)
	return &List{items: items}
}

// Initialize returns existing after backfilling missing fields, or a new
// default list when there is none. An existing list is never reset.
func Initialize(existing *List) *List {
	if existing == nil {
		return NewList()
	}
	existing.Normalize()
	return existing
}

// Normalize fills fields absent from older records: an empty name becomes
// the positional placeholder and a zero active-days value becomes 7.
func (l *List) Normalize() {
	for i := range l.items {
		l.items[i].normalize(i)
	}
}

func (l *List) Len() int {
	return len(l.items)
}

// Workloads returns a copy of the records in order.
func (l *List) Workloads() []Workload {
	out := make([]Workload, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the workload at index.
func (l *List) At(index int) (Workload, error) {
	if err := l.checkIndex(index); err != nil {
		return Workload{}, err
	}
	return l.items[index], nil
}

// Append adds a workload at the end. Fields left unset in defaults (or a
// nil defaults) take the standard new workload values; explicit values
// must be valid.
func (l *List) Append(defaults *WorkloadPatch) error {
	position := len(l.items)
	w := NewWorkload(position)
	if defaults != nil {
		w = defaults.Over(w)
		if err := w.Validate(); err != nil {
			return err
		}
	}
	l.items = append(l.items, w)
	return nil
}

// RemoveAt deletes the workload at index. Names of the remaining records
// are kept as they are.
func (l *List) RemoveAt(index int) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

// Update sets a single field of the workload at index.
func (l *List) Update(index int, field Field, value any) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	w := l.items[index]
	if err := w.SetField(field, value); err != nil {
		return err
	}
	l.items[index] = w
	return nil
}

// Edit is a set of field updates applied to one workload together.
type Edit map[Field]any

// Apply performs every update in edit against the workload at index. Either
// all fields change or none do.
func (l *List) Apply(index int, edit Edit) error {
	if err := l.checkIndex(index); err != nil {
		return err
	}
	if len(edit) == 0 {
		return fmt.Errorf("%w: no fields to update", ErrInvalidValue)
	}
	for field := range edit {
		if _, err := ParseField(string(field)); err != nil {
			return err
		}
	}
	w := l.items[index]
	for _, field := range editOrder {
		value, ok := edit[field]
		if !ok {
			continue
		}
		if err := w.SetField(field, value); err != nil {
			return err
		}
	}
	l.items[index] = w
	return nil
}

var editOrder = []Field{FieldName, FieldSize, FieldCount, FieldUptimeHours, FieldActiveDaysPerWeek}

func (l *List) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(l.items))
	}
	return nil
}

func (l *List) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *List) UnmarshalJSON(data []byte) error {
	var items []Workload
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	if items == nil {
		items = []Workload{}
	}
	l.items = items
	return nil
}
