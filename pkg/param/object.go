package param

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vango-dev/querysync/pkg/reactive"
)

// Event describes one field change delivered to a watcher.
type Event struct {
	// Source is the object whose field changed.
	Source Parameterized
	Field  string
	Old    any
	New    any
}

// WatchFunc receives the changes of one write, restricted to the fields the
// watcher asked for.
type WatchFunc func(events []Event)

// Handle identifies a registered watcher.
type Handle uint64

// Parameterized is an object with named fields that can be read, set and
// watched. Implementations are compared by identity.
type Parameterized interface {
	// Name identifies the object in logs and errors. It is not a field.
	Name() string

	// Fields lists the field names in declaration order, read-only ones
	// included. Use Settable for the writable subset.
	Fields() []string

	// Value returns the current value of a field.
	Value(field string) (any, bool)

	// SetMany validates and applies several values as one change.
	SetMany(values map[string]any) error

	// Watch registers fn for changes to fields. An empty list watches all.
	Watch(fields []string, fn WatchFunc) (Handle, error)

	// Unwatch releases a watcher.
	Unwatch(h Handle) error
}

type watcher struct {
	handle Handle
	fields map[string]bool // nil means all fields
	fn     WatchFunc
	active bool
}

// Object is a Parameterized backed by one reactive signal per field.
type Object struct {
	name   string
	fields []Field
	index  map[string]int
	values map[string]*reactive.Signal[any]

	mu         sync.Mutex
	watchers   []*watcher
	nextHandle Handle
}

var _ Parameterized = (*Object)(nil)

// New creates an Object with the given fields. It panics on duplicate or
// empty field names, or on a default that does not satisfy its own field.
func New(name string, fields ...Field) *Object {
	o := &Object{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		values: make(map[string]*reactive.Signal[any], len(fields)),
	}

	for _, f := range fields {
		if f.Name == "" {
			panic("param: field with empty name")
		}
		if _, dup := o.index[f.Name]; dup {
			panic(fmt.Sprintf("param: duplicate field %q on %s", f.Name, name))
		}
		def, err := f.coerce(f.Default)
		if err != nil {
			panic(fmt.Sprintf("param: bad default for %s.%s: %v", name, f.Name, err))
		}
		o.index[f.Name] = len(o.fields)
		o.fields = append(o.fields, f)
		o.values[f.Name] = reactive.NewSignal[any](def)
	}

	return o
}

// Name returns the object's name.
func (o *Object) Name() string {
	return o.name
}

// Fields returns the field names in declaration order.
func (o *Object) Fields() []string {
	names := make([]string, len(o.fields))
	for i, f := range o.fields {
		names[i] = f.Name
	}
	return names
}

// Settable returns the fields of p that SetMany accepts. Objects that do not
// expose their field declarations are treated as fully writable.
func Settable(p Parameterized) []string {
	d, ok := p.(interface{ Field(string) (Field, bool) })
	if !ok {
		return p.Fields()
	}
	var names []string
	for _, name := range p.Fields() {
		if f, ok := d.Field(name); ok && f.Readonly {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Field returns the declaration of a field.
func (o *Object) Field(name string) (Field, bool) {
	i, ok := o.index[name]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

// Value returns the current value of a field without subscribing.
func (o *Object) Value(field string) (any, bool) {
	sig, ok := o.values[field]
	if !ok {
		return nil, false
	}
	return sig.Peek(), true
}

// Signal returns the signal backing a field, or nil for unknown fields.
// Reading it with Get inside reactive.WithListener subscribes the listener.
func (o *Object) Signal(field string) *reactive.Signal[any] {
	return o.values[field]
}

// Set validates and stores a single value.
func (o *Object) Set(field string, value any) error {
	return o.SetMany(map[string]any{field: value})
}

// SetMany validates every value, then stores them in one reactive batch and
// notifies watchers once. Read-only fields are rejected.
func (o *Object) SetMany(values map[string]any) error {
	return o.apply(values, true)
}

// ForceMany behaves like SetMany but also writes read-only fields. It is
// meant for the object's owner, not for general callers.
func (o *Object) ForceMany(values map[string]any) error {
	return o.apply(values, false)
}

type pendingWrite struct {
	field string
	value any
}

func (o *Object) apply(values map[string]any, checkReadonly bool) error {
	if len(values) == 0 {
		return nil
	}

	writes := make([]pendingWrite, 0, len(values))
	for name, raw := range values {
		i, ok := o.index[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, o.name, name)
		}
		f := o.fields[i]
		if checkReadonly && f.Readonly {
			return fmt.Errorf("%w: %s.%s", ErrReadonly, o.name, name)
		}
		v, err := f.coerce(raw)
		if err != nil {
			return &ValidationError{Object: o.name, Field: name, Value: raw, Err: err}
		}
		writes = append(writes, pendingWrite{field: name, value: v})
	}
	sort.Slice(writes, func(a, b int) bool {
		return o.index[writes[a].field] < o.index[writes[b].field]
	})

	var events []Event
	reactive.Batch(func() {
		for _, w := range writes {
			old, changed := o.values[w.field].Swap(w.value)
			if changed {
				events = append(events, Event{Source: o, Field: w.field, Old: old, New: w.value})
			}
		}
	})

	o.dispatch(events)
	return nil
}

// dispatch delivers events to every active watcher interested in them.
// Watchers released by an earlier callback in the same round are skipped.
func (o *Object) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}

	o.mu.Lock()
	watchers := make([]*watcher, len(o.watchers))
	copy(watchers, o.watchers)
	o.mu.Unlock()

	for _, w := range watchers {
		var matched []Event
		for _, e := range events {
			if w.fields == nil || w.fields[e.Field] {
				matched = append(matched, e)
			}
		}
		if len(matched) == 0 {
			continue
		}

		o.mu.Lock()
		active := w.active
		o.mu.Unlock()
		if active {
			w.fn(matched)
		}
	}
}

// Watch registers fn for changes to the given fields. An empty list watches
// every field.
func (o *Object) Watch(fields []string, fn WatchFunc) (Handle, error) {
	var set map[string]bool
	if len(fields) > 0 {
		set = make(map[string]bool, len(fields))
		for _, name := range fields {
			if _, ok := o.index[name]; !ok {
				return 0, fmt.Errorf("%w: %s.%s", ErrUnknownField, o.name, name)
			}
			set[name] = true
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextHandle++
	w := &watcher{handle: o.nextHandle, fields: set, fn: fn, active: true}
	o.watchers = append(o.watchers, w)
	return w.handle, nil
}

// Unwatch releases the watcher registered under h.
func (o *Object) Unwatch(h Handle) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, w := range o.watchers {
		if w.handle == h {
			w.active = false
			o.watchers = append(o.watchers[:i], o.watchers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s handle %d", ErrUnknownWatcher, o.name, h)
}

// WatcherCount returns the number of registered watchers.
func (o *Object) WatcherCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.watchers)
}
