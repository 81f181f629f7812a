package location

import (
	"fmt"
	"log/slog"
	"reflect"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/querysync/pkg/param"
	"github.com/vango-dev/querysync/pkg/querycodec"
	"github.com/vango-dev/querysync/pkg/reactive"
	"github.com/vango-dev/querysync/pkg/session"
)

// Location field names.
const (
	FieldHref     = "href"
	FieldHostname = "hostname"
	FieldPathname = "pathname"
	FieldProtocol = "protocol"
	FieldPort     = "port"
	FieldSearch   = "search"
	FieldHash     = "hash"
	FieldReload   = "reload"
)

// NotSyncedError is returned by Unsync for an object that has no binding.
type NotSyncedError struct {
	// TypeName is the Go type of the object passed to Unsync.
	TypeName string
}

// Error implements the error interface.
func (e *NotSyncedError) Error() string {
	return fmt.Sprintf("location: cannot unsync %s object since it was never synced", e.TypeName)
}

// Code returns the querysync error code.
func (e *NotSyncedError) Code() string {
	return "Q001"
}

// binding is one registration made by Sync.
type binding struct {
	target param.Parameterized
	fields FieldMap
	handle param.Handle
}

// Location is the server-side view of the browser's window.location.
// It is not safe for concurrent use: all calls for one session must happen
// on that session's event loop.
type Location struct {
	state *param.Object

	logger    *slog.Logger
	sessionID string
	registry  session.OnLoadSource
	navigator Navigator
	metrics   *Metrics
	tracer    trace.Tracer

	bindings []*binding

	// syncing is set while the location writes search on behalf of a bound
	// object, so the resulting search change is not pushed back out.
	syncing bool

	// browser is the last state known to the browser; patches are only
	// sent for differences from it.
	browser  Model
	watchNav reactive.Listener
}

var _ param.Parameterized = (*Location)(nil)

// New creates a Location with empty URL fields.
func New(opts ...Option) *Location {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = DefaultConfig().Tracer
	}

	l := &Location{
		state: param.New("Location",
			param.String(FieldHref, "").ReadOnly().
				Describe("The full url, e.g. 'https://localhost:80?color=blue#interact'"),
			param.String(FieldHostname, "").ReadOnly().
				Describe("hostname in window.location e.g. 'docs.example.org'"),
			param.String(FieldPathname, "").Match(`^$|^/`).
				Describe("pathname in window.location e.g. '/guide/filters'"),
			param.String(FieldProtocol, "").ReadOnly().
				Describe("protocol in window.location e.g. 'http:' or 'https:'"),
			param.String(FieldPort, "").ReadOnly().
				Describe("port in window.location e.g. '80'"),
			param.String(FieldSearch, "").Match(`^$|^\?`).
				Describe("search in window.location e.g. '?color=blue'"),
			param.String(FieldHash, "").Match(`^$|^#`).
				Describe("hash in window.location e.g. '#interact'"),
			param.Bool(FieldReload, false).
				Describe("Reload the page when the location is updated instead of replacing history"),
		),
		logger:    cfg.Logger.With("component", "location"),
		sessionID: cfg.SessionID,
		registry:  cfg.Registry,
		navigator: cfg.Navigator,
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
	}
	if l.sessionID != "" {
		l.logger = l.logger.With("session_id", l.sessionID)
	}

	// Both fields exist, so Watch cannot fail here.
	_, _ = l.state.Watch([]string{FieldSearch}, func([]param.Event) { l.updateSynced() })
	_, _ = l.state.Watch([]string{FieldHref}, l.onLoad)

	l.watchNav = reactive.ListenerFunc(l.navigate)
	for _, f := range []string{FieldPathname, FieldSearch, FieldHash} {
		l.state.Signal(f).Subscribe(l.watchNav)
	}

	return l
}

func (l *Location) str(field string) string {
	v, _ := l.state.Value(field)
	s, _ := v.(string)
	return s
}

// Href returns the full URL.
func (l *Location) Href() string { return l.str(FieldHref) }

// Hostname returns the host name, e.g. "example.com".
func (l *Location) Hostname() string { return l.str(FieldHostname) }

// Pathname returns the path, e.g. "/docs".
func (l *Location) Pathname() string { return l.str(FieldPathname) }

// Protocol returns the scheme with colon, e.g. "https:".
func (l *Location) Protocol() string { return l.str(FieldProtocol) }

// Port returns the port, e.g. "8080".
func (l *Location) Port() string { return l.str(FieldPort) }

// Search returns the query string including its leading '?', or "".
func (l *Location) Search() string { return l.str(FieldSearch) }

// Hash returns the fragment including its leading '#', or "".
func (l *Location) Hash() string { return l.str(FieldHash) }

// Reload reports whether URL updates should trigger a full page reload.
func (l *Location) Reload() bool {
	v, _ := l.state.Value(FieldReload)
	b, _ := v.(bool)
	return b
}

// SetPathname sets the path. It must be empty or start with '/'.
func (l *Location) SetPathname(p string) error { return l.state.Set(FieldPathname, p) }

// SetSearch sets the query string. It must be empty or start with '?'.
func (l *Location) SetSearch(s string) error { return l.state.Set(FieldSearch, s) }

// SetHash sets the fragment. It must be empty or start with '#'.
func (l *Location) SetHash(h string) error { return l.state.Set(FieldHash, h) }

// SetReload sets the reload flag.
func (l *Location) SetReload(r bool) error { return l.state.Set(FieldReload, r) }

// Name returns "Location".
func (l *Location) Name() string { return l.state.Name() }

// Fields returns the location's field names.
func (l *Location) Fields() []string { return l.state.Fields() }

// Field returns the declaration of a location field.
func (l *Location) Field(name string) (param.Field, bool) { return l.state.Field(name) }

// Value returns the current value of a location field.
func (l *Location) Value(field string) (any, bool) { return l.state.Value(field) }

// SetMany sets writable location fields. Read-only fields are rejected.
func (l *Location) SetMany(values map[string]any) error { return l.state.SetMany(values) }

// Watch registers fn for changes to location fields.
func (l *Location) Watch(fields []string, fn param.WatchFunc) (param.Handle, error) {
	return l.state.Watch(fields, fn)
}

// Unwatch releases a watcher registered with Watch.
func (l *Location) Unwatch(h param.Handle) error { return l.state.Unwatch(h) }

// QueryParams decodes the current search string.
func (l *Location) QueryParams() *querycodec.Query {
	return querycodec.Parse(l.Search())
}

// UpdateQuery merges values into the current query and writes the result
// to search. Nil values take part in the merge but are not encoded, so a
// nil removes its key. When nothing is left, search becomes "".
func (l *Location) UpdateQuery(values map[string]any) error {
	q := l.QueryParams()
	q.Update(values)
	return l.SetSearch(querycodec.Search(q))
}

// UpdateQueryOrdered is UpdateQuery for an ordered query: new keys are
// appended in q's order.
func (l *Location) UpdateQueryOrdered(q *querycodec.Query) error {
	merged := l.QueryParams()
	merged.Merge(q)
	return l.SetSearch(querycodec.Search(merged))
}

// Sync binds fields of target to query keys. An empty fields map binds
// every settable field of target under its own name.
//
// Sync first pulls the current query into target, then pushes target's
// values into the query, so the URL wins for keys present on both sides.
func (l *Location) Sync(target param.Parameterized, fields FieldMap) error {
	if len(fields) == 0 {
		fields = Fields(param.Settable(target)...)
	}

	b := &binding{target: target, fields: fields}
	h, err := target.Watch(fields.FieldNames(), func(events []param.Event) {
		if err := l.updateQuery(b.target, events, nil); err != nil {
			l.logger.Warn("query update from bound object failed",
				"target", target.Name(),
				"error", err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("location: sync %s: %w", target.Name(), err)
	}
	b.handle = h
	l.bindings = append(l.bindings, b)
	l.metrics.synced()
	l.logger.Debug("location sync",
		"target", target.Name(),
		"fields", fields.FieldNames(),
	)

	l.updateSynced()

	seed := querycodec.New()
	for _, fk := range fields {
		v, _ := target.Value(fk.Field)
		seed.Set(fk.Key, v)
	}
	if err := l.updateQuery(target, nil, seed); err != nil {
		if i := l.find(target); i >= 0 {
			l.bindings = append(l.bindings[:i], l.bindings[i+1:]...)
			l.metrics.dropped()
		}
		if uerr := target.Unwatch(h); uerr != nil {
			l.logger.Warn("unwatch failed", "target", target.Name(), "error", uerr)
		}
		return fmt.Errorf("location: sync %s: %w", target.Name(), err)
	}
	return nil
}

// Unsync removes the binding of target and stops watching it. The URL and
// target keep their last synchronized values.
func (l *Location) Unsync(target param.Parameterized) error {
	i := l.find(target)
	if i < 0 {
		return &NotSyncedError{TypeName: fmt.Sprintf("%T", target)}
	}
	b := l.bindings[i]
	l.bindings = append(l.bindings[:i], l.bindings[i+1:]...)
	l.metrics.unsynced()

	if err := target.Unwatch(b.handle); err != nil {
		l.logger.Warn("unwatch failed", "target", target.Name(), "error", err)
	}
	l.logger.Debug("location unsync", "target", target.Name())
	return nil
}

// IsSynced reports whether target has a binding.
func (l *Location) IsSynced(target param.Parameterized) bool {
	return l.find(target) >= 0
}

// Bindings returns the number of active bindings.
func (l *Location) Bindings() int {
	return len(l.bindings)
}

// find returns the index of the first binding whose target is target.
func (l *Location) find(target param.Parameterized) int {
	for i, b := range l.bindings {
		if sameObject(b.target, target) {
			return i
		}
	}
	return -1
}

// sameObject compares by identity. Non-comparable dynamic types never match
// instead of panicking.
func sameObject(a, b param.Parameterized) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// updateSynced pushes the current query into every bound object. Keys
// missing from the query leave their fields untouched.
func (l *Location) updateSynced() {
	if l.syncing {
		l.metrics.suppress("update_synced")
		return
	}

	params := l.QueryParams()
	bindings := make([]*binding, len(l.bindings))
	copy(bindings, l.bindings)

	for _, b := range bindings {
		values := make(map[string]any)
		for key, field := range b.fields.inverse() {
			if v, ok := params.Get(key); ok {
				values[field] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		if err := b.target.SetMany(values); err != nil {
			// Apply what the object accepts, one field at a time.
			for field, v := range values {
				if err := b.target.SetMany(map[string]any{field: v}); err != nil {
					l.logger.Warn("query value rejected by bound object",
						"target", b.target.Name(),
						"field", field,
						"error", err,
					)
				}
			}
		}
		l.metrics.propagated(directionToTarget)
	}
}

// updateQuery stages the changed fields of target under their query keys,
// on top of seed, and writes the non-nil entries to search.
func (l *Location) updateQuery(target param.Parameterized, events []param.Event, seed *querycodec.Query) error {
	if l.syncing {
		l.metrics.suppress("update_query")
		l.logger.Debug("reentrant query update suppressed", "target", target.Name())
		return nil
	}

	query := seed
	if query == nil {
		query = querycodec.New()
	}
	if i := l.find(target); i >= 0 {
		b := l.bindings[i]
		for _, e := range events {
			if key, ok := b.fields.Key(e.Field); ok {
				query.Set(key, e.New)
			}
		}
	}

	staged := querycodec.New()
	for _, k := range query.Keys() {
		if v, _ := query.Get(k); v != nil {
			staged.Set(k, v)
		}
	}

	l.syncing = true
	defer func() { l.syncing = false }()

	if err := l.UpdateQueryOrdered(staged); err != nil {
		return err
	}
	l.metrics.propagated(directionToURL)
	return nil
}

// onLoad runs the session's onload callbacks when href is first reported.
func (l *Location) onLoad(events []param.Event) {
	e := events[len(events)-1]
	if old, _ := e.Old.(string); old != "" {
		return
	}
	if href, _ := e.New.(string); href == "" {
		return
	}
	if l.sessionID == "" || l.registry == nil {
		return
	}

	n := session.RunCallbacks(l.logger, l.sessionID, l.registry.Callbacks(l.sessionID))
	l.logger.Debug("onload callbacks run", "count", n)
}
