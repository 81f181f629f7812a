package location

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/querysync/pkg/param"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLocation(opts ...Option) *Location {
	return New(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func newFilters() *param.Object {
	return param.New("Filters",
		param.String("color", "blue"),
		param.Int("page", 1),
	)
}

func value(t *testing.T, p param.Parameterized, field string) any {
	t.Helper()
	v, ok := p.Value(field)
	if !ok {
		t.Fatalf("field %q not found", field)
	}
	return v
}

func TestUpdateQuery(t *testing.T) {
	tests := []struct {
		name   string
		search string
		values map[string]any
		want   string
	}{
		{"nil values dropped", "", map[string]any{"color": nil, "size": "m"}, "?size=m"},
		{"nothing left", "?color=red", map[string]any{"color": nil}, ""},
		{"empty stays empty", "", map[string]any{}, ""},
		{"overwrite keeps position", "?a=1&b=2", map[string]any{"a": "x"}, "?a=x&b=2"},
		{"new keys appended", "?z=1", map[string]any{"b": 2, "a": true}, "?z=1&a=true&b=2"},
		{"lists repeat", "", map[string]any{"tag": []string{"x", "y"}}, "?tag=x&tag=y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLocation()
			if err := l.SetSearch(tt.search); err != nil {
				t.Fatal(err)
			}
			if err := l.UpdateQuery(tt.values); err != nil {
				t.Fatal(err)
			}
			if got := l.Search(); got != tt.want {
				t.Errorf("Search() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryParams(t *testing.T) {
	l := newTestLocation()
	_ = l.SetSearch("?color=blue&tag=a&tag=b")

	got := l.QueryParams().Map()
	want := map[string]any{"color": "blue", "tag": []string{"a", "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryParams() = %v, want %v", got, want)
	}
}

func TestFieldConstraints(t *testing.T) {
	l := newTestLocation()

	for _, tc := range []struct {
		name string
		set  func() error
	}{
		{"search without ?", func() error { return l.SetSearch("color=red") }},
		{"pathname without /", func() error { return l.SetPathname("docs") }},
		{"hash without #", func() error { return l.SetHash("top") }},
	} {
		if err := tc.set(); !param.IsValidation(err) {
			t.Errorf("%s: error = %v, want validation error", tc.name, err)
		}
	}

	if err := l.SetMany(map[string]any{FieldHref: "http://x/"}); !errors.Is(err, param.ErrReadonly) {
		t.Errorf("setting href: error = %v, want ErrReadonly", err)
	}

	if err := l.SetPathname("/docs"); err != nil {
		t.Errorf("SetPathname(/docs): %v", err)
	}
	if err := l.SetHash("#top"); err != nil {
		t.Errorf("SetHash(#top): %v", err)
	}
}

func TestSyncBidirectionalConvergence(t *testing.T) {
	l := newTestLocation()
	target := newFilters()

	if err := l.Sync(target, Fields("color")); err != nil {
		t.Fatal(err)
	}

	if got := l.Search(); got != "?color=blue" {
		t.Errorf("Search() = %q, want ?color=blue", got)
	}
	if got := value(t, target, "color"); got != "blue" {
		t.Errorf("color = %v, want blue", got)
	}
}

func TestSyncURLPrecedence(t *testing.T) {
	l := newTestLocation()
	_ = l.SetSearch("?color=red")
	target := newFilters()

	if err := l.Sync(target, Fields("color")); err != nil {
		t.Fatal(err)
	}

	if got := value(t, target, "color"); got != "red" {
		t.Errorf("color = %v, want red", got)
	}
	if got := l.Search(); got != "?color=red" {
		t.Errorf("Search() = %q, want ?color=red", got)
	}
}

func TestSyncPropagation(t *testing.T) {
	l := newTestLocation()
	target := newFilters()
	if err := l.Sync(target, Fields("color")); err != nil {
		t.Fatal(err)
	}

	_ = target.Set("color", "green")
	if got := l.Search(); got != "?color=green" {
		t.Errorf("after target change, Search() = %q", got)
	}

	_ = l.SetSearch("?color=purple")
	if got := value(t, target, "color"); got != "purple" {
		t.Errorf("after search change, color = %v", got)
	}
}

func TestSyncDefaultsToAllFields(t *testing.T) {
	l := newTestLocation()
	target := newFilters()

	if err := l.Sync(target, nil); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?color=blue&page=1" {
		t.Errorf("Search() = %q", got)
	}

	_ = l.SetSearch("?color=blue&page=4")
	if got := value(t, target, "page"); got != 4 {
		t.Errorf("page = %v, want 4", got)
	}
}

func TestSyncDefaultsSkipReadonlyFields(t *testing.T) {
	l := newTestLocation()
	target := param.New("Tagged",
		param.String("color", "blue"),
		param.String("id", "abc").ReadOnly(),
	)

	if err := l.Sync(target, nil); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?color=blue" {
		t.Errorf("Search() = %q, want ?color=blue", got)
	}

	_ = l.SetSearch("?color=red&id=zzz")
	if got := value(t, target, "color"); got != "red" {
		t.Errorf("color = %v, want red", got)
	}
	if got := value(t, target, "id"); got != "abc" {
		t.Errorf("id = %v, want abc", got)
	}
}

func TestLocationSettableFields(t *testing.T) {
	l := newTestLocation()
	want := []string{FieldPathname, FieldSearch, FieldHash, FieldReload}
	if got := param.Settable(l); !reflect.DeepEqual(got, want) {
		t.Errorf("Settable() = %v, want %v", got, want)
	}
}

func TestSyncExplicitReadonlyFieldIsPushed(t *testing.T) {
	l := newTestLocation()
	target := param.New("Tagged",
		param.String("color", "blue"),
		param.String("id", "abc").ReadOnly(),
	)

	if err := l.Sync(target, Fields("color", "id")); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?color=blue&id=abc" {
		t.Errorf("Search() = %q", got)
	}
}

func TestSyncFailedPushLeavesNoBinding(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")
	l := newTestLocation(WithMetrics(m))
	l.state = param.New("Location", param.String(FieldSearch, "").ReadOnly())
	target := newFilters()

	err := l.Sync(target, nil)
	if !errors.Is(err, param.ErrReadonly) {
		t.Fatalf("Sync() error = %v, want ErrReadonly", err)
	}
	if l.IsSynced(target) || l.Bindings() != 0 {
		t.Errorf("binding kept after failed sync: %d", l.Bindings())
	}
	if n := target.WatcherCount(); n != 0 {
		t.Errorf("target watchers = %d, want 0", n)
	}
	if got := testutil.ToFloat64(m.bindings); got != 0 {
		t.Errorf("bindings gauge = %v, want 0", got)
	}
}

func TestSyncRename(t *testing.T) {
	l := newTestLocation()
	target := newFilters()

	if err := l.Sync(target, Rename(map[string]string{"color": "c", "page": "p"})); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?c=blue&p=1" {
		t.Errorf("Search() = %q", got)
	}

	_ = l.SetSearch("?c=red&p=2")
	if value(t, target, "color") != "red" || value(t, target, "page") != 2 {
		t.Errorf("target = %v/%v, want red/2", value(t, target, "color"), value(t, target, "page"))
	}
}

func TestSyncKeepsUnrelatedKeys(t *testing.T) {
	l := newTestLocation()
	_ = l.SetSearch("?x=1")
	target := newFilters()

	if err := l.Sync(target, Fields("color")); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?x=1&color=blue" {
		t.Errorf("Search() = %q", got)
	}

	// Keys absent from the query leave fields untouched.
	_ = l.SetSearch("?x=2")
	if got := value(t, target, "color"); got != "blue" {
		t.Errorf("color = %v, want blue", got)
	}
}

func TestSyncNilFieldNotWritten(t *testing.T) {
	l := newTestLocation()
	_ = l.SetSearch("?keep=1")
	target := param.New("Opt", param.String("note", "").AllowNil(), param.String("color", "blue"))
	_ = target.Set("note", nil)

	if err := l.Sync(target, nil); err != nil {
		t.Fatal(err)
	}
	if got := l.Search(); got != "?keep=1&color=blue" {
		t.Errorf("Search() = %q", got)
	}

	// Setting a field to nil does not clear its key.
	_ = target.Set("note", "hi")
	_ = target.Set("note", nil)
	if got := l.Search(); got != "?keep=1&color=blue&note=hi" {
		t.Errorf("Search() = %q", got)
	}
}

func TestSyncRejectedURLValue(t *testing.T) {
	l := newTestLocation()
	_ = l.SetSearch("?page=abc&color=red")
	target := newFilters()

	if err := l.Sync(target, nil); err != nil {
		t.Fatal(err)
	}

	if got := value(t, target, "color"); got != "red" {
		t.Errorf("color = %v, want red", got)
	}
	if got := value(t, target, "page"); got != 1 {
		t.Errorf("page = %v, want 1", got)
	}
	if got := l.Search(); got != "?page=1&color=red" {
		t.Errorf("Search() = %q", got)
	}
}

func TestSyncUnknownField(t *testing.T) {
	l := newTestLocation()
	target := newFilters()

	err := l.Sync(target, Fields("missing"))
	if !errors.Is(err, param.ErrUnknownField) {
		t.Fatalf("Sync error = %v, want ErrUnknownField", err)
	}
	if l.Bindings() != 0 {
		t.Errorf("Bindings() = %d, want 0", l.Bindings())
	}
}

func TestUnsyncStopsPropagation(t *testing.T) {
	l := newTestLocation()
	target := newFilters()
	_ = l.Sync(target, Fields("color"))

	if err := l.Unsync(target); err != nil {
		t.Fatal(err)
	}
	if l.IsSynced(target) || target.WatcherCount() != 0 {
		t.Fatal("binding or watcher left behind")
	}

	_ = target.Set("color", "green")
	if got := l.Search(); got != "?color=blue" {
		t.Errorf("Search() = %q after unsync, want ?color=blue", got)
	}

	_ = l.SetSearch("?color=purple")
	if got := value(t, target, "color"); got != "green" {
		t.Errorf("color = %v after unsync, want green", got)
	}
}

func TestUnsyncUnknownTarget(t *testing.T) {
	l := newTestLocation()
	synced := newFilters()
	_ = l.Sync(synced, nil)

	// Same values, different object.
	err := l.Unsync(newFilters())

	var nse *NotSyncedError
	if !errors.As(err, &nse) {
		t.Fatalf("Unsync error = %v, want *NotSyncedError", err)
	}
	if nse.TypeName != "*param.Object" {
		t.Errorf("TypeName = %q", nse.TypeName)
	}
	if nse.Code() != "Q001" {
		t.Errorf("Code() = %q", nse.Code())
	}
	if l.Bindings() != 1 {
		t.Errorf("Bindings() = %d, want 1", l.Bindings())
	}
}

func TestSyncUnsyncSyncIsIdempotent(t *testing.T) {
	once := newTestLocation()
	_ = once.SetSearch("?page=3")
	a := newFilters()
	_ = once.Sync(a, nil)

	twice := newTestLocation()
	_ = twice.SetSearch("?page=3")
	b := newFilters()
	_ = twice.Sync(b, nil)
	_ = twice.Unsync(b)
	_ = twice.Sync(b, nil)

	if once.Search() != twice.Search() {
		t.Errorf("search differs: %q vs %q", once.Search(), twice.Search())
	}
	for _, f := range a.Fields() {
		if value(t, a, f) != value(t, b, f) {
			t.Errorf("%s differs: %v vs %v", f, value(t, a, f), value(t, b, f))
		}
	}
}

func TestReentrancyGuard(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "")
	l := newTestLocation(WithMetrics(m))
	target := newFilters()
	_ = l.Sync(target, Fields("color"))

	before := testutil.ToFloat64(m.suppressed.WithLabelValues("update_synced"))
	toURL := testutil.ToFloat64(m.propagations.WithLabelValues(directionToURL))

	_ = target.Set("color", "green")

	if got := testutil.ToFloat64(m.suppressed.WithLabelValues("update_synced")) - before; got != 1 {
		t.Errorf("suppressed update_synced delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.propagations.WithLabelValues(directionToURL)) - toURL; got != 1 {
		t.Errorf("to_url propagations delta = %v, want 1", got)
	}
	if l.syncing {
		t.Error("guard left set after propagation")
	}
}

func TestMultipleBindings(t *testing.T) {
	l := newTestLocation()
	a := param.New("A", param.String("color", "blue"))
	b := param.New("B", param.Int("page", 1))

	_ = l.Sync(a, nil)
	_ = l.Sync(b, nil)
	if got := l.Search(); got != "?color=blue&page=1" {
		t.Errorf("Search() = %q", got)
	}

	_ = l.SetSearch("?color=red&page=9")
	if value(t, a, "color") != "red" || value(t, b, "page") != 9 {
		t.Errorf("bound objects not updated: %v %v", value(t, a, "color"), value(t, b, "page"))
	}

	_ = l.Unsync(a)
	_ = l.SetSearch("?color=x&page=2")
	if value(t, a, "color") != "red" || value(t, b, "page") != 2 {
		t.Errorf("unexpected values after unsync of A: %v %v", value(t, a, "color"), value(t, b, "page"))
	}
}

func TestMetricsBindings(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry(), "test")
	l := newTestLocation(WithMetrics(m))
	target := newFilters()

	_ = l.Sync(target, nil)
	if got := testutil.ToFloat64(m.bindings); got != 1 {
		t.Errorf("bindings = %v, want 1", got)
	}
	_ = l.Unsync(target)
	if got := testutil.ToFloat64(m.bindings); got != 0 {
		t.Errorf("bindings = %v, want 0", got)
	}
	if testutil.ToFloat64(m.syncs) != 1 || testutil.ToFloat64(m.unsyncs) != 1 {
		t.Error("sync/unsync counters not incremented")
	}
}

func TestLocationIsParameterized(t *testing.T) {
	l := newTestLocation()
	want := []string{"href", "hostname", "pathname", "protocol", "port", "search", "hash", "reload"}
	if got := l.Fields(); !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v", got)
	}

	var seen []string
	h, err := l.Watch([]string{FieldHash}, func(events []param.Event) {
		for _, e := range events {
			seen = append(seen, e.New.(string))
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = l.SetHash("#a")
	_ = l.Unwatch(h)
	_ = l.SetHash("#b")

	if !reflect.DeepEqual(seen, []string{"#a"}) {
		t.Errorf("seen = %v", seen)
	}
}

func TestSameObject(t *testing.T) {
	a, b := newFilters(), newFilters()
	if !sameObject(a, a) {
		t.Error("object should match itself")
	}
	if sameObject(a, b) {
		t.Error("distinct objects with equal values should not match")
	}
	if sameObject(a, nil) {
		t.Error("nil should not match an object")
	}
}
