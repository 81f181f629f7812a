package location

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Model is the location state exchanged with the browser.
type Model struct {
	Href     string `json:"href"`
	Hostname string `json:"hostname"`
	Pathname string `json:"pathname"`
	Protocol string `json:"protocol"`
	Port     string `json:"port"`
	Search   string `json:"search"`
	Hash     string `json:"hash"`
	Reload   bool   `json:"reload"`
}

// URLPatch asks the browser to move to a new pathname, search and hash.
// With Reload set the browser performs a full page load instead of a
// history update.
type URLPatch struct {
	Pathname string `json:"pathname"`
	Search   string `json:"search"`
	Hash     string `json:"hash"`
	Reload   bool   `json:"reload"`
}

// Navigator delivers URL patches to the browser.
type Navigator func(URLPatch)

// Model returns a snapshot of the location.
func (l *Location) Model() Model {
	return Model{
		Href:     l.Href(),
		Hostname: l.Hostname(),
		Pathname: l.Pathname(),
		Protocol: l.Protocol(),
		Port:     l.Port(),
		Search:   l.Search(),
		Hash:     l.Hash(),
		Reload:   l.Reload(),
	}
}

// ApplyBrowser stores a snapshot reported by the browser, including the
// read-only fields. The reload flag is server-side only and is ignored.
// Fields the browser already shows are not echoed back as a patch.
func (l *Location) ApplyBrowser(ctx context.Context, m Model) error {
	_, span := l.tracer.Start(ctx, "location.apply_browser",
		trace.WithAttributes(
			attribute.String("location.pathname", m.Pathname),
			attribute.Bool("location.first_load", l.Href() == "" && m.Href != ""),
			attribute.Int("location.bindings", len(l.bindings)),
		),
	)
	defer span.End()

	prev := l.browser
	l.browser = m

	err := l.state.ForceMany(map[string]any{
		FieldHref:     m.Href,
		FieldHostname: m.Hostname,
		FieldPathname: m.Pathname,
		FieldProtocol: m.Protocol,
		FieldPort:     m.Port,
		FieldSearch:   m.Search,
		FieldHash:     m.Hash,
	})
	if err != nil {
		l.browser = prev
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// navigate sends a patch when pathname, search or hash differ from what
// the browser last reported.
func (l *Location) navigate() {
	patch := URLPatch{
		Pathname: l.Pathname(),
		Search:   l.Search(),
		Hash:     l.Hash(),
		Reload:   l.Reload(),
	}
	if patch.Pathname == l.browser.Pathname &&
		patch.Search == l.browser.Search &&
		patch.Hash == l.browser.Hash {
		return
	}

	l.browser.Pathname = patch.Pathname
	l.browser.Search = patch.Search
	l.browser.Hash = patch.Hash

	if l.navigator == nil {
		return
	}
	l.navigator(patch)
	l.metrics.patched()
}
