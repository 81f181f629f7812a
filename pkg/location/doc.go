// Package location exposes the browser's address bar as an observable
// object and keeps other observable objects in sync with its query string.
//
// One Location exists per session. Its fields mirror window.location:
// href, hostname, protocol and port are read-only snapshots reported by the
// browser; pathname, search and hash are writable and pushed back to the
// browser through a Navigator.
//
// # Query Sync
//
// Sync binds fields of any param.Parameterized to query keys:
//
//	loc := location.New(location.WithNavigator(push))
//	filters := param.New("Filters", param.String("color", "blue"), param.Int("page", 1))
//
//	_ = loc.Sync(filters, nil)                               // every field, key = field name
//	_ = loc.Sync(other, location.Rename(map[string]string{"q": "query"}))
//
// After Sync returns, the object and the URL agree. Values already in the
// URL win over the object's own values for keys present in both; the
// object's remaining values are then written into the URL. From then on a
// change on either side is propagated to the other until Unsync.
//
// A boolean guard stops the propagation from bouncing back and forth: while
// the location writes search on behalf of a bound object, the search watcher
// does not push values back into bound objects.
package location
