// Package session keeps per-session callbacks that must run once the
// browser has reported its first location.
//
// A host registers callbacks while building a session's page, and the
// location component runs them when the browser's href first arrives:
//
//	reg := session.NewRegistry(logger)
//	reg.OnLoad(sessionID, func() { startPolling() })
//	loc := location.New(location.WithSessionID(sessionID), location.WithRegistry(reg))
//
// The registry is keyed by an opaque session ID and holds no other state.
package session
