// Package middleware decorates the session and history stores with
// encryption at rest and PII redaction.
package middleware

import "github.com/aretw0/setter/pkg/ports"

// SessionMiddleware wraps a SessionStore to add behavior.
type SessionMiddleware func(ports.SessionStore) ports.SessionStore

// HistoryMiddleware wraps a HistoryStore to add behavior.
type HistoryMiddleware func(ports.HistoryStore) ports.HistoryStore

// ChainSessions applies mws so the first one is outermost.
func ChainSessions(store ports.SessionStore, mws ...SessionMiddleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// ChainHistory applies mws so the first one is outermost.
func ChainHistory(store ports.HistoryStore, mws ...HistoryMiddleware) ports.HistoryStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
