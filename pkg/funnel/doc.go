// Package funnel implements the sales funnel state machine.
//
// The engine is a pure function of (state, attributes, signals): it never
// blocks, holds no per-session state and mutates only the attribute bag the
// caller hands it. Callers serialize steps for the same session.
//
// Absence of a positive exit signal always means "stay": a state only
// advances when one of its guards fires.
package funnel
