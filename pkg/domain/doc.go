/*
Package domain contains the core types of the setter funnel.

It is kept pure and free of I/O so the transition engine and every adapter
can share it.

# Key Entities

  - State: the closed set of funnel stages, with ENTRY as the sole initial state.
  - Attributes: the typed per-session bag the engine mutates in place.
  - Label: the tagged result of a semantic extraction (a finite value or unresolved).
  - Session and Message: what the surrounding dialogue loop persists.
*/
package domain
