/*
Package ports defines the driven ports (interfaces) around the funnel engine.

The engine itself is pure; these interfaces describe what the surrounding
dialogue loop needs from the outside world, so storage backends and model
providers can be swapped without touching transition logic.

# Key Interfaces

  - SessionStore: persists the per-session state and attribute bag.
  - HistoryStore: append-only, role-tagged message log with expiry on touch.
  - DistributedLocker: serializes access to one session across replicas.
  - Extractor: classifies a message into a closed label for one category.
  - Generator: produces the assistant reply for a prompt.
*/
package ports
