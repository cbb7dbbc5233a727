/*
Package signals turns free-form user text into the discrete facts the funnel
engine branches on.

Text is normalized once (see Normalize) and then matched against named phrase
sets loaded from YAML. Matching is raw substring membership: it is simple to
audit and update, and the engine compensates for false positives with
counters and multi-turn confirmation. A handful of detectors deliberately
differ: IsOrientationOnly compares whole lowered text, ConfirmsPattern lowers
without normalizing, and location extraction matches whole words.
*/
package signals
