/*
Package observability provides tools for monitoring the setter funnel.

It includes Prometheus metrics fed by the engine's lifecycle hooks and the
dialogue loop, audit hooks that log every transition, and Aggregate to fan a
single hook set out to several consumers.
*/
package observability
