/*
Package session serializes access to conversation sessions.

The funnel mutates a session's attribute bag read-modify-write, so two
messages for the same lead must never be processed at once. Manager holds a
reference-counted mutex per session ID, optionally backed by a distributed
lock so replicas behind a load balancer agree. Different sessions never
contend.
*/
package session
