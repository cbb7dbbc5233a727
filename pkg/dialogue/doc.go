// Package dialogue runs one conversational turn end to end.
//
// A turn sanitizes the message, serializes on the user's session lock,
// resolves qualification attributes with the extractor, steps the funnel,
// asks the generator for a reply and persists history and session. Model
// failures never fail a turn: extraction degrades to unresolved and
// generation to the catalog's canned line.
package dialogue
