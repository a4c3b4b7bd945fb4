// Package present renders the conversion session for terminals.
//
// Console implements session.Renderer: state changes become status lines,
// progress drives a progress bar (or sampled percentage lines when the output
// is not a terminal) and notices are coloured by level. The table helpers
// render format catalogs and history listings with go-pretty.
package present
