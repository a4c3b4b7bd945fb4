// Package session implements the client-side conversion flow as an explicit
// state machine.
//
// A Machine moves through Idle, FileLoaded, FormatSelected, Converting and
// Downloadable. Intake picks the first offered file and uploads it; a
// successful upload records the server handle and category and rebuilds the
// format options. Convert runs a cosmetic progress ticker alongside the
// conversion request. When the request resolves the ticker is cancelled and
// joined, progress is forced to 100, the outcome is shown for a fixed display
// delay and only then is the terminal state entered. Upload and Intake return
// ErrBusy while Converting.
//
// Presentation is an edge effect: every transition, progress change and notice
// is pushed to a Renderer while the machine lock is held, so renderers see
// events in order and must not call back into the Machine. Recorders receive
// attempt summaries after the fact for history and metrics.
package session
