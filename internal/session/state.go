package session

import "fileconv/internal/formats"

// State is the active step of the flow.
type State int

const (
	Idle State = iota
	FileLoaded
	FormatSelected
	Converting
	Downloadable
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileLoaded:
		return "file_loaded"
	case FormatSelected:
		return "format_selected"
	case Converting:
		return "converting"
	case Downloadable:
		return "downloadable"
	default:
		return "unknown"
	}
}

// Source identifies how a file reached the intake.
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// Result is a successful conversion outcome, exposed as returned by the service.
type Result struct {
	Filename    string
	DownloadURL string
}

// Label is the text shown next to the download reference.
func (r Result) Label() string {
	return "Download " + r.Filename
}

// Snapshot is a point-in-time copy of the machine state.
type Snapshot struct {
	State    State
	Source   Source
	Path     string
	Handle   string
	Category string
	Options  []formats.Format
	Selected string
	Progress int
	Result   *Result
}

// HasFormats reports whether any real target format is on offer.
func (s Snapshot) HasFormats() bool {
	for _, opt := range s.Options {
		if opt.Code != "" {
			return true
		}
	}
	return false
}
