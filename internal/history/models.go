package history

import "time"

// Upload is one persisted upload attempt.
type Upload struct {
	ID           int64
	Source       string
	SourcePath   string
	SizeBytes    int64
	Handle       string
	Category     string
	Outcome      string
	ErrorMessage string
	StartedAt    time.Time
	Duration     time.Duration
}

// Succeeded reports whether the upload produced a handle.
func (u Upload) Succeeded() bool {
	return u.Outcome == outcomeOK && u.Handle != ""
}

// Conversion is one persisted conversion attempt.
type Conversion struct {
	ID             int64
	RequestID      string
	Handle         string
	Category       string
	TargetFormat   string
	Compress       bool
	OutputFilename string
	DownloadURL    string
	Outcome        string
	ErrorMessage   string
	Ticks          int
	StartedAt      time.Time
	Duration       time.Duration
	DownloadedPath string
	DownloadedAt   *time.Time
}

// Succeeded reports whether the conversion produced a download reference.
func (c Conversion) Succeeded() bool {
	return c.Outcome == outcomeOK && c.DownloadURL != ""
}
